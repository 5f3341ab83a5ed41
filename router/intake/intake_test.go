package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polypheny/adaptive-router/internal/routererr"
	"github.com/polypheny/adaptive-router/router/routing"
)

func TestParseReferenceTagHappyPath(t *testing.T) {
	ps, qc, err := ParseReferenceTag("[1,3]-some-query-class")
	require.NoError(t, err)
	assert.Equal(t, routing.QC("some-query-class"), qc)
	assert.True(t, ps.Equal(routing.NewPSFromSlice([]routing.AID{1, 3})))
}

func TestParseReferenceTagQCContainingDash(t *testing.T) {
	// The split point is the first '-' after the closing bracket, not the
	// first '-' anywhere, so a QC with its own dashes round-trips intact.
	ps, qc, err := ParseReferenceTag("[2]-a-b-c")
	require.NoError(t, err)
	assert.Equal(t, routing.QC("a-b-c"), qc)
	assert.True(t, ps.Equal(routing.NewPS(2)))
}

func TestParseReferenceTagEmptyPS(t *testing.T) {
	ps, qc, err := ParseReferenceTag("[]-qc1")
	require.NoError(t, err)
	assert.Equal(t, routing.QC("qc1"), qc)
	assert.Empty(t, ps)
}

func TestParseReferenceTagMalformedCases(t *testing.T) {
	cases := []string{
		"",
		"no-brackets",
		"[1,2]",     // no trailing dash/QC
		"[1,2]qc1",  // missing dash
		"[1,2]-",    // empty QC
		"[1,a]-qc1", // non-numeric adapter id
		"1,2]-qc1",  // missing leading bracket
	}
	for _, c := range cases {
		_, _, err := ParseReferenceTag(c)
		assert.ErrorIs(t, err, routererr.ErrMalformedFeedbackTag, "case: %q", c)
	}
}

type recordingClient struct {
	qc    routing.QC
	ps    routing.PS
	nanos int64
	calls int
}

func (r *recordingClient) Monitor(qc routing.QC, ps routing.PS, nanos int64) {
	r.qc, r.ps, r.nanos = qc, ps, nanos
	r.calls++
}

func TestOnExecutionTimeForwardsParsedEvent(t *testing.T) {
	client := &recordingClient{}
	in := New(client)

	err := in.OnExecutionTime("[1,2]-qc1", 500)
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, routing.QC("qc1"), client.qc)
	assert.Equal(t, int64(500), client.nanos)
}

func TestOnExecutionTimeMalformedTagDoesNotCallClient(t *testing.T) {
	client := &recordingClient{}
	in := New(client)

	err := in.OnExecutionTime("garbage", 500)
	assert.Error(t, err)
	assert.Equal(t, 0, client.calls)
}
