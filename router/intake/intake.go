// Package intake implements the execution-time monitor's post-query
// feedback path: parsing the reference tag carried by the monitor
// subscription and forwarding a structured routing event to the external
// monitoring service. No table mutation happens here — all weight
// recomputation happens in the periodic refresh (router/refresh), which
// keeps this path free of contention.
package intake

import (
	"strconv"
	"strings"

	"github.com/polypheny/adaptive-router/internal/routererr"
	"github.com/polypheny/adaptive-router/router/routing"
)

// MonitorClient is the external monitoring service's inbound interface:
// record one execution-time sample for a (QC, PS) pair. It matches
// routing.EventSink so the same monitoring client backs both the table's
// feedback sink and the intake layer.
type MonitorClient interface {
	Monitor(qc routing.QC, ps routing.PS, nanos int64)
}

// Intake receives (reference_tag, nanos) callbacks from the execution-time
// monitor subscription and forwards parsed routing events to a
// MonitorClient.
type Intake struct {
	client MonitorClient
}

// New builds an Intake backed by client.
func New(client MonitorClient) *Intake {
	return &Intake{client: client}
}

// OnExecutionTime is the subscription callback: (reference_tag, nanos).
// It parses tag and forwards the event; a malformed tag is logged by the
// caller via the returned error rather than panicking the monitor's
// callback goroutine.
func (i *Intake) OnExecutionTime(tag string, nanos int64) error {
	ps, qc, err := ParseReferenceTag(tag)
	if err != nil {
		return err
	}
	i.client.Monitor(qc, ps, nanos)
	return nil
}

// ParseReferenceTag parses a feedback reference tag of the form
// "<PS-string>-<QC>", where <PS-string> is a PS rendered by routing.PS.Key
// (a bracketed, comma-separated list of adapter ids, e.g. "[1,3]").
//
// The split point is the first '-' after the closing bracket, not the
// first '-' in the whole string: a QC is an arbitrary string and may
// itself contain '-'. This keeps the tag format a genuine structured pair
// rather than requiring the QC alphabet to avoid a delimiter.
func ParseReferenceTag(tag string) (routing.PS, routing.QC, error) {
	end := strings.IndexByte(tag, ']')
	if end < 0 || tag[0] != '[' {
		return nil, "", routererr.ErrMalformedFeedbackTag
	}
	if end+1 >= len(tag) || tag[end+1] != '-' {
		return nil, "", routererr.ErrMalformedFeedbackTag
	}

	psPart := tag[:end+1]
	qcPart := tag[end+2:]
	if qcPart == "" {
		return nil, "", routererr.ErrMalformedFeedbackTag
	}

	aids, err := parsePS(psPart)
	if err != nil {
		return nil, "", err
	}
	return routing.NewPSFromSlice(aids), routing.QC(qcPart), nil
}

func parsePS(s string) ([]routing.AID, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if inner == "" {
		return nil, nil
	}
	parts := strings.Split(inner, ",")
	aids := make([]routing.AID, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, routererr.ErrMalformedFeedbackTag
		}
		aids = append(aids, routing.AID(n))
	}
	return aids, nil
}
