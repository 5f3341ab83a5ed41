package adminserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/polypheny/adaptive-router/internal/plan"
	"github.com/polypheny/adaptive-router/internal/routerconfig"
	"github.com/polypheny/adaptive-router/router/routing"
)

type fakeTruncater struct {
	err   error
	table string
}

func (f *fakeTruncater) Truncate(ctx context.Context, table string) error {
	f.table = table
	return f.err
}

type fakeEngine struct {
	ps       routing.PS
	qc       routing.QC
	routeErr error
	fbTag    string
	fbNanos  int64
	fbErr    error
}

func (f *fakeEngine) Route(ctx context.Context, table string, root *plan.Node, rng *rand.Rand) (routing.PS, routing.QC, error) {
	return f.ps, f.qc, f.routeErr
}

func (f *fakeEngine) Feedback(tag string, nanos int64) error {
	f.fbTag = tag
	f.fbNanos = nanos
	return f.fbErr
}

func newTestServer(adapters map[string]AdapterTruncater) (*Server, *httptest.Server) {
	return newTestServerWithEngine(adapters, nil)
}

func newTestServerWithEngine(adapters map[string]AdapterTruncater, engine Engine) (*Server, *httptest.Server) {
	reg := routing.NewRegistry()
	table := routing.NewTable(reg, nil)
	config := routerconfig.NewLive()

	s := New(":0", config, table, nil, zap.NewNop(), adapters, engine)
	return s, httptest.NewServer(s.server.Handler)
}

func TestHandleTruncateSucceeds(t *testing.T) {
	adapter := &fakeTruncater{}
	_, httpSrv := newTestServer(map[string]AdapterTruncater{"mongo": adapter})
	defer httpSrv.Close()

	resp, err := http.Post(httpSrv.URL+"/adapters/mongo/truncate?table=orders", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "orders", adapter.table)
}

func TestHandleTruncateUnknownAdapter(t *testing.T) {
	_, httpSrv := newTestServer(map[string]AdapterTruncater{})
	defer httpSrv.Close()

	resp, err := http.Post(httpSrv.URL+"/adapters/missing/truncate?table=orders", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleTruncateMissingTableParam(t *testing.T) {
	_, httpSrv := newTestServer(map[string]AdapterTruncater{"mongo": &fakeTruncater{}})
	defer httpSrv.Close()

	resp, err := http.Post(httpSrv.URL+"/adapters/mongo/truncate", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleTruncateAdapterError(t *testing.T) {
	adapter := &fakeTruncater{err: errors.New("ledger rejects truncate")}
	_, httpSrv := newTestServer(map[string]AdapterTruncater{"blockchain": adapter})
	defer httpSrv.Close()

	resp, err := http.Post(httpSrv.URL+"/adapters/blockchain/truncate?table=orders", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestHandleHealthReportsHealthy(t *testing.T) {
	_, httpSrv := newTestServer(nil)
	defer httpSrv.Close()

	resp, err := http.Get(httpSrv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleRouteWithoutEngineConfigured(t *testing.T) {
	_, httpSrv := newTestServer(nil)
	defer httpSrv.Close()

	resp, err := http.Post(httpSrv.URL+"/route", "application/json", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHandleRouteReturnsPlacementSetAndQueryClass(t *testing.T) {
	engine := &fakeEngine{ps: routing.NewPS(1), qc: routing.QC("qc-1")}
	_, httpSrv := newTestServerWithEngine(nil, engine)
	defer httpSrv.Close()

	body, _ := json.Marshal(routeRequest{Table: "orders", Plan: plan.Node{Kind: plan.KindTableScan, QualifiedName: "orders"}})
	resp, err := http.Post(httpSrv.URL+"/route", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out routeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "[1]", out.PlacementSet)
	assert.Equal(t, "qc-1", out.QueryClass)
}

func TestHandleRoutePropagatesEngineError(t *testing.T) {
	engine := &fakeEngine{routeErr: errors.New("no candidate placements")}
	_, httpSrv := newTestServerWithEngine(nil, engine)
	defer httpSrv.Close()

	body, _ := json.Marshal(routeRequest{Table: "orders", Plan: plan.Node{Kind: plan.KindTableScan}})
	resp, err := http.Post(httpSrv.URL+"/route", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandleFeedbackForwardsToEngine(t *testing.T) {
	engine := &fakeEngine{}
	_, httpSrv := newTestServerWithEngine(nil, engine)
	defer httpSrv.Close()

	body, _ := json.Marshal(feedbackRequest{Tag: "[1]-qc-1", Nanos: 42})
	resp, err := http.Post(httpSrv.URL+"/feedback", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "[1]-qc-1", engine.fbTag)
	assert.Equal(t, int64(42), engine.fbNanos)
}
