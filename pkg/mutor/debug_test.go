package mutor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/mutor/pkg/core"
	"github.com/go-drift/mutor/pkg/telemetry"
)

func get(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestDebugHandler(t *testing.T) {
	app := New(WithMetrics(telemetry.NewMetrics(telemetry.MetricsConfig{Enabled: true})))
	_, err := app.Mount(core.Description{
		Tag:      "ul",
		Children: []any{core.Description{Tag: "li", Key: "a", Children: []any{"a"}}},
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.Run(ctx)
	srv := httptest.NewServer(app.DebugHandler())
	defer srv.Close()

	status, body := get(t, srv, "/render-tree")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "<root>\n  <ul>\n    <li>\n      \"a\"\n", body)

	status, body = get(t, srv, "/runtime")
	require.Equal(t, http.StatusOK, status)
	var stats Stats
	require.NoError(t, json.Unmarshal([]byte(body), &stats))
	assert.Equal(t, 3, stats.Instances)

	status, body = get(t, srv, "/instance-tree")
	require.Equal(t, http.StatusOK, status)
	var roots []InstanceNode
	require.NoError(t, json.Unmarshal([]byte(body), &roots))
	require.Len(t, roots, 1)
	assert.Equal(t, "ul", roots[0].Tag)
	assert.Equal(t, "a", roots[0].Children[0].Key)
	assert.Equal(t, "mounted", roots[0].Children[0].State)

	status, body = get(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "mutor_mounts_total 3")

	status, body = get(t, srv, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestDebugHandler_MethodNotAllowed(t *testing.T) {
	app := New()
	rec := httptest.NewRecorder()

	app.DebugHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/runtime", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDebugHandler_MetricsDisabled(t *testing.T) {
	app := New()
	rec := httptest.NewRecorder()

	app.DebugHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
