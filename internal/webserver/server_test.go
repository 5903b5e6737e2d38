package webserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/camtrap-arena/duelrank/internal/duel"
	"github.com/camtrap-arena/duelrank/internal/leaderboard"
	"github.com/camtrap-arena/duelrank/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestServer(t *testing.T, origins ...string) http.Handler {
	t.Helper()
	ctrl := gomock.NewController(t)
	src := ledger.NewMockSource(ctrl)
	src.EXPECT().Snapshot(gomock.Any()).Return([]duel.Record{
		{
			ModelA: "gpt", ModelB: "gemini", Species: "Puma concolor",
			ResponseA: `{"nome_cientifico": "Puma concolor"}`,
			ResponseB: `{"nome_cientifico": "Leopardus pardalis"}`,
			Result:    duel.ResultAWins,
		},
	}, nil).AnyTimes()

	opts := leaderboard.DefaultOptions()
	opts.Elo.Bootstrap = false
	srv, err := New(Config{Builder: leaderboard.New(src), Defaults: opts, AllowedOrigins: origins})
	require.NoError(t, err)
	return srv.Handler()
}

func TestNew_RequiresBuilder(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestNew_DefaultPort(t *testing.T) {
	srv, err := New(Config{Builder: leaderboard.New(nil)})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", srv.URL())
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestEloEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/elo", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "gpt", rows[0]["model"])
}

func TestReportPage(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<table>")
	assert.Contains(t, rec.Body.String(), "Camera trap arena leaderboard")
}

func TestReportPage_BadQuery(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?outcome=coin", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownPathIsNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/123", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS_AllowedOrigin(t *testing.T) {
	handler := newTestServer(t, "http://localhost:5173")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/elo", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCORS_SameOriginOnlyByDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	newTestServer(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
