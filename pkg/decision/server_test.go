package decision

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modflow/modflow/pkg/models"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, store := newTestService(t)
	r := gin.New()
	NewServer(svc).RegisterRoutes(r)
	return r, store
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProcessEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/process",
		`{"user_id":"user_0001","channel_id":"general","decision":"Toxic","confidence":0.85,"reasoning":"slur","severity":"high"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ActionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.ActionKick, resp.ActionTaken)
	assert.True(t, resp.Success)
}

func TestProcessEndpoint_MissingFields(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/process", `{"user_id":"user_0001"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryEndpoint_CleanUser(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/user/user_9999/history", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user_9999", body["user_id"])
	assert.EqualValues(t, 0, body["violations"])
	assert.Equal(t, "clean", body["status"])
}

func TestHistoryEndpoint_KnownUser(t *testing.T) {
	r, store := newTestRouter(t)
	require.NoError(t, store.UpsertViolation(t.Context(), "user_0002", 0.9))
	require.NoError(t, store.UpsertViolation(t.Context(), "user_0002", 0.8))

	w := doRequest(t, r, http.MethodGet, "/user/user_0002/history", "")
	require.Equal(t, http.StatusOK, w.Code)

	var history models.UserHistory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Equal(t, "user_0002", history.UserID)
	assert.Equal(t, 2, history.ViolationCount)
	assert.InDelta(t, 1.7, history.TotalScore, 1e-9)
	assert.Equal(t, "active", history.Status)
}

func TestStatsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "total_decisions")
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["database_connected"])
}
