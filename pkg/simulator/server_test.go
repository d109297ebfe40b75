package simulator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modflow/modflow/pkg/models"
)

// newTestStack wires a simulator against stubbed filter and moderation
// backends and returns its HTTP server.
func newTestStack(t *testing.T) (*httptest.Server, *Simulator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	filter := filterStub(t, models.FilterVerdict{
		ShouldProcess: true, FilterDecision: models.FilterPass, Confidence: 0.9,
	})
	mcp := mcpStub(t, models.ModerationVerdict{
		Decision: models.DecisionNonToxic, Confidence: 0.95,
	})

	sim := New(
		newTestGenerator(t),
		NewPipeline(filter.URL, mcp.URL, 2*time.Second),
		NewHub(),
		10*time.Millisecond,
	)
	t.Cleanup(sim.Stop)

	r := gin.New()
	NewServer(sim).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, sim
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestSendMessage_BroadcastsToWebSocketClients(t *testing.T) {
	srv, sim := newTestStack(t)
	conn := dialWS(t, srv)

	require.Eventually(t, func() bool { return sim.Hub().Count() == 1 },
		time.Second, 10*time.Millisecond)

	resp, err := http.Post(srv.URL+"/api/send-message", "application/json",
		strings.NewReader(`{"message":"hello from the web"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var envelope Result
	require.NoError(t, conn.ReadJSON(&envelope))

	assert.Equal(t, "chat_message", envelope.Type)
	assert.Equal(t, "hello from the web", envelope.Message.Message)
	assert.Equal(t, "user_web", envelope.Message.UserID, "web identity defaults applied")
	assert.Equal(t, "web-chat", envelope.Message.ChannelID)
	require.NotNil(t, envelope.ModerationResult)
	assert.Equal(t, models.DecisionNonToxic, envelope.ModerationResult.Decision)
}

func TestWebSocket_StartStopControlFrames(t *testing.T) {
	srv, sim := newTestStack(t)
	conn := dialWS(t, srv)

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "start_simulation"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var status map[string]any
	require.NoError(t, conn.ReadJSON(&status))
	assert.Equal(t, "status", status["type"])
	assert.Equal(t, "Simulation started", status["message"])
	assert.True(t, sim.Running())

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "stop_simulation"}))

	// The stream may deliver chat messages before the stop ack.
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var frame map[string]any
		require.NoError(t, conn.ReadJSON(&frame))
		if frame["type"] == "status" {
			assert.Equal(t, "Simulation stopped", frame["message"])
			break
		}
	}
	assert.False(t, sim.Running())
}

func TestSimulateSingleEndpoint(t *testing.T) {
	srv, _ := newTestStack(t)

	resp, err := http.Post(srv.URL+"/simulate/single?message_type=toxic", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Message      *models.ChatMessage   `json:"message"`
		FilterResult *models.FilterVerdict `json:"filter_result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.Message)
	assert.NotEmpty(t, body.Message.Message)
	require.NotNil(t, body.FilterResult)
}

func TestSimulateStartStopEndpoints(t *testing.T) {
	srv, sim := newTestStack(t)

	resp, err := http.Post(srv.URL+"/simulate/start", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.True(t, sim.Running())

	// Starting again reports it is already running.
	resp, err = http.Post(srv.URL+"/simulate/start", "application/json", nil)
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "Simulation already running", body["status"])

	resp, err = http.Post(srv.URL+"/simulate/stop", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.False(t, sim.Running())
}

func TestStatsEndpoint(t *testing.T) {
	srv, _ := newTestStack(t)

	resp, err := http.Get(srv.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, false, stats["simulation_active"])
	assert.EqualValues(t, 0, stats["connected_clients"])
	assert.EqualValues(t, 20, stats["user_pool_size"])
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestStack(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestHub_DropsDeadClients(t *testing.T) {
	srv, sim := newTestStack(t)
	conn := dialWS(t, srv)

	require.Eventually(t, func() bool { return sim.Hub().Count() == 1 },
		time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	// Broadcasts after the close eventually evict the dead client.
	require.Eventually(t, func() bool {
		sim.Hub().Broadcast(map[string]string{"type": "ping"})
		return sim.Hub().Count() == 0
	}, 2*time.Second, 20*time.Millisecond)
}
