package simulator

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modflow/modflow/pkg/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The demo UI is served from arbitrary origins.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Server exposes the simulator over HTTP and WebSocket.
type Server struct {
	sim *Simulator
}

// NewServer creates the HTTP layer around a simulator.
func NewServer(sim *Simulator) *Server {
	return &Server{sim: sim}
}

// RegisterRoutes mounts all simulator endpoints on the router.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", s.websocketHandler)
	r.POST("/api/send-message", s.sendMessage)
	r.POST("/simulate/single", s.simulateSingle)
	r.POST("/simulate/start", s.startSimulation)
	r.POST("/simulate/stop", s.stopSimulation)
	r.GET("/api/stats", s.stats)
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// wsCommand is a control frame from a connected client.
type wsCommand struct {
	Action string `json:"action"`
}

func (s *Server) websocketHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}

	hub := s.sim.Hub()
	hub.Add(conn)
	defer hub.Remove(conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd wsCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			continue
		}

		switch cmd.Action {
		case "start_simulation":
			if s.sim.Start() {
				s.writeStatus(conn, "Simulation started")
			}
		case "stop_simulation":
			s.sim.Stop()
			s.writeStatus(conn, "Simulation stopped")
		}
	}
}

// writeStatus acks a control frame. Broadcast writes to the same
// connection, so status writes go through the hub's per-client lock.
func (s *Server) writeStatus(conn *websocket.Conn, message string) {
	_ = s.sim.Hub().Send(conn, gin.H{"type": "status", "message": message})
}

func (s *Server) sendMessage(c *gin.Context) {
	var userMsg models.UserMessage
	if err := c.ShouldBindJSON(&userMsg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := userMsg.ToChatMessage()
	result := s.sim.ProcessAndBroadcast(c.Request.Context(), &msg)
	c.JSON(http.StatusOK, gin.H{"status": "success", "result": result})
}

func (s *Server) simulateSingle(c *gin.Context) {
	messageType := c.DefaultQuery("message_type", "normal")

	msg := s.sim.Generator().Generate(messageType)
	result := s.sim.pipeline.Process(c.Request.Context(), msg)

	c.JSON(http.StatusOK, gin.H{
		"message":            result.Message,
		"filter_result":      result.FilterResult,
		"moderation_result":  result.ModerationResult,
		"processing_time_ms": result.ProcessingTimeMs,
	})
}

func (s *Server) startSimulation(c *gin.Context) {
	if s.sim.Start() {
		c.JSON(http.StatusOK, gin.H{"status": "Simulation started"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Simulation already running"})
}

func (s *Server) stopSimulation(c *gin.Context) {
	s.sim.Stop()
	c.JSON(http.StatusOK, gin.H{"status": "Simulation stopped"})
}

func (s *Server) stats(c *gin.Context) {
	gen := s.sim.Generator()
	c.JSON(http.StatusOK, gin.H{
		"simulation_active":       s.sim.Running(),
		"connected_clients":       s.sim.Hub().Count(),
		"message_interval":        s.sim.Interval().Seconds(),
		"available_message_types": gen.MessageTypes(),
		"user_pool_size":          gen.UserPoolSize(),
		"channels":                gen.Channels(),
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"simulation_active": s.sim.Running(),
		"connected_clients": s.sim.Hub().Count(),
		"endpoints": gin.H{
			"websocket": "/ws",
			"api":       "/api/send-message",
			"simulate":  "/simulate/*",
		},
	})
}
