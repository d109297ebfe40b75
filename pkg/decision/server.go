package decision

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modflow/modflow/pkg/models"
)

// Server exposes the decision handler over HTTP.
type Server struct {
	svc *Service
}

// NewServer creates the HTTP layer around a decision service.
func NewServer(svc *Service) *Server {
	return &Server{svc: svc}
}

// RegisterRoutes mounts all decision endpoints on the router.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.POST("/process", s.process)
	r.GET("/user/:user_id/history", s.userHistory)
	r.GET("/stats", s.stats)
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) process(c *gin.Context) {
	var d models.ModerationDecision
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := s.svc.Process(c.Request.Context(), &d)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) userHistory(c *gin.Context) {
	userID := c.Param("user_id")

	history, err := s.svc.UserHistory(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if history == nil {
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "violations": 0, "status": "clean"})
		return
	}
	c.JSON(http.StatusOK, history)
}

func (s *Server) stats(c *gin.Context) {
	stats, err := s.svc.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) health(c *gin.Context) {
	dbConnected := s.svc.Health(c.Request.Context()) == nil
	status := "healthy"
	httpStatus := http.StatusOK
	if !dbConnected {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, gin.H{
		"status":             status,
		"database_connected": dbConnected,
		"timestamp":          time.Now().UTC(),
	})
}
