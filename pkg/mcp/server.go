package mcp

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modflow/modflow/pkg/llm"
	"github.com/modflow/modflow/pkg/metrics"
	"github.com/modflow/modflow/pkg/models"
)

// Server exposes the moderation gateway over HTTP.
type Server struct {
	svc *Service
}

// NewServer creates the HTTP layer around a moderation service.
func NewServer(svc *Service) *Server {
	return &Server{svc: svc}
}

// RegisterRoutes mounts all gateway endpoints on the router.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.POST("/moderate", s.moderate)
	r.GET("/templates", s.listTemplates)
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) moderate(c *gin.Context) {
	metrics.MCPRequestsTotal.WithLabelValues("moderate", "started").Inc()
	start := time.Now()

	var req models.ModerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.MCPRequestsTotal.WithLabelValues("moderate", "error").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	verdict, err := s.svc.Moderate(c.Request.Context(), &req)
	metrics.MCPRequestDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MCPRequestsTotal.WithLabelValues("moderate", "error").Inc()
		switch {
		case errors.Is(err, ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input detected"})
		case errors.Is(err, llm.ErrUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	metrics.MCPRequestsTotal.WithLabelValues("moderate", "success").Inc()
	c.JSON(http.StatusOK, verdict)
}

func (s *Server) listTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": s.svc.Templates()})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC()})
}
