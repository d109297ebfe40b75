package filter

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modflow/modflow/pkg/metrics"
	"github.com/modflow/modflow/pkg/models"
)

// Server exposes the filter service over HTTP.
type Server struct {
	svc *Service
}

// NewServer creates the HTTP layer around a filter service.
func NewServer(svc *Service) *Server {
	return &Server{svc: svc}
}

// RegisterRoutes mounts all filter endpoints on the router.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.POST("/filter", s.filterMessage)
	r.GET("/config", s.getConfig)
	r.POST("/config/toggle/:name", s.toggleFilter)
	r.GET("/stats", s.getStats)
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) filterMessage(c *gin.Context) {
	var msg models.ChatMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	verdict := s.svc.Process(&msg)
	metrics.FilterProcessingSeconds.Observe(time.Since(start).Seconds())
	metrics.FilterRequestsTotal.WithLabelValues(verdict.FilterDecision, verdict.FilterType).Inc()

	s.svc.logger.Info("Filtered message",
		"user_id", msg.UserID,
		"decision", verdict.FilterDecision,
		"filter_type", verdict.FilterType,
		"processing_ms", verdict.ProcessingTimeMs)

	c.JSON(http.StatusOK, verdict)
}

func (s *Server) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.ConfigSummary())
}

func (s *Server) toggleFilter(c *gin.Context) {
	name := c.Param("name")
	enabled, err := strconv.ParseBool(c.Query("enabled"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'enabled' must be true or false"})
		return
	}

	if err := s.svc.Toggle(name, enabled); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Filter '%s' %s", name, state)})
}

func (s *Server) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Stats())
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"filters_enabled": s.svc.EnabledFilters(),
		"timestamp":       time.Now().UTC(),
	})
}
