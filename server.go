package main

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"VisionAlertServer/config"
	"VisionAlertServer/pipeline"
)

type server struct {
	cfg  *config.Config
	pipe *pipeline.Pipeline
}

func newServer(cfg *config.Config, pipe *pipeline.Pipeline) *server {
	return &server{cfg: cfg, pipe: pipe}
}

// corsMiddleware mirrors the permissive CORS of the original service; the
// client is a mobile WebView on the same network.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *server) router() *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware())
	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.POST("/api/detect", s.handleDetect)
	r.POST("/api/cooldowns/reset", s.handleResetCooldowns)
	r.GET("/api/config", s.handleConfig)
	r.GET("/api/stats", s.handleStats)
	r.GET("/ws/detect", s.handleStream)
	return r
}

func (s *server) handleDetect(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image sent"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open upload: " + err.Error()})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload: " + err.Error()})
		return
	}

	result, err := s.pipe.ProcessImage(c.Request.Context(), data, time.Now())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// statusFor maps pipeline sentinels to HTTP statuses: the caller's fault,
// the collaborator's fault, or ours.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInvalidImage), errors.Is(err, pipeline.ErrInvalidFrame):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrDetector):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) handleResetCooldowns(c *gin.Context) {
	s.pipe.ResetCooldowns()
	c.JSON(http.StatusOK, gin.H{"data": "Cooldowns reset"})
}

func (s *server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.cfg.Snapshot()})
}

func (s *server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.pipe.Stats()})
}
