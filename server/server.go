package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jrsteele09/go-chat-bridge/bridge"
	"github.com/jrsteele09/go-chat-bridge/internal/config"
	"github.com/jrsteele09/go-chat-bridge/slack"
)

// Server is the webhook transport: it receives the chat platform's event
// callbacks, runs the session protocol inside a storage transaction and
// acknowledges the request.
type Server struct {
	engine   *gin.Engine
	config   config.Config
	runner   bridge.Runner
	protocol *bridge.Service
	notifier slack.Notifier
}

func New(cfg config.Config, runner bridge.Runner, notifier slack.Notifier) *Server {
	if cfg.GetEnv() != "DEV" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:   gin.New(),
		config:   cfg,
		runner:   runner,
		protocol: bridge.NewService(),
		notifier: notifier,
	}
	s.engine.Use(gin.Recovery())
	s.initRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	s.engine.POST("/api", s.handleEvent)
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "reason": "not found"})
	})
}
