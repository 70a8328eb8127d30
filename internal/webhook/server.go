// Package webhook is the platform's HTTP ingress (spec.md §6): gin
// handlers for the chat-vendor and repository webhooks, secret-token and
// HMAC authentication, and the engine dispatch every authenticated
// request feeds into. Adapted from the teacher's dashboard HTTP
// bootstrap (gin mode, trusted proxies, graceful shutdown) -- the route
// table and auth are new, the server shape is not.
package webhook

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vensus137/coreness-go/internal/config"
	"github.com/vensus137/coreness-go/internal/event"
	"github.com/vensus137/coreness-go/internal/opsfeed"
	"github.com/vensus137/coreness-go/internal/scenario"
	"github.com/vensus137/coreness-go/internal/tenant"
	"github.com/vensus137/coreness-go/pkg/logger"
)

// Server is the webhook HTTP ingress.
type Server struct {
	router       *gin.Engine
	engine       *scenario.Engine
	directory    *tenant.Directory
	secrets      *SecretRegistry
	githubSecret string
}

// NewServer builds the webhook server and registers its routes.
func NewServer(cfg *config.Config, eng *scenario.Engine, directory *tenant.Directory, secrets *SecretRegistry) *Server {
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())

	var proxies []string
	for _, p := range strings.Split(cfg.TrustedProxies, ",") {
		if t := strings.TrimSpace(p); t != "" {
			proxies = append(proxies, t)
		}
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		logger.Warn("webhook: set trusted proxies failed", logger.FieldError, err)
	}

	s := &Server{
		router:       r,
		engine:       eng,
		directory:    directory,
		secrets:      secrets,
		githubSecret: cfg.GithubWebhookSecret,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	s.router.POST("/webhooks/telegram", s.handleTelegram)
	s.router.POST("/webhooks/github", s.handleGithub)
}

// Engine returns the underlying gin engine, e.g. for tests.
func (s *Server) Engine() *gin.Engine { return s.router }

// MountOpsFeed exposes the ops decision tap at /debug/events (spec.md
// §4's opsfeed supplement), when the deployment has one enabled.
func (s *Server) MountOpsFeed(f *opsfeed.Feed) {
	s.router.GET("/debug/events", opsfeed.Handler(f))
}

// process runs the matched scenario for ev, logging but never
// surfacing a processing failure to the caller -- the HTTP response was
// already sent by the time this runs.
func (s *Server) process(ctx context.Context, ev event.Event) {
	res := s.engine.ProcessEvent(ctx, ev)
	if res.Status == scenario.StatusError {
		logger.Warnw("webhook: scenario execution failed",
			logger.FieldScenario, res.ScenarioName, logger.FieldError, res.Error)
	}
}

// ListenAndServe starts the HTTP server and shuts it down gracefully
// when ctx is cancelled, allowing in-flight requests the configured
// shutdown timeout to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("webhook: shutdown triggered")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("webhook: shutdown error", logger.FieldError, err)
			return
		}
		logger.Info("webhook: shutdown completed")
	}()

	logger.Info("webhook: listening", logger.FieldAddr, addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
