// Package rpc exposes the authorization core as a narrow JSON-over-HTTP
// surface. The only callers are the web layer and admin tooling; this is an
// internal service boundary, not a public API.
package rpc

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/audit"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/authn"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/authz"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/config"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/guard"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/session"
)

// Service is the internal RPC server.
type Service struct {
	App       *fiber.App
	cfg       *config.Config
	db        *gorm.DB
	alive     atomic.Bool
	validator *validator.Validate

	evaluator *authz.Evaluator
	sessions  *session.Manager
	auth      *authn.Service
	recorder  *audit.Recorder
}

// New creates the RPC service and registers its routes.
func New(cfg *config.Config, database *gorm.DB, evaluator *authz.Evaluator,
	sessions *session.Manager, auth *authn.Service, recorder *audit.Recorder) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	s := &Service{
		cfg:       cfg,
		db:        database,
		validator: validator.New(),
		evaluator: evaluator,
		sessions:  sessions,
		auth:      auth,
		recorder:  recorder,
	}

	s.App = fiber.New(fiber.Config{
		AppName:               "realtor-authcore",
		DisableStartupMessage: !cfg.DevMode,
	})

	s.alive.Store(true)
	s.registerRoutes()

	return s
}

func (s *Service) registerRoutes() {
	s.App.Get("/healthz", s.Healthz)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Session-token principal resolution for the guarded admin routes.
	s.App.Use(s.resolvePrincipal)

	adminOnly := guard.Require(guard.AdminGuard(s.evaluator), guard.RequireConfig{Recorder: s.recorder})
	reporting := guard.Require(guard.SupervisorOrAdminGuard(s.evaluator), guard.RequireConfig{Recorder: s.recorder})

	v1 := s.App.Group("/v1")

	v1.Post("/authenticate", s.Authenticate)
	v1.Post("/login", s.Login)
	v1.Post("/login/2fa", s.LoginTwoFactor)
	v1.Post("/logout", s.Logout)

	v1.Post("/permissions/check", s.CheckPermission)
	v1.Post("/roles/check", s.CheckRole)
	v1.Get("/permissions/:agentID", s.EffectivePermissions)

	v1.Post("/roles/assign", adminOnly, s.AssignRole)
	v1.Post("/roles/revoke", adminOnly, s.RevokeRole)
	v1.Post("/roles/bulk-assign", adminOnly, s.BulkAssignRoles)
	v1.Post("/roles/validate", adminOnly, s.ValidateRoleAssignment)

	v1.Post("/sessions", s.CreateSession)
	v1.Post("/sessions/extend", s.ExtendSession)
	v1.Post("/sessions/terminate", s.TerminateSession)
	v1.Post("/sessions/terminate-all", s.TerminateAllSessions)
	v1.Get("/sessions/:agentID", s.ActiveSessions)

	v1.Post("/audit/record", s.RecordAudit)
	v1.Get("/audit/suspicious", reporting, s.DetectSuspicious)
	v1.Get("/audit/report", reporting, s.AuditReport)
}

// Healthz reports liveness; during graceful shutdown it returns 503 so load
// balancers drain this instance.
func (s *Service) Healthz(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "draining"})
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

// resolvePrincipal turns the X-Session-Token header into an authenticated
// principal for the guard middleware. Requests without a live session proceed
// as anonymous; the guards decide what that is allowed to reach.
func (s *Service) resolvePrincipal(c *fiber.Ctx) error {
	token := c.Get("X-Session-Token")
	if token == "" {
		return c.Next()
	}

	sess, err := s.sessions.SessionInfo(token)
	if err != nil || !sess.Live() {
		return c.Next()
	}

	var agent models.Agent
	if err := s.db.First(&agent, sess.AgentID).Error; err != nil {
		log.Warn().Err(err).Uint64("agent_id", sess.AgentID).Msg("agent lookup for principal failed")
		return c.Next()
	}

	guard.SetPrincipal(c, guard.Authenticated{
		AgentID:   sess.AgentID,
		Staff:     agent.Staff,
		Superuser: agent.Superuser,
	})

	return c.Next()
}

// Start starts the RPC server on the given address.
func (s *Service) Start(addr string) error {
	doneFiber := make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown blocks until an interrupt, then drains and stops the server.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: report not-alive first so load
	// balancers remove this instance before connections are cut.
	log.Info().Msgf("graceful shutdown: returning 503 for %d seconds", s.cfg.Server.ShutDownTime)
	s.alive.Store(false)
	time.Sleep(time.Duration(s.cfg.Server.ShutDownTime) * time.Second)

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping rpc server ...")

		if err := s.App.Shutdown(); err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown

	// Flush queued audit events before exit.
	if s.recorder != nil {
		s.recorder.Close()
	}

	log.Info().Msg("rpc server stopped")
}
