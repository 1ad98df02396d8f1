// Package api exposes the record store, AI flows and reports over HTTP.
package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vitalens/vitalens/internal/ai"
	"github.com/vitalens/vitalens/internal/auth"
	"github.com/vitalens/vitalens/internal/config"
	"github.com/vitalens/vitalens/internal/store"
	"go.uber.org/zap"
)

// Server handles the HTTP API.
type Server struct {
	app    *fiber.App
	config *config.Config
	store  *store.Store
	auth   *auth.Service
	ai     *ai.Client
	logger *zap.Logger
}

// New creates a new API server.
func New(cfg *config.Config, st *store.Store, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    16 * 1024 * 1024, // image data URIs are large
	})

	s := &Server{
		app:    app,
		config: cfg,
		store:  st,
		auth:   auth.New(st, cfg.Security, logger),
		ai:     ai.NewClient(cfg.AI, logger),
		logger: logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(s.config.Security.AllowOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	s.app.Get("/api/health", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.app.Group("/api")

	// Public routes
	api.Post("/auth/signup", s.handleSignup)
	api.Post("/auth/login", s.handleLogin)

	// Protected routes
	protected := api.Use(s.authMiddleware())

	protected.Get("/patients", s.handleListPatients)
	protected.Post("/patients", s.handleCreatePatient)
	protected.Get("/patients/:id", s.handleGetPatient)
	protected.Put("/patients/:id", s.handleUpdatePatient)
	protected.Delete("/patients/:id", s.handleDeletePatient)
	protected.Get("/patients/:id/appointments", s.handlePatientAppointments)
	protected.Get("/patients/:id/prescriptions", s.handlePatientPrescriptions)
	protected.Get("/patients/:id/analyses", s.handlePatientAnalyses)

	protected.Get("/appointments", s.handleListAppointments)
	protected.Post("/appointments", s.handleCreateAppointment)
	protected.Put("/appointments/:id", s.handleUpdateAppointment)
	protected.Delete("/appointments/:id", s.handleDeleteAppointment)

	protected.Get("/prescriptions", s.handleListPrescriptions)
	protected.Post("/prescriptions", s.handleCreatePrescription)
	protected.Put("/prescriptions/:id", s.handleUpdatePrescription)
	protected.Delete("/prescriptions/:id", s.handleDeletePrescription)

	protected.Post("/analyses", s.handleSaveAnalysis)
	protected.Delete("/analyses/:id", s.handleDeleteAnalysis)

	protected.Post("/ai/dental", s.handleDentalAnalysis)
	protected.Post("/ai/diagnose", s.handleDiagnosisSummary)
	protected.Post("/ai/enhance-prompt", s.handleEnhancePrompt)

	protected.Get("/reports", s.handleReports)
	protected.Get("/audit", s.handleAuditLog)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Address, s.config.Server.Port)
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(ctx)
}
