// Package api exposes the HTTP surface: prediction submission, the
// record namespaces, derived analytics, and the reference data.
package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/carescan/carescan/internal/config"
	"github.com/carescan/carescan/internal/doctors"
	"github.com/carescan/carescan/internal/predict"
	"github.com/carescan/carescan/internal/session"
	"github.com/carescan/carescan/internal/store"
)

// Server handles the HTTP API
type Server struct {
	app       *fiber.App
	config    *config.Config
	store     *store.Store
	gateway   *predict.Gateway
	directory *doctors.Directory
	identity  *session.Client
	logger    *zap.Logger
}

// New creates a new API server
func New(cfg *config.Config, st *store.Store, dir *doctors.Directory, logger *zap.Logger) *Server {
	readTimeout := cfg.Server.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30
	}
	writeTimeout := cfg.Server.WriteTimeout
	if writeTimeout == 0 {
		// Prediction endpoints proxy slow model spaces; the write
		// timeout must outlast the gateway timeout.
		writeTimeout = 90
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    20 * 1024 * 1024, // image uploads
	})

	s := &Server{
		app:       app,
		config:    cfg,
		store:     st,
		gateway:   predict.NewGateway(cfg.Predict, st, logger),
		directory: dir,
		identity:  session.NewClient(cfg.Identity, logger),
		logger:    logger,
	}

	s.setupRoutes()
	return s
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Address, s.config.Server.Port)
	s.logger.Info("starting API server", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
