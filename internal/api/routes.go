package api

import (
	"strings"

	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

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
	s.app.Get("/metrics", s.handleMetrics)
	s.app.Get("/api/metrics", s.handleMetricsJSON)

	api := s.app.Group("/api")

	// Identity is attached, never required: every record operation
	// works signed out.
	api.Use(s.identityMiddleware())

	api.Post("/predict/skin", s.handlePredictSkin)
	api.Post("/predict/pneumonia", s.handlePredictPneumonia)
	api.Post("/predict/lung-cancer", s.handlePredictLungCancer)
	api.Post("/predict/diabetes", s.handlePredictDiabetes)
	api.Post("/predict/hypertension", s.handlePredictHypertension)
	api.Post("/predict/ckd", s.handlePredictCKD)

	api.Get("/predictions", s.handleListPredictions)
	api.Get("/predictions/recent", s.handleRecentActivity)
	api.Get("/trends", s.handleTrends)

	api.Get("/medications", s.handleListMedications)
	api.Post("/medications", s.handleCreateMedication)
	api.Delete("/medications/:id", s.handleDeleteMedication)

	api.Get("/contacts", s.handleListContacts)
	api.Post("/contacts", s.handleCreateContact)
	api.Delete("/contacts/:id", s.handleDeleteContact)

	api.Get("/conditions", s.handleListConditions)
	api.Get("/doctors", s.handleListDoctors)
	api.Get("/doctors/specialties", s.handleListSpecialties)
	api.Get("/report", s.handleReport)
	api.Get("/session", s.handleSession)
}
