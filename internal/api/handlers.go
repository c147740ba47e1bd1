package api

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/carescan/carescan/internal/analytics"
	"github.com/carescan/carescan/internal/conditions"
	apperrors "github.com/carescan/carescan/internal/errors"
	"github.com/carescan/carescan/internal/metrics"
	"github.com/carescan/carescan/internal/predict"
	"github.com/carescan/carescan/internal/report"
	"github.com/carescan/carescan/internal/store"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"version":   "0.1.0",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/plain; charset=utf-8")
	return c.SendString(metrics.GetPrometheus())
}

func (s *Server) handleMetricsJSON(c *fiber.Ctx) error {
	return c.JSON(metrics.GetSnapshot())
}

// predictError maps gateway failures onto response codes: validation
// failures are the caller's fault, everything downstream is a bad
// gateway.
func (s *Server) predictError(c *fiber.Ctx, condition string, err error) error {
	code := apperrors.GetCode(err)
	msg := err.Error()
	if appErr, ok := err.(*apperrors.AppError); ok {
		msg = appErr.Message
	}

	switch code {
	case apperrors.ErrValidation.Code:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": msg})
	case apperrors.ErrEndpointUnavailable.Code,
		apperrors.ErrEndpointStatus.Code,
		apperrors.ErrResponseShape.Code:
		s.logger.Warn("prediction failed",
			zap.String("condition", condition),
			zap.String("code", code),
			zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": msg})
	default:
		s.logger.Error("prediction failed",
			zap.String("condition", condition),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func (s *Server) handleImagePrediction(c *fiber.Ctx, condition string,
	call func(filename string, image io.Reader) (store.PredictionRecord, error)) error {

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Please select an image first",
		})
	}

	f, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to read upload"})
	}
	defer f.Close()

	rec, err := call(file.Filename, f)
	if err != nil {
		return s.predictError(c, condition, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (s *Server) handlePredictSkin(c *fiber.Ctx) error {
	return s.handleImagePrediction(c, predict.ConditionSkin,
		func(filename string, image io.Reader) (store.PredictionRecord, error) {
			return s.gateway.PredictSkin(c.UserContext(), filename, image)
		})
}

func (s *Server) handlePredictPneumonia(c *fiber.Ctx) error {
	return s.handleImagePrediction(c, predict.ConditionPneumonia,
		func(filename string, image io.Reader) (store.PredictionRecord, error) {
			return s.gateway.PredictPneumonia(c.UserContext(), filename, image)
		})
}

func (s *Server) handlePredictLungCancer(c *fiber.Ctx) error {
	return s.handleImagePrediction(c, predict.ConditionLungCancer,
		func(filename string, image io.Reader) (store.PredictionRecord, error) {
			return s.gateway.PredictLungCancer(c.UserContext(), filename, image)
		})
}

func (s *Server) handlePredictDiabetes(c *fiber.Ctx) error {
	var in predict.DiabetesInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	rec, err := s.gateway.PredictDiabetes(c.UserContext(), in)
	if err != nil {
		return s.predictError(c, predict.ConditionDiabetes, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (s *Server) handlePredictHypertension(c *fiber.Ctx) error {
	var in predict.HypertensionInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	rec, err := s.gateway.PredictHypertension(c.UserContext(), in)
	if err != nil {
		return s.predictError(c, predict.ConditionHypertension, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (s *Server) handlePredictCKD(c *fiber.Ctx) error {
	var in predict.CKDInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	rec, err := s.gateway.PredictCKD(c.UserContext(), in)
	if err != nil {
		return s.predictError(c, predict.ConditionCKD, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (s *Server) handleListPredictions(c *fiber.Ctx) error {
	preds := s.store.ListPredictions()
	if preds == nil {
		preds = []store.PredictionRecord{}
	}
	if c.Query("group") == "type" {
		return c.JSON(analytics.GroupByType(preds))
	}
	return c.JSON(preds)
}

func (s *Server) handleRecentActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 5)
	return c.JSON(analytics.RecentActivity(s.store.ListPredictions(), limit))
}

func (s *Server) handleTrends(c *fiber.Ctx) error {
	preds := s.store.ListPredictions()
	return c.JSON(fiber.Map{
		"summary":      analytics.Summarize(preds),
		"diabetes":     analytics.DiabetesTrend(preds),
		"hypertension": analytics.HypertensionTrend(preds),
	})
}

func (s *Server) handleListMedications(c *fiber.Ctx) error {
	meds := s.store.ListMedications()
	if meds == nil {
		meds = []store.MedicationRecord{}
	}
	return c.JSON(meds)
}

func (s *Server) handleCreateMedication(c *fiber.Ctx) error {
	var req store.MedicationRecord
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.Dosage == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "name and dosage are required",
		})
	}
	if req.Frequency == "" {
		req.Frequency = store.FrequencyOnceDaily
	}
	if req.Time == "" {
		req.Time = "08:00"
	}

	return c.Status(fiber.StatusCreated).JSON(s.store.SaveMedication(req))
}

func (s *Server) handleDeleteMedication(c *fiber.Ctx) error {
	s.store.DeleteMedication(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleListContacts(c *fiber.Ctx) error {
	contacts := s.store.ListContacts()
	if contacts == nil {
		contacts = []store.EmergencyContactRecord{}
	}
	return c.JSON(contacts)
}

func (s *Server) handleCreateContact(c *fiber.Ctx) error {
	var req store.EmergencyContactRecord
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.Phone == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "name and phone are required",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(s.store.SaveContact(req))
}

func (s *Server) handleDeleteContact(c *fiber.Ctx) error {
	s.store.DeleteContact(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleListConditions(c *fiber.Ctx) error {
	return c.JSON(conditions.List())
}

func (s *Server) handleListDoctors(c *fiber.Ctx) error {
	list, err := s.directory.List(c.Query("specialty"))
	if err != nil {
		s.logger.Error("failed to list doctors", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list doctors"})
	}
	return c.JSON(list)
}

func (s *Server) handleListSpecialties(c *fiber.Ctx) error {
	specialties, err := s.directory.Specialties()
	if err != nil {
		s.logger.Error("failed to list specialties", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list specialties"})
	}
	return c.JSON(specialties)
}

func (s *Server) handleReport(c *fiber.Ctx) error {
	r := report.Generate(s.store.ListPredictions(), time.Now())

	if c.Query("format") == "text" {
		c.Set("Content-Type", "text/plain; charset=utf-8")
		c.Set("Content-Disposition", `attachment; filename="`+r.Filename()+`"`)
		return c.SendString(r.Text())
	}
	return c.JSON(r)
}

func (s *Server) handleSession(c *fiber.Ctx) error {
	return c.JSON(s.identity.Fetch(c.UserContext(), bearerToken(c)))
}
