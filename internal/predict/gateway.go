package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/carescan/carescan/internal/config"
	apperrors "github.com/carescan/carescan/internal/errors"
	"github.com/carescan/carescan/internal/metrics"
	"github.com/carescan/carescan/internal/store"
)

// Gateway submits assessments to the external prediction endpoints and
// persists exactly one record per successful submission. Each condition
// gets its own method because the endpoints differ in transport shape
// (multipart image, multipart form fields, JSON) and response schema.
type Gateway struct {
	cfg     config.PredictConfig
	client  *http.Client
	store   *store.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewGateway creates a gateway backed by the given record store.
func NewGateway(cfg config.PredictConfig, st *store.Store, logger *zap.Logger) *Gateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60
	}

	return &Gateway{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		store:   st,
		logger:  logger,
		metrics: metrics.Default(),
	}
}

// PredictSkin submits a skin image for classification.
func (g *Gateway) PredictSkin(ctx context.Context, filename string, image io.Reader) (store.PredictionRecord, error) {
	if image == nil {
		g.metrics.RecordPredictionBlocked()
		return store.PredictionRecord{}, validationError("Please select an image first")
	}

	body, err := g.postImage(ctx, g.cfg.SkinURL, filename, image)
	if err != nil {
		g.metrics.RecordPrediction(ConditionSkin, false)
		return store.PredictionRecord{}, err
	}

	outcome, err := normalizeSkin(body)
	if err != nil {
		g.metrics.RecordPrediction(ConditionSkin, false)
		return store.PredictionRecord{}, err
	}

	return g.persist(ConditionSkin, outcome), nil
}

// PredictPneumonia submits a chest X-ray image.
func (g *Gateway) PredictPneumonia(ctx context.Context, filename string, image io.Reader) (store.PredictionRecord, error) {
	if image == nil {
		g.metrics.RecordPredictionBlocked()
		return store.PredictionRecord{}, validationError("Please select an image first")
	}

	body, err := g.postImage(ctx, g.cfg.PneumoniaURL, filename, image)
	if err != nil {
		g.metrics.RecordPrediction(ConditionPneumonia, false)
		return store.PredictionRecord{}, err
	}

	outcome, err := normalizePneumonia(body)
	if err != nil {
		g.metrics.RecordPrediction(ConditionPneumonia, false)
		return store.PredictionRecord{}, err
	}

	return g.persist(ConditionPneumonia, outcome), nil
}

// PredictLungCancer submits a CT scan image.
func (g *Gateway) PredictLungCancer(ctx context.Context, filename string, image io.Reader) (store.PredictionRecord, error) {
	if image == nil {
		g.metrics.RecordPredictionBlocked()
		return store.PredictionRecord{}, validationError("Please select an image first")
	}

	body, err := g.postImage(ctx, g.cfg.LungCancerURL, filename, image)
	if err != nil {
		g.metrics.RecordPrediction(ConditionLungCancer, false)
		return store.PredictionRecord{}, err
	}

	outcome, err := normalizeLungCancer(body)
	if err != nil {
		g.metrics.RecordPrediction(ConditionLungCancer, false)
		return store.PredictionRecord{}, err
	}

	return g.persist(ConditionLungCancer, outcome), nil
}

// PredictDiabetes validates the assessment and submits it as form
// fields. Validation failures never reach the network.
func (g *Gateway) PredictDiabetes(ctx context.Context, in DiabetesInput) (store.PredictionRecord, error) {
	if err := in.Validate(); err != nil {
		g.metrics.RecordPredictionBlocked()
		return store.PredictionRecord{}, err
	}

	fields := []formField{
		{"pregnancies", in.Pregnancies},
		{"glucose", in.Glucose},
		{"bloodpressure", in.BloodPressure},
		{"skinthickness", in.SkinThickness},
		{"insulin", in.Insulin},
		{"bmi", in.BMI},
		{"dpf", in.DiabetesPedigree},
		{"age", in.Age},
	}

	body, err := g.postFields(ctx, g.cfg.DiabetesURL, fields)
	if err != nil {
		g.metrics.RecordPrediction(ConditionDiabetes, false)
		return store.PredictionRecord{}, err
	}

	outcome, err := normalizeDiabetes(body, in)
	if err != nil {
		g.metrics.RecordPrediction(ConditionDiabetes, false)
		return store.PredictionRecord{}, err
	}

	return g.persist(ConditionDiabetes, outcome), nil
}

// PredictHypertension validates the assessment and submits it as JSON
// with numeric field types.
func (g *Gateway) PredictHypertension(ctx context.Context, in HypertensionInput) (store.PredictionRecord, error) {
	if err := in.Validate(); err != nil {
		g.metrics.RecordPredictionBlocked()
		return store.PredictionRecord{}, err
	}

	payload := map[string]interface{}{
		"gender":              parseIntOrZero(in.Gender),
		"age":                 parseFloatOrZero(in.Age),
		"diabetes":            parseIntOrZero(in.Diabetes),
		"heart_disease":       parseIntOrZero(in.HeartDisease),
		"smoking_history":     parseIntOrZero(in.SmokingHistory),
		"bmi":                 parseFloatOrZero(in.BMI),
		"HbA1c_level":         parseFloatOrZero(in.HbA1c),
		"blood_glucose_level": parseIntOrZero(in.BloodGlucose),
	}

	body, err := g.postJSON(ctx, g.cfg.HypertensionURL, payload)
	if err != nil {
		g.metrics.RecordPrediction(ConditionHypertension, false)
		return store.PredictionRecord{}, err
	}

	outcome, err := normalizeHypertension(body, in)
	if err != nil {
		g.metrics.RecordPrediction(ConditionHypertension, false)
		return store.PredictionRecord{}, err
	}

	return g.persist(ConditionHypertension, outcome), nil
}

// PredictCKD submits the screening as JSON. Intake is permissive:
// missing or unparseable values go out as 0 rather than blocking.
func (g *Gateway) PredictCKD(ctx context.Context, in CKDInput) (store.PredictionRecord, error) {
	payload := map[string]interface{}{
		"age":                     parseFloatOrZero(in.Age),
		"blood_pressure":          parseFloatOrZero(in.BloodPressure),
		"specific_gravity":        parseFloatOrZero(in.SpecificGravity),
		"albumin":                 parseFloatOrZero(in.Albumin),
		"sugar":                   parseFloatOrZero(in.Sugar),
		"red_blood_cells":         parseIntOrZero(in.RedBloodCells),
		"pus_cell":                parseIntOrZero(in.PusCell),
		"pus_cell_clumps":         parseIntOrZero(in.PusCellClumps),
		"bacteria":                parseIntOrZero(in.Bacteria),
		"blood_glucose_random":    parseFloatOrZero(in.BloodGlucoseRandom),
		"blood_urea":              parseFloatOrZero(in.BloodUrea),
		"serum_creatinine":        parseFloatOrZero(in.SerumCreatinine),
		"sodium":                  parseFloatOrZero(in.Sodium),
		"potassium":               parseFloatOrZero(in.Potassium),
		"haemoglobin":             parseFloatOrZero(in.Haemoglobin),
		"packed_cell_volume":      parseFloatOrZero(in.PackedCellVolume),
		"white_blood_cell_count":  parseFloatOrZero(in.WhiteBloodCellCount),
		"red_blood_cell_count":    parseFloatOrZero(in.RedBloodCellCount),
		"hypertension":            parseIntOrZero(in.Hypertension),
		"diabetes_mellitus":       parseIntOrZero(in.DiabetesMellitus),
		"coronary_artery_disease": parseIntOrZero(in.CoronaryArteryDisease),
		"appetite":                parseIntOrZero(in.Appetite),
		"peda_edema":              parseIntOrZero(in.PedalEdema),
		"aanemia":                 parseIntOrZero(in.Anemia),
	}

	body, err := g.postJSON(ctx, g.cfg.CKDURL, payload)
	if err != nil {
		g.metrics.RecordPrediction(ConditionCKD, false)
		return store.PredictionRecord{}, err
	}

	outcome, err := normalizeCKD(body, in)
	if err != nil {
		g.metrics.RecordPrediction(ConditionCKD, false)
		return store.PredictionRecord{}, err
	}

	return g.persist(ConditionCKD, outcome), nil
}

func (g *Gateway) persist(condition string, outcome Outcome) store.PredictionRecord {
	g.metrics.RecordPrediction(condition, true)
	return g.store.SavePrediction(store.PredictionRecord{
		Type:       condition,
		Result:     outcome.Result,
		Details:    outcome.Details,
		Parameters: outcome.Parameters,
	})
}

type formField struct {
	name  string
	value string
}

// postImage uploads a single file as multipart form data under the
// "file" field.
func (g *Gateway) postImage(ctx context.Context, url, filename string, image io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrEndpointUnavailable.Code, "failed to build upload")
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrEndpointUnavailable.Code, "failed to read image")
	}
	if err := w.Close(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrEndpointUnavailable.Code, "failed to build upload")
	}

	return g.post(ctx, url, w.FormDataContentType(), &buf)
}

// postFields submits scalar values as multipart form fields in order.
func (g *Gateway) postFields(ctx context.Context, url string, fields []formField) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrEndpointUnavailable.Code, "failed to build form")
		}
	}
	if err := w.Close(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrEndpointUnavailable.Code, "failed to build form")
	}

	return g.post(ctx, url, w.FormDataContentType(), &buf)
}

func (g *Gateway) postJSON(ctx context.Context, url string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrEndpointUnavailable.Code, "failed to marshal request")
	}
	return g.post(ctx, url, "application/json", bytes.NewReader(body))
}

func (g *Gateway) post(ctx context.Context, url, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrEndpointUnavailable.Code, "failed to create request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	g.metrics.RecordCallDuration(time.Since(start))
	if err != nil {
		g.logger.Warn("prediction endpoint unreachable",
			zap.String("url", url),
			zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.ErrEndpointUnavailable.Code,
			"prediction endpoint unavailable")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrEndpointUnavailable.Code,
			"failed to read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Warn("prediction endpoint error",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode))
		return nil, apperrors.New(apperrors.ErrEndpointStatus.Code,
			fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(respBody)))
	}

	return respBody, nil
}
