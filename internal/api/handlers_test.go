package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carescan/carescan/internal/config"
	"github.com/carescan/carescan/internal/doctors"
	"github.com/carescan/carescan/internal/store"
)

func setupServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	dataDir := t.TempDir()
	cfg := &config.Config{}
	cfg.Storage.DataDir = dataDir
	cfg.Storage.SQLitePath = filepath.Join(dataDir, "carescan.db")
	cfg.Security.AllowOrigins = []string{"*"}
	if mutate != nil {
		mutate(cfg)
	}

	st, err := store.New(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	dir, err := doctors.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dir.Close() })

	return New(cfg, st, dir, zap.NewNop())
}

func doJSON(t *testing.T, s *Server, method, path string, payload interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealthEndpoint(t *testing.T) {
	s := setupServer(t, nil)

	resp := doJSON(t, s, "GET", "/api/health", nil)
	require.Equal(t, 200, resp.StatusCode)

	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestMetricsEndpoints(t *testing.T) {
	s := setupServer(t, nil)

	resp := doJSON(t, s, "GET", "/metrics", nil)
	require.Equal(t, 200, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, string(raw), "carescan_")

	resp = doJSON(t, s, "GET", "/api/metrics", nil)
	require.Equal(t, 200, resp.StatusCode)
	resp.Body.Close()
}

func TestPredictDiabetesEndToEnd(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success":         true,
			"prediction":      0,
			"prediction_text": "You don't have diabetes",
		})
	}))
	defer backend.Close()

	s := setupServer(t, func(cfg *config.Config) {
		cfg.Predict.DiabetesURL = backend.URL
	})

	payload := map[string]string{
		"pregnancies": "2", "glucose": "120", "bloodpressure": "80",
		"skinthickness": "25", "insulin": "100", "bmi": "28.5",
		"dpf": "0.5", "age": "35",
	}

	resp := doJSON(t, s, "POST", "/api/predict/diabetes", payload)
	require.Equal(t, 201, resp.StatusCode)

	var rec store.PredictionRecord
	decode(t, resp, &rec)
	assert.Equal(t, "Diabetes", rec.Type)
	assert.Equal(t, "You don't have diabetes", rec.Result)
	assert.NotEmpty(t, rec.ID)

	// The record is now in the log.
	resp = doJSON(t, s, "GET", "/api/predictions", nil)
	require.Equal(t, 200, resp.StatusCode)
	var preds []store.PredictionRecord
	decode(t, resp, &preds)
	require.Len(t, preds, 1)
	assert.Equal(t, rec.ID, preds[0].ID)

	resp = doJSON(t, s, "GET", "/api/predictions?group=type", nil)
	require.Equal(t, 200, resp.StatusCode)
	var grouped map[string][]store.PredictionRecord
	decode(t, resp, &grouped)
	require.Len(t, grouped["Diabetes"], 1)

	resp = doJSON(t, s, "GET", "/api/predictions/recent", nil)
	require.Equal(t, 200, resp.StatusCode)
	decode(t, resp, &preds)
	assert.Len(t, preds, 1)
}

func TestPredictValidationReturns422(t *testing.T) {
	s := setupServer(t, func(cfg *config.Config) {
		cfg.Predict.DiabetesURL = "http://127.0.0.1:1"
	})

	payload := map[string]string{
		"pregnancies": "2", "glucose": "301", "bloodpressure": "80",
		"skinthickness": "25", "insulin": "100", "bmi": "28.5",
		"dpf": "0.5", "age": "35",
	}

	resp := doJSON(t, s, "POST", "/api/predict/diabetes", payload)
	require.Equal(t, 422, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "glucose cannot exceed 300", body["error"])
}

func TestPredictGatewayFailureReturns502(t *testing.T) {
	s := setupServer(t, func(cfg *config.Config) {
		cfg.Predict.CKDURL = "http://127.0.0.1:1"
		cfg.Predict.Timeout = 1
	})

	resp := doJSON(t, s, "POST", "/api/predict/ckd", map[string]string{"age": "50"})
	assert.Equal(t, 502, resp.StatusCode)

	// Nothing persisted.
	resp = doJSON(t, s, "GET", "/api/predictions", nil)
	var preds []store.PredictionRecord
	decode(t, resp, &preds)
	assert.Empty(t, preds)
}

func TestPredictImageRequiresFile(t *testing.T) {
	s := setupServer(t, nil)

	req := httptest.NewRequest("POST", "/api/predict/skin", nil)
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 422, resp.StatusCode)
}

func TestMedicationLifecycle(t *testing.T) {
	s := setupServer(t, nil)

	resp := doJSON(t, s, "POST", "/api/medications", map[string]string{
		"name":   "Metformin",
		"dosage": "500mg",
	})
	require.Equal(t, 201, resp.StatusCode)

	var med store.MedicationRecord
	decode(t, resp, &med)
	assert.NotEmpty(t, med.ID)
	assert.Equal(t, store.FrequencyOnceDaily, med.Frequency)
	assert.Equal(t, "08:00", med.Time)
	assert.NotEmpty(t, med.CreatedAt)

	resp = doJSON(t, s, "GET", "/api/medications", nil)
	var meds []store.MedicationRecord
	decode(t, resp, &meds)
	require.Len(t, meds, 1)

	resp = doJSON(t, s, "DELETE", "/api/medications/"+med.ID, nil)
	assert.Equal(t, 204, resp.StatusCode)

	resp = doJSON(t, s, "GET", "/api/medications", nil)
	decode(t, resp, &meds)
	assert.Empty(t, meds)
}

func TestMedicationValidation(t *testing.T) {
	s := setupServer(t, nil)

	resp := doJSON(t, s, "POST", "/api/medications", map[string]string{"name": "Metformin"})
	assert.Equal(t, 422, resp.StatusCode)
}

func TestContactLifecycle(t *testing.T) {
	s := setupServer(t, nil)

	resp := doJSON(t, s, "POST", "/api/contacts", map[string]string{
		"name":         "Jo Doe",
		"relationship": "Parent",
		"phone":        "+1 555 0100",
	})
	require.Equal(t, 201, resp.StatusCode)

	var contact store.EmergencyContactRecord
	decode(t, resp, &contact)
	assert.NotEmpty(t, contact.ID)

	resp = doJSON(t, s, "POST", "/api/contacts", map[string]string{"name": "No Phone"})
	assert.Equal(t, 422, resp.StatusCode)

	resp = doJSON(t, s, "DELETE", "/api/contacts/"+contact.ID, nil)
	assert.Equal(t, 204, resp.StatusCode)
}

func TestConditionsEndpoint(t *testing.T) {
	s := setupServer(t, nil)

	resp := doJSON(t, s, "GET", "/api/conditions", nil)
	require.Equal(t, 200, resp.StatusCode)

	var list []map[string]interface{}
	decode(t, resp, &list)
	assert.Len(t, list, 6)
}

func TestDoctorsEndpoint(t *testing.T) {
	s := setupServer(t, nil)

	resp := doJSON(t, s, "GET", "/api/doctors", nil)
	require.Equal(t, 200, resp.StatusCode)
	var list []map[string]interface{}
	decode(t, resp, &list)
	assert.Len(t, list, 10)

	resp = doJSON(t, s, "GET", "/api/doctors?specialty=Nephrologist", nil)
	decode(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Dr. Kavita Singh", list[0]["name"])

	resp = doJSON(t, s, "GET", "/api/doctors/specialties", nil)
	require.Equal(t, 200, resp.StatusCode)
	var specialties []string
	decode(t, resp, &specialties)
	assert.Len(t, specialties, 10)
}

func TestTrendsEndpoint(t *testing.T) {
	s := setupServer(t, nil)

	resp := doJSON(t, s, "GET", "/api/trends", nil)
	require.Equal(t, 200, resp.StatusCode)

	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Contains(t, body, "summary")
	assert.Contains(t, body, "diabetes")
	assert.Contains(t, body, "hypertension")
}

func TestReportEndpoint(t *testing.T) {
	s := setupServer(t, nil)

	resp := doJSON(t, s, "GET", "/api/report", nil)
	require.Equal(t, 200, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Contains(t, body, "pages")

	resp = doJSON(t, s, "GET", "/api/report?format=text", nil)
	require.Equal(t, 200, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, string(raw), "CareScan Health Report")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "CareScan_Report_")
}

func TestSessionSignedOutByDefault(t *testing.T) {
	s := setupServer(t, nil)

	resp := doJSON(t, s, "GET", "/api/session", nil)
	require.Equal(t, 200, resp.StatusCode)

	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, false, body["signedIn"])
	assert.Equal(t, "User", body["displayName"])
}
