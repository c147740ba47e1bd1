package predict

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/carescan/carescan/internal/errors"
)

// One normalization function per condition. Each takes the raw endpoint
// body and produces the canonical Outcome, isolating that endpoint's
// response quirks so the mapping is testable without a network.

const (
	diabetesPositiveAdvice = "Please consult with a healthcare professional for proper medical advice."
	diabetesNegativeAdvice = "Maintain a healthy lifestyle to stay diabetes-free."

	ckdPositiveDetail = "Chronic kidney disease detected - consult a nephrologist"
	ckdNegativeDetail = "No chronic kidney disease detected"
)

func normalizeSkin(body []byte) (Outcome, error) {
	var resp struct {
		Success     bool            `json:"success"`
		Error       string          `json:"error"`
		Predictions json.RawMessage `json:"predictions"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Outcome{}, shapeError("invalid JSON response", err)
	}

	var ranked []struct {
		Class      string  `json:"class"`
		Confidence float64 `json:"confidence"`
	}
	isList := json.Unmarshal(resp.Predictions, &ranked) == nil && len(resp.Predictions) > 0 &&
		resp.Predictions[0] == '['

	if !resp.Success && !isList {
		msg := resp.Error
		if msg == "" {
			msg = "Prediction failed"
		}
		return Outcome{}, apperrors.New(apperrors.ErrResponseShape.Code, msg)
	}

	if isList {
		if len(ranked) == 0 {
			return Outcome{}, shapeError("no predictions available", nil)
		}
		lines := make([]string, 0, len(ranked))
		for _, p := range ranked {
			lines = append(lines, fmt.Sprintf("%s: %.2f%%", p.Class, p.Confidence*100))
		}
		result := ranked[0].Class
		if result == "" {
			result = "Analyzed"
		}
		return Outcome{Result: result, Details: strings.Join(lines, "\n")}, nil
	}

	// An object-shaped predictions field still yields a best-effort record.
	if len(resp.Predictions) > 0 && string(resp.Predictions) != "null" {
		return Outcome{Result: "Analyzed", Details: string(resp.Predictions)}, nil
	}

	return Outcome{}, shapeError("no predictions available", nil)
}

func normalizePneumonia(body []byte) (Outcome, error) {
	var resp struct {
		Prediction string          `json:"prediction"`
		Confidence json.RawMessage `json:"confidence"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Outcome{}, shapeError("invalid JSON response", err)
	}

	confidence, ok := asFloat(resp.Confidence)
	if resp.Prediction == "" || !ok {
		return Outcome{}, apperrors.New(apperrors.ErrResponseShape.Code,
			"Prediction failed: Invalid response format")
	}

	return Outcome{
		Result:  resp.Prediction,
		Details: fmt.Sprintf("%s (%.2f%%)", resp.Prediction, confidence*100),
	}, nil
}

func normalizeLungCancer(body []byte) (Outcome, error) {
	// The endpoint has been observed returning a bare string as well as
	// objects keyed class/prediction with confidence or probability.
	var asString string
	if json.Unmarshal(body, &asString) == nil {
		return Outcome{
			Result:  asString,
			Details: fmt.Sprintf("%s - Confidence: %.1f%%", asString, 100.0),
		}, nil
	}

	var resp struct {
		Class       string          `json:"class"`
		Prediction  string          `json:"prediction"`
		Confidence  json.RawMessage `json:"confidence"`
		Probability json.RawMessage `json:"probability"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Outcome{}, shapeError("invalid JSON response", err)
	}

	class := resp.Class
	if class == "" {
		class = resp.Prediction
	}
	if class == "" {
		class = "Unknown"
	}

	confidence := 1.0
	if c, ok := asFloat(resp.Confidence); ok && c != 0 {
		confidence = c
	} else if p, ok := asFloat(resp.Probability); ok && p != 0 {
		confidence = p
	}

	return Outcome{
		Result:  class,
		Details: fmt.Sprintf("%s - Confidence: %.1f%%", class, confidence*100),
	}, nil
}

func normalizeDiabetes(body []byte, in DiabetesInput) (Outcome, error) {
	var resp struct {
		Success        bool   `json:"success"`
		Prediction     int    `json:"prediction"`
		PredictionText string `json:"prediction_text"`
		Error          string `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Outcome{}, shapeError("invalid JSON response", err)
	}

	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "Unexpected error"
		}
		return Outcome{}, apperrors.New(apperrors.ErrResponseShape.Code, msg)
	}

	details := diabetesNegativeAdvice
	if resp.Prediction == 1 {
		details = diabetesPositiveAdvice
	}

	return Outcome{
		Result:     resp.PredictionText,
		Details:    details,
		Parameters: in.parameters(),
	}, nil
}

func normalizeHypertension(body []byte, in HypertensionInput) (Outcome, error) {
	var resp struct {
		Hypertension json.RawMessage `json:"hypertension"`
		Message      string          `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Outcome{}, shapeError("invalid JSON response", err)
	}
	if len(resp.Hypertension) == 0 {
		return Outcome{}, shapeError("Invalid response format", nil)
	}

	result := "No Hypertension"
	if isTruthy(resp.Hypertension) {
		result = "Hypertension Detected"
	}

	return Outcome{
		Result:     result,
		Details:    resp.Message,
		Parameters: in.parameters(),
	}, nil
}

func normalizeCKD(body []byte, in CKDInput) (Outcome, error) {
	var resp struct {
		Prediction string `json:"prediction"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Outcome{}, shapeError("invalid JSON response", err)
	}
	if resp.Prediction == "" {
		return Outcome{}, shapeError("Invalid response format", nil)
	}

	// Upstream labels the negative case "ckd". Counter-intuitive, but it
	// matches the deployed model's contract; changing it here would flip
	// every stored result.
	if resp.Prediction == "ckd" {
		return Outcome{
			Result:     "No CKD Detected",
			Details:    ckdNegativeDetail,
			Parameters: in.parameters(),
		}, nil
	}
	return Outcome{
		Result:     "CKD Detected",
		Details:    ckdPositiveDetail,
		Parameters: in.parameters(),
	}, nil
}

// Parameter echoes. Keys are display labels; categorical codes are
// translated for readability while numeric values stay verbatim.

func (in DiabetesInput) parameters() map[string]string {
	return map[string]string{
		"Pregnancies":       in.Pregnancies,
		"Glucose":           in.Glucose,
		"Blood Pressure":    in.BloodPressure,
		"Skin Thickness":    in.SkinThickness,
		"Insulin":           in.Insulin,
		"BMI":               in.BMI,
		"Diabetes Pedigree": in.DiabetesPedigree,
		"Age":               in.Age,
	}
}

func (in HypertensionInput) parameters() map[string]string {
	gender := "Female"
	if in.Gender == "1" {
		gender = "Male"
	}
	smoking := "Never"
	switch in.SmokingHistory {
	case "1":
		smoking = "Former"
	case "2":
		smoking = "Current"
	}
	return map[string]string{
		"Gender":          gender,
		"Age":             in.Age,
		"Diabetes":        yesNo(in.Diabetes),
		"Heart Disease":   yesNo(in.HeartDisease),
		"Smoking History": smoking,
		"BMI":             in.BMI,
		"HbA1c Level":     in.HbA1c,
		"Blood Glucose":   in.BloodGlucose,
	}
}

func (in CKDInput) parameters() map[string]string {
	return map[string]string{
		"Age":              in.Age,
		"Blood Pressure":   in.BloodPressure,
		"Specific Gravity": in.SpecificGravity,
		"Albumin":          in.Albumin,
		"Sugar":            in.Sugar,
		"Blood Glucose":    in.BloodGlucoseRandom,
		"Blood Urea":       in.BloodUrea,
		"Serum Creatinine": in.SerumCreatinine,
		"Sodium":           in.Sodium,
		"Potassium":        in.Potassium,
		"Haemoglobin":      in.Haemoglobin,
	}
}

func yesNo(code string) string {
	if code == "1" {
		return "Yes"
	}
	return "No"
}

// asFloat coerces a raw JSON value that may arrive as a number or a
// numeric string.
func asFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return f, true
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// isTruthy mirrors loose boolean coercion: false, 0, "", and null are
// all negative.
func isTruthy(raw json.RawMessage) bool {
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return b
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return f != 0
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s != "" && s != "0" && s != "false"
	}
	return false
}

func shapeError(msg string, cause error) error {
	if cause != nil {
		return apperrors.New(apperrors.ErrResponseShape.Code, msg, cause)
	}
	return apperrors.New(apperrors.ErrResponseShape.Code, msg)
}
