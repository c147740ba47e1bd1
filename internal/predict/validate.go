package predict

import (
	"fmt"
	"strconv"

	apperrors "github.com/carescan/carescan/internal/errors"
)

// diabetesLimits caps each assessment field at its physiological upper
// bound. All fields are required, numeric, and non-negative.
var diabetesLimits = []struct {
	name  string
	limit float64
	value func(DiabetesInput) string
}{
	{"pregnancies", 20, func(in DiabetesInput) string { return in.Pregnancies }},
	{"glucose", 300, func(in DiabetesInput) string { return in.Glucose }},
	{"bloodpressure", 200, func(in DiabetesInput) string { return in.BloodPressure }},
	{"skinthickness", 100, func(in DiabetesInput) string { return in.SkinThickness }},
	{"insulin", 846, func(in DiabetesInput) string { return in.Insulin }},
	{"bmi", 67.1, func(in DiabetesInput) string { return in.BMI }},
	{"dpf", 2.42, func(in DiabetesInput) string { return in.DiabetesPedigree }},
	{"age", 120, func(in DiabetesInput) string { return in.Age }},
}

// Validate checks each field in order and reports the first violation.
func (in DiabetesInput) Validate() error {
	for _, f := range diabetesLimits {
		v := f.value(in)
		if v == "" {
			return validationError(fmt.Sprintf("%s is required", f.name))
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return validationError(fmt.Sprintf("%s must be a number", f.name))
		}
		if n < 0 {
			return validationError(fmt.Sprintf("%s cannot be negative", f.name))
		}
		if n > f.limit {
			return validationError(fmt.Sprintf("%s cannot exceed %v", f.name, f.limit))
		}
	}
	return nil
}

// Validate checks the required fields and their documented ranges.
func (in HypertensionInput) Validate() error {
	for _, v := range []string{in.Age, in.BMI, in.HbA1c, in.BloodGlucose} {
		if v == "" {
			return validationError("Please fill in all fields")
		}
	}

	age, err := strconv.ParseFloat(in.Age, 64)
	if err != nil || age < 0 || age > 120 {
		return validationError("Please enter a valid age")
	}
	bmi, err := strconv.ParseFloat(in.BMI, 64)
	if err != nil || bmi < 10 || bmi > 50 {
		return validationError("Please enter a valid BMI (10-50)")
	}
	hba1c, err := strconv.ParseFloat(in.HbA1c, 64)
	if err != nil || hba1c < 3 || hba1c > 9 {
		return validationError("Please enter a valid HbA1c level (3-9%)")
	}
	glucose, err := strconv.ParseFloat(in.BloodGlucose, 64)
	if err != nil || glucose < 50 || glucose > 300 {
		return validationError("Please enter a valid blood glucose level (50-300 mg/dL)")
	}
	return nil
}

func validationError(msg string) error {
	return apperrors.New(apperrors.ErrValidation.Code, msg)
}

// parseFloatOrZero backs the deliberately permissive CKD intake: missing
// or unparseable values submit as 0 instead of blocking.
func parseFloatOrZero(v string) float64 {
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseIntOrZero(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
