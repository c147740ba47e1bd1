package predict

// Condition tags as they appear on persisted prediction records.
const (
	ConditionSkin         = "Skin Disease"
	ConditionPneumonia    = "Pneumonia"
	ConditionLungCancer   = "Lung Cancer"
	ConditionDiabetes     = "Diabetes"
	ConditionHypertension = "Hypertension"
	ConditionCKD          = "Chronic Kidney Disease (CKD)"
)

// Outcome is the canonical shape every condition adapter produces from a
// raw endpoint response before persistence.
type Outcome struct {
	Result     string
	Details    string
	Parameters map[string]string
}

// DiabetesInput holds the eight assessment fields as submitted. Values
// stay strings so the persisted parameter echo matches what the user
// typed; validation parses them.
type DiabetesInput struct {
	Pregnancies      string `json:"pregnancies"`
	Glucose          string `json:"glucose"`
	BloodPressure    string `json:"bloodpressure"`
	SkinThickness    string `json:"skinthickness"`
	Insulin          string `json:"insulin"`
	BMI              string `json:"bmi"`
	DiabetesPedigree string `json:"dpf"`
	Age              string `json:"age"`
}

// HypertensionInput holds the eight assessment fields. The categorical
// fields carry the endpoint's integer codes ("0"/"1"/"2") as strings.
type HypertensionInput struct {
	Gender         string `json:"gender"`
	Age            string `json:"age"`
	Diabetes       string `json:"diabetes"`
	HeartDisease   string `json:"heart_disease"`
	SmokingHistory string `json:"smoking_history"`
	BMI            string `json:"bmi"`
	HbA1c          string `json:"HbA1c_level"`
	BloodGlucose   string `json:"blood_glucose_level"`
}

// CKDInput holds the twenty-four screening fields. Every field is
// optional: missing or unparseable values are submitted as 0.
type CKDInput struct {
	Age                   string `json:"age"`
	BloodPressure         string `json:"blood_pressure"`
	SpecificGravity       string `json:"specific_gravity"`
	Albumin               string `json:"albumin"`
	Sugar                 string `json:"sugar"`
	RedBloodCells         string `json:"red_blood_cells"`
	PusCell               string `json:"pus_cell"`
	PusCellClumps         string `json:"pus_cell_clumps"`
	Bacteria              string `json:"bacteria"`
	BloodGlucoseRandom    string `json:"blood_glucose_random"`
	BloodUrea             string `json:"blood_urea"`
	SerumCreatinine       string `json:"serum_creatinine"`
	Sodium                string `json:"sodium"`
	Potassium             string `json:"potassium"`
	Haemoglobin           string `json:"haemoglobin"`
	PackedCellVolume      string `json:"packed_cell_volume"`
	WhiteBloodCellCount   string `json:"white_blood_cell_count"`
	RedBloodCellCount     string `json:"red_blood_cell_count"`
	Hypertension          string `json:"hypertension"`
	DiabetesMellitus      string `json:"diabetes_mellitus"`
	CoronaryArteryDisease string `json:"coronary_artery_disease"`
	Appetite              string `json:"appetite"`
	PedalEdema            string `json:"peda_edema"`
	Anemia                string `json:"aanemia"`
}
