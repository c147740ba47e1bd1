// Package conditions holds the static health-condition reference
// catalog served on the learn pages.
package conditions

// Condition is one reference entry: a plain-language description with
// common symptoms and prevention guidance.
type Condition struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Symptoms    []string `json:"symptoms"`
	Prevention  []string `json:"prevention"`
}

var catalog = []Condition{
	{
		Title:       "Diabetes",
		Description: "A chronic condition that affects how your body turns food into energy and regulates blood glucose levels.",
		Symptoms: []string{
			"Increased thirst and frequent urination",
			"Fatigue and blurred vision",
			"Slow-healing sores or frequent infections",
		},
		Prevention: []string{
			"Maintain a healthy weight and stay active",
			"Follow a balanced diet; limit added sugars",
			"Regular health check-ups and glucose monitoring",
		},
	},
	{
		Title:       "Hypertension (High Blood Pressure)",
		Description: "A condition where the force of blood against your artery walls is consistently too high, increasing the risk of heart disease and stroke.",
		Symptoms: []string{
			"Often no noticeable symptoms",
			"Severe hypertension may cause headaches or shortness of breath",
		},
		Prevention: []string{
			"Reduce sodium intake and eat heart-healthy foods",
			"Exercise regularly and manage stress",
			"Limit alcohol and avoid tobacco",
		},
	},
	{
		Title:       "Chronic Kidney Disease (CKD)",
		Description: "A gradual loss of kidney function over time, affecting the body's ability to filter wastes and excess fluids.",
		Symptoms: []string{
			"Fatigue and swelling in legs/ankles",
			"Changes in urination patterns",
			"Nausea, muscle cramps, or itching",
		},
		Prevention: []string{
			"Control diabetes and blood pressure",
			"Stay hydrated; avoid excessive NSAID use",
			"Regular kidney function screening if at risk",
		},
	},
	{
		Title:       "Lung Cancer",
		Description: "A type of cancer that begins in the lungs; risk increases with smoking and certain environmental exposures.",
		Symptoms: []string{
			"Persistent cough or coughing up blood",
			"Chest pain or shortness of breath",
			"Unexplained weight loss and fatigue",
		},
		Prevention: []string{
			"Avoid smoking; seek support for cessation",
			"Limit exposure to pollutants and radon",
			"Regular screenings for high-risk individuals",
		},
	},
	{
		Title:       "Pneumonia",
		Description: "An infection that inflames the air sacs in one or both lungs, which may fill with fluid or pus.",
		Symptoms: []string{
			"Chest pain when breathing or coughing",
			"Cough with phlegm, fever, chills",
			"Shortness of breath and fatigue",
		},
		Prevention: []string{
			"Vaccination (e.g., flu, pneumococcal) where appropriate",
			"Good hand hygiene and respiratory etiquette",
			"Seek medical care promptly if symptoms worsen",
		},
	},
	{
		Title:       "Skin Diseases",
		Description: "A broad category including conditions like eczema, psoriasis, acne, and infections affecting the skin's health and appearance.",
		Symptoms: []string{
			"Rash, redness, or itching",
			"Dry, scaly, or inflamed patches",
			"Lesions, bumps, or changes in moles",
		},
		Prevention: []string{
			"Gentle skincare; avoid harsh irritants",
			"Sun protection and proper moisturization",
			"Consult a dermatologist for persistent changes",
		},
	},
}

// List returns the full catalog in display order.
func List() []Condition {
	out := make([]Condition, len(catalog))
	copy(out, catalog)
	return out
}

// Get looks up one entry by title.
func Get(title string) (Condition, bool) {
	for _, c := range catalog {
		if c.Title == title {
			return c, true
		}
	}
	return Condition{}, false
}
