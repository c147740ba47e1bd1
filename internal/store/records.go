package store

// PredictionRecord is one normalized prediction outcome. Records are
// immutable once saved; the log is newest-first and capped by retention.
type PredictionRecord struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Result     string            `json:"result"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Details    string            `json:"details,omitempty"`
	Timestamp  string            `json:"timestamp"`
}

// MedicationRecord is a tracked medication with its reminder schedule.
type MedicationRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Time      string `json:"time"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// Medication frequency values offered by the intake form.
const (
	FrequencyOnceDaily   = "Once daily"
	FrequencyTwiceDaily  = "Twice daily"
	FrequencyThriceDaily = "Three times daily"
	FrequencyAsNeeded    = "As needed"
)

// EmergencyContactRecord is a person to reach in an emergency.
type EmergencyContactRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
	CreatedAt    string `json:"createdAt"`
}
