package store

import (
	"fmt"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carescan/carescan/internal/config"
	"github.com/carescan/carescan/internal/metrics"
)

func setupTestStore(t *testing.T) *Store {
	cfg := &config.Config{}
	cfg.Storage.DataDir = t.TempDir()

	logger, _ := zap.NewDevelopment()
	s, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	// Keep counters isolated per test
	s.metrics = metrics.New()
	return s
}

// Prediction log tests

func TestSavePrediction_AssignsIDAndTimestamp(t *testing.T) {
	s := setupTestStore(t)

	saved := s.SavePrediction(PredictionRecord{Type: "Diabetes", Result: "Not Diabetic"})
	assert.NotEmpty(t, saved.ID)
	assert.NotEmpty(t, saved.Timestamp)

	list := s.ListPredictions()
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)
	assert.Equal(t, "Diabetes", list[0].Type)
}

func TestSavePrediction_NewestFirst(t *testing.T) {
	s := setupTestStore(t)

	s.SavePrediction(PredictionRecord{Type: "Diabetes", Result: "first"})
	s.SavePrediction(PredictionRecord{Type: "Pneumonia", Result: "second"})
	s.SavePrediction(PredictionRecord{Type: "CKD", Result: "third"})

	list := s.ListPredictions()
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Result)
	assert.Equal(t, "second", list[1].Result)
	assert.Equal(t, "first", list[2].Result)
}

func TestSavePrediction_RetentionCap(t *testing.T) {
	s := setupTestStore(t)

	for i := 0; i < 55; i++ {
		s.SavePrediction(PredictionRecord{
			Type:   "Diabetes",
			Result: fmt.Sprintf("result-%d", i),
		})
	}

	list := s.ListPredictions()
	require.Len(t, list, 50)

	// Newest survives at the head, the five oldest are gone
	assert.Equal(t, "result-54", list[0].Result)
	assert.Equal(t, "result-5", list[49].Result)
	for _, rec := range list {
		assert.NotEqual(t, "result-0", rec.Result)
		assert.NotEqual(t, "result-4", rec.Result)
	}
}

func TestSavePrediction_UniqueIDsUnderRapidCalls(t *testing.T) {
	s := setupTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		rec := s.SavePrediction(PredictionRecord{Type: "Diabetes", Result: "x"})
		assert.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
		seen[rec.ID] = true
	}
}

func TestListPredictions_EmptyNamespace(t *testing.T) {
	s := setupTestStore(t)
	assert.Empty(t, s.ListPredictions())
}

func TestListPredictions_MalformedNamespace(t *testing.T) {
	s := setupTestStore(t)

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(predictionNS.key), []byte("{not json at all"))
	})
	require.NoError(t, err)

	// Malformed data reads as empty, never panics or errors out
	assert.Empty(t, s.ListPredictions())

	// Next write heals the namespace
	s.SavePrediction(PredictionRecord{Type: "Diabetes", Result: "healed"})
	list := s.ListPredictions()
	require.Len(t, list, 1)
	assert.Equal(t, "healed", list[0].Result)
}

func TestPredictionParameters_RoundTrip(t *testing.T) {
	s := setupTestStore(t)

	s.SavePrediction(PredictionRecord{
		Type:   "Diabetes",
		Result: "Diabetic",
		Parameters: map[string]string{
			"Glucose":        "148",
			"Blood Pressure": "72",
		},
		Details: "Please consult with a healthcare professional for proper medical advice.",
	})

	list := s.ListPredictions()
	require.Len(t, list, 1)
	assert.Equal(t, "148", list[0].Parameters["Glucose"])
	assert.Equal(t, "72", list[0].Parameters["Blood Pressure"])
}

// Medication log tests

func TestMedications_SaveListDelete(t *testing.T) {
	s := setupTestStore(t)

	med := s.SaveMedication(MedicationRecord{
		Name:      "Metformin",
		Dosage:    "500mg",
		Frequency: FrequencyTwiceDaily,
		Time:      "08:00",
	})
	s.SaveMedication(MedicationRecord{
		Name:      "Lisinopril",
		Dosage:    "10mg",
		Frequency: FrequencyOnceDaily,
		Time:      "20:00",
	})

	list := s.ListMedications()
	require.Len(t, list, 2)
	assert.Equal(t, "Lisinopril", list[0].Name)
	assert.NotEmpty(t, list[0].CreatedAt)

	s.DeleteMedication(med.ID)
	list = s.ListMedications()
	require.Len(t, list, 1)
	assert.Equal(t, "Lisinopril", list[0].Name)
}

func TestMedications_Unbounded(t *testing.T) {
	s := setupTestStore(t)

	for i := 0; i < 60; i++ {
		s.SaveMedication(MedicationRecord{Name: fmt.Sprintf("med-%d", i)})
	}
	assert.Len(t, s.ListMedications(), 60)
}

func TestDeleteMedication_UnknownIDIsNoOp(t *testing.T) {
	s := setupTestStore(t)

	s.SaveMedication(MedicationRecord{Name: "Metformin"})
	s.DeleteMedication("no-such-id")

	assert.Len(t, s.ListMedications(), 1)
}

func TestDeleteMedication_RemovesExactlyOne(t *testing.T) {
	s := setupTestStore(t)

	a := s.SaveMedication(MedicationRecord{Name: "A"})
	b := s.SaveMedication(MedicationRecord{Name: "B"})
	c := s.SaveMedication(MedicationRecord{Name: "C"})

	s.DeleteMedication(b.ID)

	list := s.ListMedications()
	require.Len(t, list, 2)
	assert.Equal(t, c.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
}

// Emergency contact tests

func TestContacts_SaveListDelete(t *testing.T) {
	s := setupTestStore(t)

	contact := s.SaveContact(EmergencyContactRecord{
		Name:         "Jane Doe",
		Relationship: "Sister",
		Phone:        "+1 555 0100",
		Email:        "jane@example.com",
	})

	list := s.ListContacts()
	require.Len(t, list, 1)
	assert.Equal(t, "Sister", list[0].Relationship)

	s.DeleteContact(contact.ID)
	assert.Empty(t, s.ListContacts())
}

func TestContacts_OptionalEmailOmitted(t *testing.T) {
	s := setupTestStore(t)

	s.SaveContact(EmergencyContactRecord{
		Name:         "John Doe",
		Relationship: "Father",
		Phone:        "+1 555 0101",
	})

	items, err := s.readRaw(contactNS)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.NotContains(t, string(items[0]), `"email"`)
}

// Namespace isolation

func TestNamespaces_AreIndependent(t *testing.T) {
	s := setupTestStore(t)

	s.SavePrediction(PredictionRecord{Type: "Diabetes", Result: "x"})
	s.SaveMedication(MedicationRecord{Name: "Metformin"})
	s.SaveContact(EmergencyContactRecord{Name: "Jane"})

	assert.Len(t, s.ListPredictions(), 1)
	assert.Len(t, s.ListMedications(), 1)
	assert.Len(t, s.ListContacts(), 1)

	s.DeleteMedication(s.ListMedications()[0].ID)
	assert.Len(t, s.ListPredictions(), 1)
	assert.Len(t, s.ListContacts(), 1)
}
