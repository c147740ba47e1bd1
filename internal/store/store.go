package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/carescan/carescan/internal/config"
	"github.com/carescan/carescan/internal/metrics"
)

// Store persists the three record namespaces. It is the resilience
// boundary for all persistence: the exported Save/List/Delete surface
// never propagates a storage fault. Reads degrade to an empty list and
// writes to a no-op, with the failure logged and counted.
type Store struct {
	db      *badger.DB
	logger  *zap.Logger
	metrics *metrics.Metrics

	// Serializes the read-modify-write namespace rewrites. Processes
	// sharing a data dir still race with last-writer-wins semantics.
	mu sync.Mutex
}

// New opens the record database under the configured path.
func New(cfg *config.Config, logger *zap.Logger) (*Store, error) {
	badgerPath := cfg.Storage.BadgerPath
	if badgerPath == "" {
		badgerPath = filepath.Join(cfg.Storage.DataDir, "records")
	}

	opts := badger.DefaultOptions(badgerPath).
		WithLogger(nil).
		WithNumVersionsToKeep(1).
		WithCompactL0OnClose(true).
		WithValueLogFileSize(16 << 20).
		WithMemTableSize(16 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open record database: %w", err)
	}

	return &Store{
		db:      db,
		logger:  logger,
		metrics: metrics.Default(),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunValueLogGC triggers one round of Badger value-log garbage collection.
func (s *Store) RunValueLogGC() error {
	return s.db.RunValueLogGC(0.5)
}

// newRecordID builds an identifier from a high-resolution timestamp and a
// random suffix so rapid successive saves cannot collide.
func newRecordID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), hex.EncodeToString(b))
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Prediction operations

// SavePrediction assigns an id and timestamp, prepends the record to the
// prediction log, and truncates to the retention cap. Storage faults are
// swallowed; the returned record reflects what was (or would have been)
// saved.
func (s *Store) SavePrediction(rec PredictionRecord) PredictionRecord {
	rec.ID = newRecordID()
	rec.Timestamp = nowISO()

	evicted, err := s.insert(predictionNS, rec)
	if err != nil {
		s.logger.Warn("failed to save prediction",
			zap.String("type", rec.Type), zap.Error(err))
		s.metrics.RecordStorageFailure(true)
		return rec
	}

	s.metrics.RecordSave()
	if evicted > 0 {
		s.metrics.RecordEviction(int64(evicted))
	}
	return rec
}

// ListPredictions returns all predictions, newest-first. Any storage
// fault reads as an empty log.
func (s *Store) ListPredictions() []PredictionRecord {
	var recs []PredictionRecord
	if err := s.list(predictionNS, &recs); err != nil {
		s.logger.Warn("failed to list predictions", zap.Error(err))
		s.metrics.RecordStorageFailure(false)
		return nil
	}
	return recs
}

// Medication operations

func (s *Store) SaveMedication(rec MedicationRecord) MedicationRecord {
	rec.ID = newRecordID()
	rec.CreatedAt = nowISO()

	if _, err := s.insert(medicationNS, rec); err != nil {
		s.logger.Warn("failed to save medication",
			zap.String("name", rec.Name), zap.Error(err))
		s.metrics.RecordStorageFailure(true)
		return rec
	}

	s.metrics.RecordSave()
	return rec
}

func (s *Store) ListMedications() []MedicationRecord {
	var recs []MedicationRecord
	if err := s.list(medicationNS, &recs); err != nil {
		s.logger.Warn("failed to list medications", zap.Error(err))
		s.metrics.RecordStorageFailure(false)
		return nil
	}
	return recs
}

// DeleteMedication removes the medication with the given id. Unknown ids
// are a silent no-op.
func (s *Store) DeleteMedication(id string) {
	removed, err := s.deleteByID(medicationNS, id)
	if err != nil {
		s.logger.Warn("failed to delete medication",
			zap.String("id", id), zap.Error(err))
		s.metrics.RecordStorageFailure(true)
		return
	}
	if removed {
		s.metrics.RecordDelete()
	}
}

// Emergency contact operations

func (s *Store) SaveContact(rec EmergencyContactRecord) EmergencyContactRecord {
	rec.ID = newRecordID()
	rec.CreatedAt = nowISO()

	if _, err := s.insert(contactNS, rec); err != nil {
		s.logger.Warn("failed to save contact",
			zap.String("name", rec.Name), zap.Error(err))
		s.metrics.RecordStorageFailure(true)
		return rec
	}

	s.metrics.RecordSave()
	return rec
}

func (s *Store) ListContacts() []EmergencyContactRecord {
	var recs []EmergencyContactRecord
	if err := s.list(contactNS, &recs); err != nil {
		s.logger.Warn("failed to list contacts", zap.Error(err))
		s.metrics.RecordStorageFailure(false)
		return nil
	}
	return recs
}

func (s *Store) DeleteContact(id string) {
	removed, err := s.deleteByID(contactNS, id)
	if err != nil {
		s.logger.Warn("failed to delete contact",
			zap.String("id", id), zap.Error(err))
		s.metrics.RecordStorageFailure(true)
		return
	}
	if removed {
		s.metrics.RecordDelete()
	}
}
