package store

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	apperrors "github.com/carescan/carescan/internal/errors"
)

// namespace is one named slot holding a single JSON array of records,
// newest-first. Every mutation rewrites the whole array. retain caps the
// number of records kept (0 means unlimited); eviction is oldest-first.
type namespace struct {
	key    string
	retain int
}

// Namespace keys match the original browser storage layout so exported
// data stays interchangeable.
var (
	predictionNS = namespace{key: "carescan_predictions", retain: 50}
	medicationNS = namespace{key: "carescan_medications"}
	contactNS    = namespace{key: "carescan_emergency_contacts"}
)

// readRaw loads the namespace array without interpreting the records. A
// missing namespace reads as empty; malformed data is an error for the
// caller to handle.
func (s *Store) readRaw(ns namespace) ([]json.RawMessage, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ns.key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStorageRead.Code, "failed to read "+ns.key)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStorageCorrupted.Code, "malformed data in "+ns.key)
	}
	return items, nil
}

func (s *Store) writeRaw(ns namespace, items []json.RawMessage) error {
	if items == nil {
		items = []json.RawMessage{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", ns.key, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(ns.key), data)
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrStorageWrite.Code, "failed to write "+ns.key)
	}
	return nil
}

// insert prepends rec and rewrites the namespace, truncating to the
// retention cap. A corrupted namespace is treated as empty so the write
// heals it. Returns the number of evicted records.
func (s *Store) insert(ns namespace, rec any) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal record for %s: %w", ns.key, err)
	}

	items, err := s.readRaw(ns)
	if err != nil {
		if apperrors.GetCode(err) != apperrors.ErrStorageCorrupted.Code {
			return 0, err
		}
		s.logger.Warn("discarding corrupted namespace on write",
			zap.String("namespace", ns.key), zap.Error(err))
		items = nil
	}

	items = append([]json.RawMessage{data}, items...)

	evicted := 0
	if ns.retain > 0 && len(items) > ns.retain {
		evicted = len(items) - ns.retain
		items = items[:ns.retain]
	}

	if err := s.writeRaw(ns, items); err != nil {
		return 0, err
	}
	return evicted, nil
}

// list reads and decodes the whole namespace into out (a pointer to a
// slice of the record type).
func (s *Store) list(ns namespace, out any) error {
	items, err := s.readRaw(ns)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// deleteByID rewrites the namespace without the record whose id strictly
// equals the argument. Reports whether anything was removed.
func (s *Store) deleteByID(ns namespace, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readRaw(ns)
	if err != nil {
		return false, err
	}

	filtered := make([]json.RawMessage, 0, len(items))
	removed := false
	for _, item := range items {
		var probe struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(item, &probe); err == nil && probe.ID == id {
			removed = true
			continue
		}
		filtered = append(filtered, item)
	}

	if !removed {
		return false, nil
	}
	if err := s.writeRaw(ns, filtered); err != nil {
		return false, err
	}
	return true, nil
}
