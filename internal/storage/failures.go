package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const failuresBucket = "failures"

// FailureRecord describes a run that stopped on an error.
type FailureRecord struct {
	Model     string    `json:"model"`
	TestFile  string    `json:"test_file"`
	Line      int       `json:"line,omitempty"` // 1-based test-file line of an input format error
	Records   int       `json:"records"`        // records written before the failure
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// StoreFailure appends a failure record.
func (s *Store) StoreFailure(record FailureRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(failuresBucket))
		if err != nil {
			return fmt.Errorf("create failures bucket: %w", err)
		}

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal failure record: %w", err)
		}

		return b.Put(recordKey(record.Model, record.Timestamp), data)
	})
}

// GetFailures returns the failures of model within [start, end], oldest first.
func (s *Store) GetFailures(model string, start, end time.Time) ([]FailureRecord, error) {
	var failures []FailureRecord
	err := s.scanRange(failuresBucket, model, start, end, func(v []byte) {
		var f FailureRecord
		if err := json.Unmarshal(v, &f); err != nil {
			return
		}
		failures = append(failures, f)
	})
	return failures, err
}
