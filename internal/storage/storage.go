// Package storage keeps a history of prediction runs. It uses BoltDB as the
// storage engine; each completed run appends one summary record and each
// failed run one failure record, keyed by model name and start time so runs
// of one model can be listed by time range.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	dbFile     = "svm-predict.db"
	runsBucket = "runs" // Bucket name for run summaries
)

// RunRecord summarizes one completed prediction run. Statistics that are
// undefined for the run are nil.
type RunRecord struct {
	Model      string        `json:"model"`
	TestFile   string        `json:"test_file"`
	OutputFile string        `json:"output_file"`
	SVMType    string        `json:"svm_type"`
	KernelType string        `json:"kernel_type"`
	Classes    int           `json:"classes"`
	OpenSet    bool          `json:"open_set"`
	Threshold  float64       `json:"threshold,omitempty"`
	Records    int           `json:"records"`
	Correct    int           `json:"correct"`
	Unknown    int           `json:"unknown"`
	Started    time.Time     `json:"started"`
	Duration   time.Duration `json:"duration"`

	Accuracy           *float64 `json:"accuracy,omitempty"`
	MeanSquaredError   *float64 `json:"mse,omitempty"`
	SquaredCorrelation *float64 `json:"scc,omitempty"`
}

// Store provides persistent storage of run history using BoltDB.
type Store struct {
	db *bbolt.DB // BoltDB database instance
}

// New opens (or creates) the run history database in dataPath.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, dbFile)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(runsBucket)); err != nil {
			return fmt.Errorf("create runs bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(failuresBucket)); err != nil {
			return fmt.Errorf("create failures bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StoreRun appends a run summary. The key is "<model>_<started unix nanos>"
// with the model reduced to its base file name.
func (s *Store) StoreRun(run RunRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))

		data, err := json.Marshal(run)
		if err != nil {
			return fmt.Errorf("marshal run: %w", err)
		}

		return b.Put(recordKey(run.Model, run.Started), data)
	})
}

// GetRuns returns the runs of model started within [start, end], oldest first.
func (s *Store) GetRuns(model string, start, end time.Time) ([]RunRecord, error) {
	var runs []RunRecord
	err := s.scanRange(runsBucket, model, start, end, func(v []byte) {
		var run RunRecord
		if err := json.Unmarshal(v, &run); err != nil {
			return // Skip malformed records
		}
		runs = append(runs, run)
	})
	return runs, err
}

// scanRange calls fn for every value of bucketName whose key lies between
// the keys of model at start and at end, inclusive.
func (s *Store) scanRange(bucketName, model string, start, end time.Time, fn func([]byte)) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		c := b.Cursor()

		prefix := []byte(filepath.Base(model) + "_")
		startKey := recordKey(model, start)
		endKey := recordKey(model, end)

		for k, v := c.Seek(startKey); k != nil && compareKeys(k, endKey) <= 0; k, v = c.Next() {
			if !hasPrefix(k, prefix) {
				continue
			}
			fn(v)
		}
		return nil
	})
}

func recordKey(model string, ts time.Time) []byte {
	return []byte(fmt.Sprintf("%s_%019d", filepath.Base(model), ts.UnixNano()))
}

func hasPrefix(data, prefix []byte) bool {
	return bytes.HasPrefix(data, prefix)
}

func compareKeys(a, b []byte) int {
	return bytes.Compare(a, b)
}
