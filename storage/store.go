// Package storage persists scan reports so runs can be compared over time
// and the newest report re-read without rescanning.
package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/btree"
	"go.etcd.io/bbolt"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// Bucket names in bbolt
var (
	bucketReports = []byte("reports")
	bucketMeta    = []byte("meta")
)

var keyLatest = []byte("latest")

// ReportStore keeps one record per scan, keyed by the scan window's end
// timestamp. A btree index over those timestamps serves range queries
// without touching disk.
type ReportStore struct {
	mu sync.RWMutex

	// In-memory time index for range queries
	index *btree.BTreeG[indexEntry]

	// On-disk storage
	db *bbolt.DB

	dir string
}

// indexEntry is one scan in the time index.
type indexEntry struct {
	End time.Time
	Key string
}

// OpenReportStore opens (or creates) the report database under dir and
// rebuilds the time index from disk.
func OpenReportStore(dir string) (*ReportStore, error) {
	dbPath := filepath.Join(dir, "guardian.db")

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketReports, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	store := &ReportStore{
		index: btree.NewG[indexEntry](32, func(a, b indexEntry) bool {
			return a.End.Before(b.End)
		}),
		db:  db,
		dir: dir,
	}

	if err := store.rebuildIndex(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the store.
func (s *ReportStore) Close() error {
	return s.db.Close()
}

// Save persists one report and marks it as the latest. Re-saving a report
// for the same scan window overwrites the earlier record, so retried scans
// do not accumulate duplicates.
func (s *ReportStore) Save(report *types.WasteReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := reportKey(report.ScanWindow.End)
	value, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketReports).Put([]byte(key), value); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keyLatest, []byte(key))
	})
	if err != nil {
		return err
	}

	s.index.ReplaceOrInsert(indexEntry{End: report.ScanWindow.End.UTC(), Key: key})
	return nil
}

// Latest returns the most recently saved report.
func (s *ReportStore) Latest() (*types.WasteReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var key []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		key = tx.Bucket(bucketMeta).Get(keyLatest)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, fmt.Errorf("no reports stored")
	}

	return s.get(string(key))
}

// Get returns the report for the scan window ending at end.
func (s *ReportStore) Get(end time.Time) (*types.WasteReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(reportKey(end))
}

// Since returns every report whose scan window ended at or after cutoff,
// oldest first.
func (s *ReportStore) Since(cutoff time.Time) ([]*types.WasteReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	s.index.AscendGreaterOrEqual(indexEntry{End: cutoff.UTC()}, func(e indexEntry) bool {
		keys = append(keys, e.Key)
		return true
	})

	reports := make([]*types.WasteReport, 0, len(keys))
	for _, key := range keys {
		report, err := s.get(key)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Count returns the number of stored reports.
func (s *ReportStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Len()
}

// Prune deletes reports whose scan window ended before cutoff. The latest
// report survives even when it falls before the cutoff.
func (s *ReportStore) Prune(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest []byte
	var toDelete []string

	err := s.db.Update(func(tx *bbolt.Tx) error {
		latest = tx.Bucket(bucketMeta).Get(keyLatest)

		bucket := tx.Bucket(bucketReports)
		s.index.Ascend(func(e indexEntry) bool {
			if !e.End.Before(cutoff.UTC()) {
				return false
			}
			if string(latest) == e.Key {
				return true
			}
			toDelete = append(toDelete, e.Key)
			return true
		})

		for _, key := range toDelete {
			if err := bucket.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, key := range toDelete {
		end, _ := time.Parse(time.RFC3339, key)
		s.index.Delete(indexEntry{End: end})
	}
	return len(toDelete), nil
}

func (s *ReportStore) get(key string) (*types.WasteReport, error) {
	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketReports).Get([]byte(key)); v != nil {
			value = make([]byte, len(v))
			copy(value, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, fmt.Errorf("no report for scan %s", key)
	}

	var report types.WasteReport
	if err := json.Unmarshal(value, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", key, err)
	}
	return &report, nil
}

func (s *ReportStore) rebuildIndex() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketReports).ForEach(func(k, _ []byte) error {
			end, err := time.Parse(time.RFC3339, string(k))
			if err != nil {
				return fmt.Errorf("bad report key %q: %w", k, err)
			}
			s.index.ReplaceOrInsert(indexEntry{End: end, Key: string(k)})
			return nil
		})
	})
}

// reportKey renders the scan window end in UTC so keys sort
// chronologically and the same window always maps to the same record.
func reportKey(end time.Time) string {
	return end.UTC().Format(time.RFC3339)
}
