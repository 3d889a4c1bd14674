package ranking

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/VolumeQuant/quantcore/internal/contracts"
)

const dateLayout = "2006-01-02"

// SnapshotStore is the append-only, date-keyed ranking history.
// ⭐ SSOT: 스냅샷 이력 접근은 이 인터페이스를 통해서만
//
// Snapshots are written once per date and never mutated except through
// an explicit migration (Migrator.Rebuild).
type SnapshotStore interface {
	// Get loads the snapshot for a date. Returns
	// contracts.ErrMissingPriorSnapshot when none exists.
	Get(date time.Time) (*contracts.RankingSnapshot, error)

	// Put writes the snapshot for a date.
	Put(date time.Time, snapshot *contracts.RankingSnapshot) error

	// Dates lists all stored dates ascending.
	Dates() ([]time.Time, error)
}

// FileStore persists one JSON snapshot file per calendar date.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed snapshot store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Get loads the snapshot for a date.
func (s *FileStore) Get(date time.Time) (*contracts.RankingSnapshot, error) {
	data, err := os.ReadFile(s.path(date))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", date.Format(dateLayout), contracts.ErrMissingPriorSnapshot)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot contracts.RankingSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", date.Format(dateLayout), err)
	}
	return &snapshot, nil
}

// Put writes the snapshot for a date atomically (tmp file + rename).
func (s *FileStore) Put(date time.Time, snapshot *contracts.RankingSnapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := s.path(date) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path(date)); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Dates lists all stored snapshot dates ascending.
func (s *FileStore) Dates() ([]time.Time, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}

	dates := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		d, err := time.Parse(dateLayout, strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue // 스냅샷 파일이 아닌 것은 무시
		}
		dates = append(dates, d)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// Prior returns up to the two most recent snapshots strictly before
// date, newest first. Missing history yields nils (cold start).
func Prior(store SnapshotStore, date time.Time) (prev, prev2 *contracts.RankingSnapshot, err error) {
	dates, err := store.Dates()
	if err != nil {
		return nil, nil, err
	}

	found := make([]*contracts.RankingSnapshot, 0, 2)
	for i := len(dates) - 1; i >= 0 && len(found) < 2; i-- {
		if !dates[i].Before(date) {
			continue
		}
		s, err := store.Get(dates[i])
		if err != nil {
			return nil, nil, err
		}
		found = append(found, s)
	}

	if len(found) > 0 {
		prev = found[0]
	}
	if len(found) > 1 {
		prev2 = found[1]
	}
	return prev, prev2, nil
}

func (s *FileStore) path(date time.Time) string {
	return filepath.Join(s.dir, date.Format(dateLayout)+".json")
}
