package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RunStore persists completed simulation results as flat JSON files,
// one per run. 파일명: <strategy_id>_<start>_<end>.json
type RunStore struct {
	dir string
}

func NewRunStore(dir string) (*RunStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("run store dir: %w", err)
	}
	return &RunStore{dir: dir}, nil
}

// Save writes the result atomically and returns its run ID.
func (s *RunStore) Save(result *Result) (string, error) {
	runID := fmt.Sprintf("%s_%s_%s",
		result.StrategyID,
		result.Start.Format("2006-01-02"),
		result.End.Format("2006-01-02"))

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}

	path := filepath.Join(s.dir, runID+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write result: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("rename result: %w", err)
	}
	return runID, nil
}

// Load reads a previously saved run by its ID.
func (s *RunStore) Load(runID string) (*Result, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, runID+".json"))
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", runID, err)
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return &result, nil
}

// List returns every stored run ID, sorted.
func (s *RunStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
