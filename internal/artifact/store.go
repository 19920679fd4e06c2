package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SimulationRecord is the structured numeric snapshot produced by a
// simulation run. It is fully replaced, never patched: regenerating it is
// cheap relative to the design document's prose.
type SimulationRecord struct {
	RTP              float64            `json:"rtp"`
	HitFrequency     float64            `json:"hit_frequency"`
	VolatilityIndex  float64            `json:"volatility_index"`
	MaxWinMultiplier float64            `json:"max_win_multiplier"`
	TotalSpins       int64              `json:"total_spins"`
	RTPBreakdown     map[string]float64 `json:"rtp_breakdown"`
}

// BreakdownSum totals the named RTP contribution components.
func (r SimulationRecord) BreakdownSum() float64 {
	sum := 0.0
	for _, value := range r.RTPBreakdown {
		sum += value
	}
	return sum
}

// Store manages artifact IO rooted at one job directory. Every write is
// whole-file via temp+rename: an interrupted process never leaves a
// truncated artifact behind.
type Store struct {
	job *Job
}

// NewStore builds a store for a job.
func NewStore(job *Job) *Store {
	return &Store{job: job}
}

// Job returns the store's job.
func (s *Store) Job() *Job { return s.job }

// Check inspects the artifact on disk and returns its readiness state.
// Data-quality problems inside an artifact are the validators' business;
// Check only answers "is there a readable file of the right shape here".
func (s *Store) Check(ref Ref) CheckResult {
	path := ref.Path(s.job)
	if path == "" {
		return CheckResult{Ref: ref, State: StateError, Err: fmt.Errorf("artifact: %s path could not be resolved", ref.ID)}
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CheckResult{Ref: ref, Path: path, State: StateMissing}
		}
		return CheckResult{Ref: ref, Path: path, State: StateError, Err: err}
	}
	if info.IsDir() {
		return CheckResult{Ref: ref, Path: path, State: StateInvalid, Err: fmt.Errorf("artifact: %s is a directory", ref.ID)}
	}
	result := CheckResult{Ref: ref, Path: path, State: StateReady, Size: info.Size()}
	if ref.Kind == KindJSON {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return CheckResult{Ref: ref, Path: path, State: StateError, Err: readErr}
		}
		if !json.Valid(data) {
			return CheckResult{Ref: ref, Path: path, State: StateInvalid, Err: fmt.Errorf("artifact: %s is not valid JSON", ref.ID)}
		}
	}
	return result
}

// CheckAll checks every given ref and returns the results in order.
func (s *Store) CheckAll(refs []Ref) []CheckResult {
	results := make([]CheckResult, 0, len(refs))
	for _, ref := range refs {
		results = append(results, s.Check(ref))
	}
	return results
}

// Read returns the raw artifact bytes.
func (s *Store) Read(ref Ref) ([]byte, error) {
	data, err := os.ReadFile(ref.Path(s.job))
	if err != nil {
		return nil, fmt.Errorf("artifact: read %s: %w", ref.ID, err)
	}
	return data, nil
}

// ReadText returns the artifact as a string. Used for the design document.
func (s *Store) ReadText(ref Ref) (string, error) {
	data, err := s.Read(ref)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Write persists the artifact atomically, creating parent directories.
func (s *Store) Write(ref Ref, data []byte) error {
	path := ref.Path(s.job)
	if path == "" {
		return fmt.Errorf("artifact: %s path could not be resolved", ref.ID)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("artifact: prepare dir for %s: %w", ref.ID, err)
	}
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("artifact: write %s: %w", ref.ID, err)
	}
	return nil
}

// WriteJSON marshals v with indentation and writes it atomically.
func (s *Store) WriteJSON(ref Ref, v any) error {
	if ref.Kind != KindJSON {
		return fmt.Errorf("artifact: %s is not a JSON artifact", ref.ID)
	}
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: encode %s: %w", ref.ID, err)
	}
	return s.Write(ref, append(encoded, '\n'))
}

// ReadJSON decodes the artifact into v.
func (s *Store) ReadJSON(ref Ref, v any) error {
	data, err := s.Read(ref)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("artifact: decode %s: %w", ref.ID, err)
	}
	return nil
}

// ReadSimulation loads the simulation record.
func (s *Store) ReadSimulation() (SimulationRecord, error) {
	var record SimulationRecord
	err := s.ReadJSON(SimulationResults, &record)
	return record, err
}

// WriteSimulation replaces the simulation record wholesale.
func (s *Store) WriteSimulation(record SimulationRecord) error {
	return s.WriteJSON(SimulationResults, record)
}

// AppendText appends to a document artifact, creating it if absent. Used
// for the revision log, which is append-only by contract.
func (s *Store) AppendText(ref Ref, text string) error {
	path := ref.Path(s.job)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("artifact: prepare dir for %s: %w", ref.ID, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("artifact: append %s: %w", ref.ID, err)
	}
	defer file.Close()
	if _, err := file.WriteString(text); err != nil {
		return fmt.Errorf("artifact: append %s: %w", ref.ID, err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
