// Package runlog persists one directory per task run for resumability and
// debugging: a configuration snapshot, a metrics snapshot, and an artifact
// reference per trial, keyed by run id and trial index.
package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"

	"autolytics/pkg/core"
	"autolytics/pkg/scheduler"
)

// NewRunID returns a lexically sortable unique id for a task run.
func NewRunID() string {
	return ulid.Make().String()
}

// Store writes run state beneath a root directory.
type Store struct {
	Dir string
}

// ConfigSnapshot is the immutable part of a trial, written once at dispatch.
type ConfigSnapshot struct {
	RunID  string         `json:"run_id"`
	Index  int            `json:"trial_index"`
	Seed   int64          `json:"seed"`
	Config map[string]any `json:"config"`
}

// MetricsSnapshot is the trial's terminal state and scores.
type MetricsSnapshot struct {
	State    string             `json:"state"`
	Attempts int                `json:"attempts"`
	Reason   string             `json:"reason,omitempty"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

// ArtifactRef points at a trial's artifact without embedding it.
type ArtifactRef struct {
	Present bool   `json:"present"`
	Kind    string `json:"kind,omitempty"`
}

func (s Store) trialDir(runID string, index int) string {
	return filepath.Join(s.Dir, runID, fmt.Sprintf("trial-%d", index))
}

// WriteTrial persists a terminal trial snapshot.
func (s Store) WriteTrial(trial scheduler.Trial) error {
	dir := s.trialDir(trial.RunID, trial.Index)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	config := ConfigSnapshot{
		RunID:  trial.RunID,
		Index:  trial.Index,
		Seed:   trial.Seed,
		Config: trial.Config,
	}
	if err := writeJSON(filepath.Join(dir, "config.json"), config); err != nil {
		return err
	}

	metrics := MetricsSnapshot{
		State:    string(trial.State),
		Attempts: trial.Attempts,
		Reason:   trial.Reason,
		Metrics:  trial.Metrics,
	}
	if err := writeJSON(filepath.Join(dir, "metrics.json"), metrics); err != nil {
		return err
	}

	ref := ArtifactRef{Present: trial.Artifact != nil}
	if trial.Artifact != nil {
		ref.Kind = fmt.Sprintf("%T", trial.Artifact)
	}
	return writeJSON(filepath.Join(dir, "artifact.json"), ref)
}

// WriteResult persists the final structured result at the run root.
func (s Store) WriteResult(result *core.Result) error {
	dir := filepath.Join(s.Dir, result.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, "result.json"), result)
}

// ReadTrialConfig loads a trial's configuration snapshot.
func (s Store) ReadTrialConfig(runID string, index int) (ConfigSnapshot, error) {
	var snap ConfigSnapshot
	err := readJSON(filepath.Join(s.trialDir(runID, index), "config.json"), &snap)
	return snap, err
}

// ReadTrialMetrics loads a trial's metrics snapshot.
func (s Store) ReadTrialMetrics(runID string, index int) (MetricsSnapshot, error) {
	var snap MetricsSnapshot
	err := readJSON(filepath.Join(s.trialDir(runID, index), "metrics.json"), &snap)
	return snap, err
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func readJSON(path string, out any) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return json.NewDecoder(file).Decode(out)
}
