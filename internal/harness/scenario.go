package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/waggle/internal/beeminder"
	"github.com/roach88/waggle/internal/tsv"
)

// Modes a scenario can run in. Bulk reconciles an edited file against the
// fetched set; tombstone drives the interactive table operations.
const (
	ModeBulk      = "bulk"
	ModeTombstone = "tombstone"
)

// Scenario is one reconciliation test case.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Goal        string `yaml:"goal"`
	Mode        string `yaml:"mode"`

	// Fetched is the remote state before editing.
	Fetched []DatapointSpec `yaml:"fetched"`

	// File is the literal edited file content, bulk mode only.
	File string `yaml:"file,omitempty"`

	// Edits are interactive table operations, tombstone mode only.
	Edits []Edit `yaml:"edits,omitempty"`

	// FailOn injects a remote failure before the apply step.
	FailOn *FailOn `yaml:"fail_on,omitempty"`

	Expect Expect `yaml:"expect"`
}

// DatapointSpec is a fetched datapoint. Timestamps use the edit-file layout
// and are read as UTC.
type DatapointSpec struct {
	ID        string  `yaml:"id"`
	Timestamp string  `yaml:"timestamp"`
	Value     float64 `yaml:"value"`
	Comment   string  `yaml:"comment,omitempty"`
}

// Edit is one table operation. Exactly one field is set per step.
type Edit struct {
	Set    *SetEdit `yaml:"set,omitempty"`
	Delete *int     `yaml:"delete,omitempty"`
	Insert bool     `yaml:"insert,omitempty"`
}

// SetEdit commits input into a cell, as typed.
type SetEdit struct {
	Row   int    `yaml:"row"`
	Col   string `yaml:"col"`
	Input string `yaml:"input"`
}

// FailOn makes the nth remote call of the given op fail.
type FailOn struct {
	Op      string `yaml:"op"`
	Nth     int    `yaml:"nth"`
	Message string `yaml:"message"`
}

// Expect holds scenario assertions. Zero-valued fields assert emptiness:
// no ops means no remote calls, no warnings means none raised.
type Expect struct {
	Summary  string          `yaml:"summary"`
	Ops      []string        `yaml:"ops,omitempty"`
	Warnings []string        `yaml:"warnings,omitempty"`
	Error    string          `yaml:"error,omitempty"`
	Progress *ProgressExpect `yaml:"progress,omitempty"`
}

// ProgressExpect pins the acknowledged mutation counts after apply.
type ProgressExpect struct {
	Creates int `yaml:"creates"`
	Updates int `yaml:"updates"`
	Deletes int `yaml:"deletes"`
}

// LoadScenario reads and strictly parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Goal == "" {
		return fmt.Errorf("goal is required")
	}
	switch s.Mode {
	case ModeBulk:
		if len(s.Edits) > 0 {
			return fmt.Errorf("bulk mode takes a file, not edits")
		}
	case ModeTombstone:
		if s.File != "" {
			return fmt.Errorf("tombstone mode takes edits, not a file")
		}
	default:
		return fmt.Errorf("mode must be %q or %q", ModeBulk, ModeTombstone)
	}
	return nil
}

// FetchedDatapoints materializes the fetched block.
func (s *Scenario) FetchedDatapoints() ([]beeminder.Datapoint, error) {
	points := make([]beeminder.Datapoint, len(s.Fetched))
	for i, spec := range s.Fetched {
		ts, err := time.ParseInLocation(tsv.TimestampLayout, spec.Timestamp, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("fetched[%d] timestamp %q: %w", i, spec.Timestamp, err)
		}
		points[i] = beeminder.Datapoint{
			ID:        spec.ID,
			Timestamp: ts,
			Value:     spec.Value,
			Comment:   spec.Comment,
		}
	}
	return points, nil
}
