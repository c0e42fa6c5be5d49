package classifier

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveModel writes a trained model as indented JSON.
func SaveModel(m *Model, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// LoadModel reads a model saved by SaveModel and checks that its
// weight matrix is consistent before returning it.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model file %s: %w", path, err)
	}
	if err := m.check(); err != nil {
		return nil, fmt.Errorf("invalid model file %s: %w", path, err)
	}
	return &m, nil
}

// check verifies the invariants Predict relies on: one weight row per
// label, equal row lengths, and scaler vectors matching the feature
// dimension when present.
func (m *Model) check() error {
	if len(m.Labels) < 2 {
		return fmt.Errorf("need at least two labels, got %d", len(m.Labels))
	}
	if len(m.Weights) != len(m.Labels) {
		return fmt.Errorf("have %d weight rows for %d labels", len(m.Weights), len(m.Labels))
	}
	width := len(m.Weights[0])
	if width < 2 {
		return fmt.Errorf("weight rows need at least one feature plus bias, got width %d", width)
	}
	for i, row := range m.Weights {
		if len(row) != width {
			return fmt.Errorf("weight row %d has width %d, expected %d", i, len(row), width)
		}
	}
	if len(m.Mean) > 0 {
		if len(m.Mean) != width-1 || len(m.Std) != width-1 {
			return fmt.Errorf("scaler length %d/%d does not match feature dimension %d",
				len(m.Mean), len(m.Std), width-1)
		}
	}
	return nil
}
