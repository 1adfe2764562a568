package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/piwi3910/ShapePacker/internal/engine"
)

// ErrUnknownPreset is returned when no preset has the requested name.
var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a named set of search settings.
type Preset struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	IsBuiltIn   bool          `json:"-"`
	Config      engine.Config `json:"config"`
}

// BuiltInPresets returns the presets that ship with the packer.
func BuiltInPresets() []Preset {
	base := engine.DefaultConfig()

	fast := base
	fast.Mu = 30
	fast.Lambda = 15
	fast.MaxEvaluations = 2000
	fast.StagnationGenerations = 60

	thorough := base
	thorough.Mu = 200
	thorough.Lambda = 100
	thorough.MaxEvaluations = 50000
	thorough.StagnationGenerations = 500
	thorough.LocalSearchRate = 0.2

	diverse := base
	diverse.ParentSelection = engine.SelectionProportional
	diverse.SurvivalSelection = engine.SelectionTournament
	diverse.MutationRate = 0.15

	return []Preset{
		{Name: "default", Description: "Balanced settings", IsBuiltIn: true, Config: base},
		{Name: "fast", Description: "Small population, short budget", IsBuiltIn: true, Config: fast},
		{Name: "thorough", Description: "Large population, long budget, more local search", IsBuiltIn: true, Config: thorough},
		{Name: "diverse", Description: "Weaker selection pressure, more mutation", IsBuiltIn: true, Config: diverse},
	}
}

// DefaultPresetsPath returns the file holding custom presets.
func DefaultPresetsPath() string {
	return filepath.Join(DefaultConfigDir(), "presets.json")
}

// SaveCustomPresets writes presets to a JSON file.
func SaveCustomPresets(path string, presets []Preset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	for _, p := range presets {
		if err := p.Config.Validate(); err != nil {
			return fmt.Errorf("preset %q: %w", p.Name, err)
		}
	}

	data, err := json.MarshalIndent(presets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCustomPresets reads presets from a JSON file. A missing file yields an
// empty slice.
func LoadCustomPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Preset{}, nil
		}
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	// Each preset is decoded over the defaults so partial configs work.
	presets := make([]Preset, 0, len(raw))
	for i, r := range raw {
		p := Preset{Config: engine.DefaultConfig()}
		if err := json.Unmarshal(r, &p); err != nil {
			return nil, fmt.Errorf("preset %d: %w", i, err)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("preset %d has no name", i)
		}
		if err := p.Config.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		presets = append(presets, p)
	}
	return presets, nil
}

// AllPresets merges the built-in presets with the custom ones in path. A
// custom preset replaces a built-in one of the same name. The result is
// sorted by name.
func AllPresets(path string) ([]Preset, error) {
	custom, err := LoadCustomPresets(path)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]Preset)
	for _, p := range BuiltInPresets() {
		byName[p.Name] = p
	}
	for _, p := range custom {
		byName[p.Name] = p
	}

	all := make([]Preset, 0, len(byName))
	for _, p := range byName {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

// FindPreset looks name up among the built-in and custom presets.
func FindPreset(path, name string) (Preset, error) {
	all, err := AllPresets(path)
	if err != nil {
		return Preset{}, err
	}
	for _, p := range all {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}
