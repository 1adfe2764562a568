package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/ShapePacker/internal/engine"
)

func TestBuiltInPresetsAreValid(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range BuiltInPresets() {
		if !p.IsBuiltIn {
			t.Errorf("preset %q should be built-in", p.Name)
		}
		if seen[p.Name] {
			t.Errorf("duplicate preset name %q", p.Name)
		}
		seen[p.Name] = true
		if err := p.Config.Validate(); err != nil {
			t.Errorf("preset %q invalid: %v", p.Name, err)
		}
	}
	if !seen["default"] {
		t.Error("expected a default preset")
	}
}

func TestSaveAndLoadCustomPresets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "presets.json")

	cfg := engine.DefaultConfig()
	cfg.Mu = 42
	presets := []Preset{{Name: "mine", Description: "Custom", Config: cfg}}

	if err := SaveCustomPresets(path, presets); err != nil {
		t.Fatalf("SaveCustomPresets: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("presets file was not created")
	}

	loaded, err := LoadCustomPresets(path)
	if err != nil {
		t.Fatalf("LoadCustomPresets: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 preset, got %d", len(loaded))
	}
	if loaded[0].Name != "mine" || loaded[0].Config.Mu != 42 {
		t.Errorf("unexpected preset: %+v", loaded[0])
	}
	if loaded[0].IsBuiltIn {
		t.Error("loaded preset should not be built-in")
	}
}

func TestLoadCustomPresetsMissingFile(t *testing.T) {
	presets, err := LoadCustomPresets(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(presets) != 0 {
		t.Errorf("expected no presets, got %d", len(presets))
	}
}

func TestSaveCustomPresetsRejectsInvalidConfig(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Lambda = 0
	err := SaveCustomPresets(filepath.Join(t.TempDir(), "p.json"), []Preset{{Name: "bad", Config: cfg}})
	if !errors.Is(err, engine.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadCustomPresetsRejectsUnnamed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	if err := os.WriteFile(path, []byte(`[{"config":{"mu":1}}]`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCustomPresets(path); err == nil {
		t.Fatal("expected error for unnamed preset")
	}
}

func TestFindPresetCustomOverridesBuiltIn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.json")
	cfg := engine.DefaultConfig()
	cfg.Mu = 7
	if err := SaveCustomPresets(path, []Preset{{Name: "fast", Config: cfg}}); err != nil {
		t.Fatalf("SaveCustomPresets: %v", err)
	}

	p, err := FindPreset(path, "fast")
	if err != nil {
		t.Fatalf("FindPreset: %v", err)
	}
	if p.Config.Mu != 7 || p.IsBuiltIn {
		t.Errorf("expected custom fast preset, got %+v", p)
	}

	p, err = FindPreset(path, "thorough")
	if err != nil {
		t.Fatalf("FindPreset: %v", err)
	}
	if !p.IsBuiltIn {
		t.Error("expected built-in thorough preset")
	}

	if _, err := FindPreset(path, "nope"); !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestAllPresetsSorted(t *testing.T) {
	all, err := AllPresets(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("AllPresets: %v", err)
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Name >= all[i].Name {
			t.Fatalf("presets not sorted: %q before %q", all[i-1].Name, all[i].Name)
		}
	}
}

func TestLoadCustomPresetsPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	if err := os.WriteFile(path, []byte(`[{"name":"small","config":{"mu":5}}]`), 0644); err != nil {
		t.Fatal(err)
	}
	presets, err := LoadCustomPresets(path)
	if err != nil {
		t.Fatalf("LoadCustomPresets: %v", err)
	}
	defaults := engine.DefaultConfig()
	if presets[0].Config.Mu != 5 || presets[0].Config.Lambda != defaults.Lambda {
		t.Errorf("expected mu 5 over defaults, got %+v", presets[0].Config)
	}
}
