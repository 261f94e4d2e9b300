package internal

import (
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if !cfg.Validation.Strict {
		t.Error("strict validation should default to on")
	}
	if cfg.Import.Strict {
		t.Error("import validation should default to permissive")
	}
}

func TestStateConfig_MissingDir(t *testing.T) {
	cfg := StateConfig{Dir: ""}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty state dir should fail validation")
	}
}

func TestHistoryConfig_MissingDir(t *testing.T) {
	cfg := HistoryConfig{Dir: ""}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty history dir should fail validation")
	}
}

func TestExportConfig_MissingPrefix(t *testing.T) {
	cfg := ExportConfig{SheetPrefix: ""}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty sheet prefix should fail validation")
	}
}

func TestFullConfig_SectionValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.State.Dir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch state error")
	}
}
