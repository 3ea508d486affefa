package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Graph: GraphConfig{MaxDebateRounds: 1, MaxRiskDiscussRounds: 1, MaxRecurLimit: 100},
		LLM:   LLMConfig{Provider: "deepseek"},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateRejectsOutOfRangeDebateRounds(t *testing.T) {
	cfg := validConfig()
	cfg.Graph.MaxDebateRounds = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for MaxDebateRounds below 1")
	}
	cfg.Graph.MaxDebateRounds = 11
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for MaxDebateRounds above 10")
	}
}

func TestValidateRejectsOutOfRangeRiskRounds(t *testing.T) {
	cfg := validConfig()
	cfg.Graph.MaxRiskDiscussRounds = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for MaxRiskDiscussRounds below 1")
	}
}

func TestValidateRejectsNonPositiveRecurLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Graph.MaxRecurLimit = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for non-positive MaxRecurLimit")
	}
}

func TestValidateAcceptsKnownProviders(t *testing.T) {
	for _, provider := range []string{"openai", "anthropic", "google", "dashscope", "ollama", "openrouter", "deepseek"} {
		cfg := validConfig()
		cfg.LLM.Provider = provider
		if err := cfg.Validate(); err != nil {
			t.Errorf("provider %q should be valid, got error: %v", provider, err)
		}
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Provider = "unknown-provider"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestMemoryEnabled(t *testing.T) {
	cfg := &Config{}
	if cfg.MemoryEnabled() {
		t.Error("expected MemoryEnabled() false with empty DSN")
	}
	cfg.Memory.DSN = "postgres://localhost/db"
	if !cfg.MemoryEnabled() {
		t.Error("expected MemoryEnabled() true with non-empty DSN")
	}
}

func TestEnsureDirectoriesCreatesResultsAndCacheDirs(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{
		Runtime: RuntimeConfig{
			ResultsDir:   filepath.Join(root, "results"),
			DataCacheDir: filepath.Join(root, "data", "cache"),
		},
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, dir := range []string{cfg.Runtime.ResultsDir, cfg.Runtime.DataCacheDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %q to exist", dir)
		}
	}
}
