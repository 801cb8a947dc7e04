package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupTestXDG(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmpDir, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmpDir, "state"))
	return tmpDir
}

func TestGetPathsRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/testxdg/config")
	t.Setenv("XDG_DATA_HOME", "/tmp/testxdg/data")

	paths := GetPaths()

	if paths.ConfigDir != "/tmp/testxdg/config/prio" {
		t.Fatalf("expected /tmp/testxdg/config/prio, got %s", paths.ConfigDir)
	}
	if paths.DBFile != "/tmp/testxdg/data/prio/prio.db" {
		t.Fatalf("expected /tmp/testxdg/data/prio/prio.db, got %s", paths.DBFile)
	}
}

func TestEnsureDirs(t *testing.T) {
	setupTestXDG(t)

	paths := GetPaths()
	if err := paths.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}
	for _, dir := range []string{paths.ConfigDir, paths.DataDir, paths.CacheDir, paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("dir %s not created: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("%s is not a directory", dir)
		}
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	setupTestXDG(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Provider != "http" {
		t.Errorf("expected default provider http, got %q", cfg.AI.Provider)
	}
	if cfg.AI.RequestTimeout() != DefaultAITimeout {
		t.Errorf("expected default timeout %s, got %s", DefaultAITimeout, cfg.AI.RequestTimeout())
	}
	if cfg.Rank.DebounceDelay() != 500*time.Millisecond {
		t.Errorf("expected 500ms debounce, got %s", cfg.Rank.DebounceDelay())
	}
	if cfg.Overrides.Backend != "sqlite" {
		t.Errorf("expected sqlite backend, got %q", cfg.Overrides.Backend)
	}
	if Initialized() {
		t.Error("Initialized should be false before Save")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	setupTestXDG(t)

	cfg := defaultConfig()
	cfg.User.ID = "stu-1"
	cfg.User.ClassCode = "MATH-7A"
	cfg.AI.Endpoint = "https://rank.example.test/v1/rank"
	cfg.Priority.WeightFactor = FloatPtr(4)
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Initialized() {
		t.Fatal("Initialized should be true after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.User.ID != "stu-1" || got.User.ClassCode != "MATH-7A" {
		t.Errorf("user not preserved: %+v", got.User)
	}
	if got.AI.Endpoint != cfg.AI.Endpoint {
		t.Errorf("endpoint = %q, want %q", got.AI.Endpoint, cfg.AI.Endpoint)
	}
	if got.Priority.WeightFactor == nil || *got.Priority.WeightFactor != 4 {
		t.Errorf("weight factor not preserved: %v", got.Priority.WeightFactor)
	}
	if got.Priority.EffortCap != nil {
		t.Errorf("unset weight should stay nil, got %v", *got.Priority.EffortCap)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	setupTestXDG(t)
	paths := GetPaths()
	if err := paths.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(paths.ConfigFile, []byte("[user]\nid = \"t-9\"\nrole = \"teacher\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.User.Role != "teacher" {
		t.Errorf("role = %q, want teacher", cfg.User.Role)
	}
	if cfg.AI.Provider != "http" || cfg.Overrides.Backend != "sqlite" {
		t.Errorf("defaults lost for unset sections: %+v %+v", cfg.AI, cfg.Overrides)
	}
}

func TestDurationsFallBackOnGarbage(t *testing.T) {
	if got := (AIConfig{Timeout: "soon"}).RequestTimeout(); got != DefaultAITimeout {
		t.Errorf("expected fallback, got %s", got)
	}
	if got := (RankConfig{Debounce: "-1s"}).DebounceDelay(); got != DefaultDebounce {
		t.Errorf("expected fallback, got %s", got)
	}
	if got := (RankConfig{Debounce: "2s"}).DebounceDelay(); got != 2*time.Second {
		t.Errorf("expected 2s, got %s", got)
	}
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("PRIO_TEST_TOKEN", "  secret \n")
	if got := (AIConfig{APIKeyEnv: "PRIO_TEST_TOKEN"}).APIKey(); got != "secret" {
		t.Errorf("APIKey() = %q, want secret", got)
	}
	if got := (AIConfig{}).APIKey(); got != "" {
		t.Errorf("APIKey() with no env var = %q, want empty", got)
	}
}

func TestPriorityWeights(t *testing.T) {
	w := (PriorityConfig{}).Weights()
	if w.UrgencyPerHour != 2 || w.EffortCap != 20 {
		t.Errorf("unset config should keep defaults, got %+v", w)
	}
	w = (PriorityConfig{WeightFactor: FloatPtr(5), EffortCap: FloatPtr(0)}).Weights()
	if w.WeightFactor != 5 {
		t.Errorf("WeightFactor = %v, want 5", w.WeightFactor)
	}
	if w.EffortCap != 20 {
		t.Errorf("non-positive value should be ignored, got %v", w.EffortCap)
	}
}
