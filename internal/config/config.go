package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/studydesk/prio/internal/priority"
)

const (
	// DefaultAITimeout bounds a single ranking call. There is no retry.
	DefaultAITimeout = 30 * time.Second
	// DefaultDebounce is the delay between the last rank request and the call.
	DefaultDebounce = 500 * time.Millisecond
	// DefaultModel is used by the claude ranking provider.
	DefaultModel = "claude-sonnet-4-5-20250929"
)

// Config holds the top-level prio configuration.
type Config struct {
	User      UserConfig      `toml:"user"`
	AI        AIConfig        `toml:"ai"`
	Rank      RankConfig      `toml:"rank"`
	Priority  PriorityConfig  `toml:"priority"`
	Overrides OverridesConfig `toml:"overrides"`
	Log       LogConfig       `toml:"log"`
}

// UserConfig identifies the viewer whose tasks are ranked.
type UserConfig struct {
	ID        string   `toml:"id"`
	Name      string   `toml:"name"`
	Role      string   `toml:"role"` // student or teacher
	ClassCode string   `toml:"class_code"`
	GradeRoom string   `toml:"grade_room"`
	Classes   []string `toml:"classes,omitempty"` // managed classes (teachers)
}

type AIConfig struct {
	Provider  string `toml:"provider"` // http or claude
	Endpoint  string `toml:"endpoint"`
	Model     string `toml:"model"`
	Timeout   string `toml:"timeout"`
	APIKeyEnv string `toml:"api_key_env"`
}

// RequestTimeout parses Timeout, falling back to DefaultAITimeout.
func (a AIConfig) RequestTimeout() time.Duration {
	return parseDuration(a.Timeout, DefaultAITimeout)
}

// APIKey reads the credential from the configured environment variable.
func (a AIConfig) APIKey() string {
	if a.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(a.APIKeyEnv))
}

type RankConfig struct {
	Debounce string `toml:"debounce"`
}

// DebounceDelay parses Debounce, falling back to DefaultDebounce.
func (r RankConfig) DebounceDelay() time.Duration {
	return parseDuration(r.Debounce, DefaultDebounce)
}

// PriorityConfig holds optional overrides for the local scoring weights.
// A nil field means "use the built-in default".
type PriorityConfig struct {
	UrgencyPerHour *float64 `toml:"urgency_per_hour,omitempty"`
	WeightFactor   *float64 `toml:"weight_factor,omitempty"`
	WeightCap      *float64 `toml:"weight_cap,omitempty"`
	EffortDivisor  *float64 `toml:"effort_divisor,omitempty"`
	EffortCap      *float64 `toml:"effort_cap,omitempty"`
}

// Weights returns the default scoring weights with configured values applied.
func (p PriorityConfig) Weights() priority.ScoreWeights {
	w := priority.DefaultScoreWeights()
	set := func(dst *float64, v *float64) {
		if v != nil && *v > 0 {
			*dst = *v
		}
	}
	set(&w.UrgencyPerHour, p.UrgencyPerHour)
	set(&w.WeightFactor, p.WeightFactor)
	set(&w.WeightCap, p.WeightCap)
	set(&w.EffortDivisor, p.EffortDivisor)
	set(&w.EffortCap, p.EffortCap)
	return w
}

// OverridesConfig selects where priority overrides are stored.
type OverridesConfig struct {
	Backend  string `toml:"backend"` // sqlite or redis
	RedisURL string `toml:"redis_url,omitempty"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Paths returns standard XDG-compliant paths.
type Paths struct {
	ConfigDir  string
	DataDir    string
	CacheDir   string
	StateDir   string
	ConfigFile string
	DBFile     string
}

// GetPaths returns the resolved paths, respecting XDG env vars.
func GetPaths() Paths {
	home, _ := os.UserHomeDir()

	configDir := envOr("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	dataDir := envOr("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))
	cacheDir := envOr("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	stateDir := envOr("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))

	prioConfig := filepath.Join(configDir, "prio")
	prioData := filepath.Join(dataDir, "prio")

	return Paths{
		ConfigDir:  prioConfig,
		DataDir:    prioData,
		CacheDir:   filepath.Join(cacheDir, "prio"),
		StateDir:   filepath.Join(stateDir, "prio"),
		ConfigFile: filepath.Join(prioConfig, "config.toml"),
		DBFile:     filepath.Join(prioData, "prio.db"),
	}
}

// EnsureDirs creates all required directories.
func (p Paths) EnsureDirs() error {
	dirs := []string{p.ConfigDir, p.DataDir, p.CacheDir, p.StateDir}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Load reads config from disk, returning defaults if not found.
// Keys missing from the file keep their default values.
func Load() (*Config, error) {
	paths := GetPaths()
	cfg := defaultConfig()

	data, err := os.ReadFile(paths.ConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to disk.
func Save(cfg *Config) error {
	paths := GetPaths()
	if err := paths.EnsureDirs(); err != nil {
		return err
	}

	f, err := os.Create(paths.ConfigFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Initialized returns true if a config file exists.
func Initialized() bool {
	paths := GetPaths()
	_, err := os.Stat(paths.ConfigFile)
	return err == nil
}

// FloatPtr returns a pointer to a float64 value.
func FloatPtr(v float64) *float64 {
	return &v
}

func defaultConfig() *Config {
	return &Config{
		User: UserConfig{
			ID:   envOr("USER", "me"),
			Role: "student",
		},
		AI: AIConfig{
			Provider:  "http",
			Model:     DefaultModel,
			Timeout:   DefaultAITimeout.String(),
			APIKeyEnv: "PRIO_AI_TOKEN",
		},
		Rank: RankConfig{
			Debounce: DefaultDebounce.String(),
		},
		Overrides: OverridesConfig{
			Backend: "sqlite",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
