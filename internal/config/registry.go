package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// KeyType represents the data type of a config key.
type KeyType string

const (
	KeyTypeString   KeyType = "string"
	KeyTypeFloat    KeyType = "float"
	KeyTypeDuration KeyType = "duration"
)

// KeyEntry describes a known, settable config key.
type KeyEntry struct {
	// Type is the value's data type.
	Type KeyType
	// Desc is a human-readable description shown in `prio config list`.
	Desc string
	// DefaultStr is the string representation of the default value.
	DefaultStr string

	get   func(*Config) string
	set   func(cfg *Config, value string) error
	unset func(cfg *Config)
}

// Get returns the current value of the key as a string.
func (e *KeyEntry) Get(cfg *Config) string { return e.get(cfg) }

// Set validates and sets the value, returning a descriptive error on type mismatch.
func (e *KeyEntry) Set(cfg *Config, value string) error { return e.set(cfg, value) }

// Unset resets the key to its schema default.
func (e *KeyEntry) Unset(cfg *Config) { e.unset(cfg) }

func stringKey(desc, def string, field func(*Config) *string) *KeyEntry {
	return &KeyEntry{
		Type:       KeyTypeString,
		Desc:       desc,
		DefaultStr: def,
		get:        func(cfg *Config) string { return *field(cfg) },
		set:        func(cfg *Config, v string) error { *field(cfg) = v; return nil },
		unset:      func(cfg *Config) { *field(cfg) = def },
	}
}

func enumKey(desc, def string, allowed []string, field func(*Config) *string) *KeyEntry {
	e := stringKey(desc, def, field)
	e.set = func(cfg *Config, v string) error {
		v = strings.ToLower(strings.TrimSpace(v))
		for _, a := range allowed {
			if v == a {
				*field(cfg) = v
				return nil
			}
		}
		return fmt.Errorf("invalid value %q (use one of: %s)", v, strings.Join(allowed, ", "))
	}
	return e
}

func durationKey(desc string, def time.Duration, field func(*Config) *string) *KeyEntry {
	e := stringKey(desc, def.String(), field)
	e.Type = KeyTypeDuration
	e.set = func(cfg *Config, v string) error {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		if d <= 0 {
			return fmt.Errorf("duration must be positive, got %s", d)
		}
		*field(cfg) = d.String()
		return nil
	}
	return e
}

func floatKey(desc string, field func(*Config) **float64) *KeyEntry {
	return &KeyEntry{
		Type:       KeyTypeFloat,
		Desc:       desc,
		DefaultStr: "",
		get: func(cfg *Config) string {
			if p := *field(cfg); p != nil {
				return strconv.FormatFloat(*p, 'f', -1, 64)
			}
			return ""
		},
		set: func(cfg *Config, v string) error {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("not a number: %q", v)
			}
			if f < 0 {
				return fmt.Errorf("must not be negative, got %v", f)
			}
			*field(cfg) = FloatPtr(f)
			return nil
		},
		unset: func(cfg *Config) { *field(cfg) = nil },
	}
}

// SchemaKeys is the authoritative registry of all settable config keys.
// Keys use dot-notation matching the TOML section structure.
var SchemaKeys = map[string]*KeyEntry{
	"user.id":         stringKey("Viewer id used for overrides and completions", "", func(c *Config) *string { return &c.User.ID }),
	"user.name":       stringKey("Display name", "", func(c *Config) *string { return &c.User.Name }),
	"user.role":       enumKey("Viewer role", "student", []string{"student", "teacher"}, func(c *Config) *string { return &c.User.Role }),
	"user.class_code": stringKey("Class code the student belongs to", "", func(c *Config) *string { return &c.User.ClassCode }),
	"user.grade_room": stringKey("Grade room the student belongs to", "", func(c *Config) *string { return &c.User.GradeRoom }),

	"ai.provider":    enumKey("Ranking backend", "http", []string{"http", "claude"}, func(c *Config) *string { return &c.AI.Provider }),
	"ai.endpoint":    stringKey("URL of the remote ranking service (http provider)", "", func(c *Config) *string { return &c.AI.Endpoint }),
	"ai.model":       stringKey("Model name (claude provider)", DefaultModel, func(c *Config) *string { return &c.AI.Model }),
	"ai.timeout":     durationKey("Timeout for one ranking call", DefaultAITimeout, func(c *Config) *string { return &c.AI.Timeout }),
	"ai.api_key_env": stringKey("Environment variable holding the ranking credential", "PRIO_AI_TOKEN", func(c *Config) *string { return &c.AI.APIKeyEnv }),

	"rank.debounce": durationKey("Delay before a rank request is sent", DefaultDebounce, func(c *Config) *string { return &c.Rank.Debounce }),

	"priority.urgency_per_hour": floatKey("Urgency lost per hour left", func(c *Config) **float64 { return &c.Priority.UrgencyPerHour }),
	"priority.weight_factor":    floatKey("Points per unit of importance", func(c *Config) **float64 { return &c.Priority.WeightFactor }),
	"priority.weight_cap":       floatKey("Maximum importance points", func(c *Config) **float64 { return &c.Priority.WeightCap }),
	"priority.effort_divisor":   floatKey("Minutes of effort per point", func(c *Config) **float64 { return &c.Priority.EffortDivisor }),
	"priority.effort_cap":       floatKey("Maximum effort points", func(c *Config) **float64 { return &c.Priority.EffortCap }),

	"overrides.backend":   enumKey("Override storage backend", "sqlite", []string{"sqlite", "redis"}, func(c *Config) *string { return &c.Overrides.Backend }),
	"overrides.redis_url": stringKey("Redis URL (redis backend)", "", func(c *Config) *string { return &c.Overrides.RedisURL }),

	"log.level": enumKey("Log level", "warn", []string{"debug", "info", "warn", "error"}, func(c *Config) *string { return &c.Log.Level }),
}

// ValidKeyNames returns the sorted list of all known config key names.
func ValidKeyNames() []string {
	names := make([]string, 0, len(SchemaKeys))
	for k := range SchemaKeys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LookupKey returns the KeyEntry for a known config key.
func LookupKey(key string) (*KeyEntry, bool) {
	entry, ok := SchemaKeys[key]
	return entry, ok
}
