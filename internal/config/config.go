package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the full application configuration.
type Config struct {
	Scheduling SchedulingConfig `koanf:"scheduling"`
	Database   DatabaseConfig   `koanf:"database"`
	Service    ServiceConfig    `koanf:"service"`
	Export     ExportConfig     `koanf:"export"`
}

// SchedulingConfig is the frozen rule set passed into the scheduling engine.
type SchedulingConfig struct {
	Timezone                 string   `koanf:"timezone"`
	FairnessWindowDays       int      `koanf:"fairness_window_days"`
	ATMRestRuleEnabled       bool     `koanf:"atm_rest_rule_enabled"`
	ATMBCooldownDays         int      `koanf:"atm_b_cooldown_days"`
	SysAidWeekDays           []string `koanf:"sysaid_week_days"`
	SysAidRequiredOfficeDays []string `koanf:"sysaid_required_office_days"`
	DefaultAggressiveness    int      `koanf:"default_aggressiveness"`
}

// DatabaseConfig holds the SQLite state file location.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// ServiceConfig holds process-level settings.
type ServiceConfig struct {
	LogLevel string `koanf:"log_level"`
}

// ExportConfig holds the post-generation export hooks. An empty path disables
// the hook.
type ExportConfig struct {
	AutoCSVPath string `koanf:"auto_csv_path"`
}

// envPrefix is the prefix for environment overrides, e.g.
// ROSTER_SCHEDULING__FAIRNESS_WINDOW_DAYS=60.
const envPrefix = "ROSTER_"

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"scheduling.timezone":                    "Africa/Addis_Ababa",
		"scheduling.fairness_window_days":        90,
		"scheduling.atm_rest_rule_enabled":       true,
		"scheduling.atm_b_cooldown_days":         2,
		"scheduling.sysaid_week_days":            []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		"scheduling.sysaid_required_office_days": []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		"scheduling.default_aggressiveness":      1,
		"database.path":                          "data/roster.db",
		"service.log_level":                      "info",
		"export.auto_csv_path":                   "",
	}
}

// Load reads configuration from defaults, an optional TOML file, and
// ROSTER_-prefixed environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load default configuration: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load configuration file %s: %w", path, err)
		}
	}

	// ROSTER_SECTION__KEY maps to section.key
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment configuration: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	s := &cfg.Scheduling

	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	if s.FairnessWindowDays < 1 {
		return fmt.Errorf("fairness window days must be positive, got %d", s.FairnessWindowDays)
	}
	if s.ATMBCooldownDays < 0 {
		return fmt.Errorf("cooldown days cannot be negative, got %d", s.ATMBCooldownDays)
	}
	if s.DefaultAggressiveness < 1 || s.DefaultAggressiveness > 5 {
		return fmt.Errorf("default aggressiveness must be between 1 and 5, got %d", s.DefaultAggressiveness)
	}
	if _, err := parseWeekdays(s.SysAidWeekDays); err != nil {
		return fmt.Errorf("invalid sysaid week days: %w", err)
	}
	if _, err := parseWeekdays(s.SysAidRequiredOfficeDays); err != nil {
		return fmt.Errorf("invalid sysaid required office days: %w", err)
	}
	return nil
}

// Location resolves the configured timezone.
func (s SchedulingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WeekDays returns the SysAid assigned span as a weekday set.
func (s SchedulingConfig) WeekDays() map[time.Weekday]bool {
	days, _ := parseWeekdays(s.SysAidWeekDays)
	return days
}

// RequiredOfficeDays returns the SysAid office-presence requirement as a
// weekday set.
func (s SchedulingConfig) RequiredOfficeDays() map[time.Weekday]bool {
	days, _ := parseWeekdays(s.SysAidRequiredOfficeDays)
	return days
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekdays converts weekday names to a weekday set. Names are matched
// case-insensitively against the full English names.
func ParseWeekdays(names []string) (map[time.Weekday]bool, error) {
	return parseWeekdays(names)
}

func parseWeekdays(names []string) (map[time.Weekday]bool, error) {
	days := make(map[time.Weekday]bool, len(names))
	for _, name := range names {
		day, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		days[day] = true
	}
	return days, nil
}
