package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Africa/Addis_Ababa", cfg.Scheduling.Timezone)
	assert.Equal(t, 90, cfg.Scheduling.FairnessWindowDays)
	assert.True(t, cfg.Scheduling.ATMRestRuleEnabled)
	assert.Equal(t, 2, cfg.Scheduling.ATMBCooldownDays)
	assert.Equal(t, 1, cfg.Scheduling.DefaultAggressiveness)
	assert.Equal(t, "info", cfg.Service.LogLevel)
	assert.Empty(t, cfg.Export.AutoCSVPath)

	weekDays := cfg.Scheduling.WeekDays()
	assert.True(t, weekDays[time.Monday])
	assert.True(t, weekDays[time.Saturday])
	assert.False(t, weekDays[time.Sunday])

	officeDays := cfg.Scheduling.RequiredOfficeDays()
	assert.True(t, officeDays[time.Friday])
	assert.False(t, officeDays[time.Saturday])
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.toml")
	content := `
[scheduling]
timezone = "Europe/Brussels"
fairness_window_days = 60
atm_b_cooldown_days = 3

[database]
path = "/tmp/test-roster.db"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Europe/Brussels", cfg.Scheduling.Timezone)
	assert.Equal(t, 60, cfg.Scheduling.FairnessWindowDays)
	assert.Equal(t, 3, cfg.Scheduling.ATMBCooldownDays)
	assert.Equal(t, "/tmp/test-roster.db", cfg.Database.Path)
	// Untouched keys keep their defaults
	assert.True(t, cfg.Scheduling.ATMRestRuleEnabled)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("ROSTER_SCHEDULING__FAIRNESS_WINDOW_DAYS", "30")
	t.Setenv("ROSTER_SERVICE__LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Scheduling.FairnessWindowDays)
	assert.Equal(t, "debug", cfg.Service.LogLevel)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad timezone", "[scheduling]\ntimezone = \"Mars/Olympus\"\n"},
		{"zero window", "[scheduling]\nfairness_window_days = 0\n"},
		{"negative cooldown", "[scheduling]\natm_b_cooldown_days = -1\n"},
		{"aggressiveness too high", "[scheduling]\ndefault_aggressiveness = 6\n"},
		{"unknown weekday", "[scheduling]\nsysaid_week_days = [\"Moonday\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "roster.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
