package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_PORT", "LOG_LEVEL", "DB_PATH", "DB_SEED", "SIM_START_DATE", "SIM_AUTO_ADVANCE_CRON",
	"REPORT_CRON_SCHEDULE", "TIMEZONE", "WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID",
	"WHATSAPP_BASE_URL", "WHATSAPP_API_VERSION", "WHATSAPP_RECIPIENT_ID",
	"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID", "MONGODB_URI", "MONGODB_DB_NAME",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "fms.db", cfg.Database.Path)
	assert.True(t, cfg.Database.Seed)
	assert.Equal(t, time.Date(2024, 10, 29, 0, 0, 0, 0, time.UTC), cfg.Simulation.StartDate)
	assert.Empty(t, cfg.Simulation.AutoAdvanceCron)
	assert.Equal(t, "0 20 * * *", cfg.Reporting.CronSchedule)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
	assert.False(t, cfg.MongoDB.Enabled())
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already set, even to "".
	for _, k := range []string{"APP_PORT", "DB_PATH", "SIM_START_DATE", "SIM_AUTO_ADVANCE_CRON"} {
		require.NoError(t, os.Unsetenv(k))
	}

	path := filepath.Join(t.TempDir(), "test.env")
	content := "APP_PORT=9090\nDB_PATH=/tmp/farm.db\nSIM_START_DATE=2025-02-28\nSIM_AUTO_ADVANCE_CRON=*/5 * * * *\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"APP_PORT", "DB_PATH", "SIM_START_DATE", "SIM_AUTO_ADVANCE_CRON"} {
			_ = os.Unsetenv(k)
		}
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "/tmp/farm.db", cfg.Database.Path)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), cfg.Simulation.StartDate)
	assert.Equal(t, "*/5 * * * *", cfg.Simulation.AutoAdvanceCron)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad start date":     {"SIM_START_DATE": "29/10/2024"},
		"bad seed flag":      {"DB_SEED": "maybe"},
		"bad advance cron":   {"SIM_AUTO_ADVANCE_CRON": "every day"},
		"bad timezone":       {"TIMEZONE": "Mars/Olympus"},
		"partial whatsapp":   {"WHATSAPP_TOKEN": "token"},
		"partial sheets":     {"GOOGLE_SHEET_DATABASE_ID": "sheet"},
		"missing recipients": {"WHATSAPP_TOKEN": "token", "WHATSAPP_PHONE_NUMBER_ID": "123"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestValidate_Integrations(t *testing.T) {
	clearEnv(t)
	t.Setenv("WHATSAPP_TOKEN", "token")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "123")
	t.Setenv("WHATSAPP_RECIPIENT_ID", "64211234567")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.True(t, cfg.WhatsApp.Enabled())
	assert.True(t, cfg.MongoDB.Enabled())
	assert.Equal(t, "Pacific/Auckland", cfg.Location().String())
}

func TestValidate_Nil(t *testing.T) {
	var cfg *Config
	assert.EqualError(t, cfg.Validate(), "config is nil")
}
