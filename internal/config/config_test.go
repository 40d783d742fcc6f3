package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL":     "postgres://localhost/bloodlink",
		"JWT_SECRET":       "0123456789abcdef0123",
		"EMAIL_FROM":       "noreply@bloodlink.example",
		"SENDGRID_API_KEY": "SG.test",
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envFrom(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 15*time.Minute, cfg.ReminderInterval)
	assert.Equal(t, "sendgrid", cfg.Email.Provider)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.False(t, cfg.GoogleSignInEnabled())
}

func TestFromEnv_BuildsDSNFromParts(t *testing.T) {
	env := baseEnv()
	delete(env, "DATABASE_URL")
	env["DB_HOST"] = "db"
	env["DB_USER"] = "blood"
	env["DB_PASSWORD"] = "secret"
	env["DB_NAME"] = "bloodlink"

	cfg, err := FromEnv(envFrom(env))
	require.NoError(t, err)
	assert.Contains(t, cfg.DatabaseURL, "host=db")
	assert.Contains(t, cfg.DatabaseURL, "port=5432")
	assert.Contains(t, cfg.DatabaseURL, "sslmode=disable")
}

func TestFromEnv_MissingSecret(t *testing.T) {
	env := baseEnv()
	delete(env, "JWT_SECRET")

	_, err := FromEnv(envFrom(env))
	assert.Error(t, err)
}

func TestFromEnv_SMTPRequiresHost(t *testing.T) {
	env := baseEnv()
	env["EMAIL_PROVIDER"] = "smtp"

	_, err := FromEnv(envFrom(env))
	assert.Error(t, err)

	env["SMTP_HOST"] = "mail.example"
	env["SMTP_PORT"] = "587"
	cfg, err := FromEnv(envFrom(env))
	require.NoError(t, err)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
}

func TestFromEnv_BadDuration(t *testing.T) {
	env := baseEnv()
	env["REMINDER_INTERVAL"] = "often"

	_, err := FromEnv(envFrom(env))
	assert.ErrorContains(t, err, "REMINDER_INTERVAL")
}

const seedYAML = `
hospitals:
  - name: City General
    address: 1 Rizal Ave
    barangay: Poblacion
    openTime: "08:00"
    closeTime: "12:00"
    donationDays: [Monday, Wednesday]
    slotDuration: 30
    slotsPerHour: 2
`

func TestParseHospitals(t *testing.T) {
	hospitals, err := ParseHospitals([]byte(seedYAML))
	require.NoError(t, err)
	require.Len(t, hospitals, 1)
	assert.Equal(t, "City General", hospitals[0].Name)
	assert.Equal(t, []string{"Monday", "Wednesday"}, []string(hospitals[0].DonationDays))
}

func TestParseHospitals_RejectsBadWeekday(t *testing.T) {
	_, err := ParseHospitals([]byte(`
hospitals:
  - name: X
    address: Y
    openTime: "08:00"
    closeTime: "12:00"
    donationDays: [Funday]
    slotDuration: 30
    slotsPerHour: 2
`))
	assert.Error(t, err)
}

func TestParseHospitals_RejectsInvertedHours(t *testing.T) {
	_, err := ParseHospitals([]byte(`
hospitals:
  - name: X
    address: Y
    openTime: "12:00"
    closeTime: "08:00"
    donationDays: [Monday]
    slotDuration: 30
    slotsPerHour: 2
`))
	assert.Error(t, err)
}
