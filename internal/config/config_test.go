package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SHORTLIST_THRESHOLD", "SKILL_VOCABULARY", "CALENDAR_TIMEZONE", "STORAGE_DRIVER", "INDEX_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, 7.0, cfg.Ranking.ShortlistThreshold)
	assert.Nil(t, cfg.Ranking.SkillVocabulary)
	assert.Equal(t, "Asia/Kolkata", cfg.Calendar.TimeZone)
	assert.Equal(t, "primary", cfg.Calendar.CalendarID)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.False(t, cfg.Qdrant.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Worker.PollInterval)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SHORTLIST_THRESHOLD", "9.5")
	t.Setenv("SKILL_VOCABULARY", " go, rust ,, kubernetes ")
	t.Setenv("INDEX_ENABLED", "true")
	t.Setenv("WORKER_POLL_INTERVAL", "not-a-duration")

	cfg := Load()

	assert.Equal(t, 9.5, cfg.Ranking.ShortlistThreshold)
	assert.Equal(t, []string{"go", "rust", "kubernetes"}, cfg.Ranking.SkillVocabulary)
	assert.True(t, cfg.Qdrant.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Worker.PollInterval)
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "db", Port: "5433", User: "hr", Password: "secret", DBName: "hrai"}}

	assert.Equal(t, "host=db port=5433 user=hr password=secret dbname=hrai sslmode=disable", cfg.GetDatabaseDSN())
}
