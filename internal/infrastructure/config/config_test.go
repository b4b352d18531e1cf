package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SHEET_URL", "https://docs.google.com/spreadsheets/d/e/x/pub?output=tsv")
	t.Setenv("QUIZ_HISTORY_LIMIT", "20")
	t.Setenv("SHEET_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/e/x/pub?output=tsv", cfg.Sheet.URL)
	assert.Equal(t, 3*time.Second, cfg.Sheet.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Sheet.CacheTTL)
	assert.Equal(t, 20, cfg.HistoryLimit())
	assert.True(t, cfg.Import.AutoExamples)

	driver, err := cfg.DatabaseDriver()
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", driver)
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Driver: "sqlite", Path: "data/words.db"}}
	dsn, err := cfg.DatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "file:data/words.db?cache=shared&_fk=1", dsn)

	cfg = &Config{Database: DatabaseConfig{
		Driver: "postgresql", Host: "db", Port: 5432, Name: "wordgym", User: "app", Password: "p@ss", SSLMode: "disable",
	}}
	dsn, err = cfg.DatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:p%40ss@db:5432/wordgym?sslmode=disable", dsn)

	cfg = &Config{Database: DatabaseConfig{Driver: "oracle"}}
	_, err = cfg.DatabaseURL()
	assert.Error(t, err)
}

func TestHistoryLimitFloor(t *testing.T) {
	assert.Equal(t, 50, (&Config{}).HistoryLimit())
	assert.Equal(t, 7, (&Config{Quiz: QuizConfig{HistoryLimit: 7}}).HistoryLimit())
}
