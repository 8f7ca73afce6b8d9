package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("GITHUB_TIMEOUT", "")
	t.Setenv("GITHUB_MAX_REPOS", "")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, 10, cfg.GitHub.MaxRepos)
	assert.Equal(t, DefaultUserAgent, cfg.GitHub.UserAgent)
	assert.Equal(t, "job_roles.json", cfg.Data.JobRolesFile)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("GITHUB_TIMEOUT", "3s")
	t.Setenv("GITHUB_MAX_REPOS", "not-a-number")

	cfg := Load()

	assert.Equal(t, 3*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, 10, cfg.GitHub.MaxRepos)
	assert.Contains(t, cfg.GetDatabaseDSN(), "host=db.internal")
}

func TestGetDatabaseDSN_SQLite(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Driver: "sqlite", Path: "history.db"}}
	assert.Equal(t, "history.db?_busy_timeout=5000", cfg.GetDatabaseDSN())
}

func TestGetEnvAsDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_DURATION", "soon")
	assert.Equal(t, 2*time.Second, getEnvAsDuration("SOME_DURATION", "2s"))
}
