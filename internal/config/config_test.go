package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "lusohub")
	t.Setenv("DB_NAME", "lusohub")
	t.Setenv("JWT_ACCESS_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 60.0, cfg.Matching.MinCompatibilityScore)
	assert.Equal(t, 20, cfg.Matching.MaxMatches)
	assert.Equal(t, 2*time.Second, cfg.Matching.ProfileResolveTimeout)
	assert.Equal(t, 15*time.Minute, cfg.Matching.MatchCacheTTL)
	assert.Equal(t, 4, cfg.Matching.RecomputeWorkers)
	assert.Equal(t, 8, cfg.Matching.ScoreParallelism)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadReadsOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MIN_COMPATIBILITY_SCORE", "75")
	t.Setenv("MAX_MATCHES", "5")
	t.Setenv("PROFILE_RESOLVE_TIMEOUT", "500ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 75.0, cfg.Matching.MinCompatibilityScore)
	assert.Equal(t, 5, cfg.Matching.MaxMatches)
	assert.Equal(t, 500*time.Millisecond, cfg.Matching.ProfileResolveTimeout)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Database: DatabaseConfig{Host: "localhost", User: "lusohub", DBName: "lusohub"},
			JWT:      JWTConfig{AccessSecret: "0123456789abcdef0123456789abcdef"},
			Matching: MatchingConfig{MinCompatibilityScore: 60, MaxMatches: 20, RecomputeWorkers: 4},
		}
	}

	require.NoError(t, base().Validate())

	shortSecret := base()
	shortSecret.JWT.AccessSecret = "too-short"
	assert.Error(t, shortSecret.Validate())

	noHost := base()
	noHost.Database.Host = ""
	assert.Error(t, noHost.Validate())

	badScore := base()
	badScore.Matching.MinCompatibilityScore = 150
	assert.Error(t, badScore.Validate())

	noWorkers := base()
	noWorkers.Matching.RecomputeWorkers = 0
	assert.Error(t, noWorkers.Validate())
}

func TestGetDSNAndAddr(t *testing.T) {
	db := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "lusohub",
		Password: "secret", DBName: "lusohub", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=lusohub password=secret dbname=lusohub sslmode=disable",
		db.GetDSN())

	redis := RedisConfig{Host: "localhost", Port: 6379}
	assert.Equal(t, "localhost:6379", redis.GetAddr())
}
