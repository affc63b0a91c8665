package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "tok")
	t.Setenv("ACCEPTED_AUTHORS", "111111,222222")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "$", cfg.Prefix)
	assert.Equal(t, []string{"111111", "222222"}, cfg.AcceptedAuthors)
	assert.Equal(t, 10*time.Minute, cfg.AutoVocInterval)
	assert.Equal(t, 15*time.Second, cfg.GSSendTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 1280, cfg.Stream.Width)
	assert.Equal(t, "H264", cfg.Stream.VideoCodec)
	assert.Equal(t, "memory", cfg.Backend())
	assert.Equal(t, DBPool{MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Hour}, cfg.DB)
	assert.Equal(t, "111111", cfg.Owner())
	assert.True(t, cfg.IsAccepted("222222"))
	assert.False(t, cfg.IsAccepted("333333"))
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("ACCEPTED_AUTHORS", "111111")

	_, err := Load()
	require.Error(t, err)
}

func TestBackendPriority(t *testing.T) {
	cfg := Config{DatabaseURL: "postgres://x", MongoURI: "mongodb://y"}
	assert.Equal(t, "postgres", cfg.Backend())

	cfg.DatabaseURL = ""
	assert.Equal(t, "mongo", cfg.Backend())
}

func TestLoadStorageWithoutToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	t.Setenv("DB_MAX_OPEN_CONNS", "3")

	cfg, err := LoadStorage()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.DB.MaxOpenConns)
	assert.Equal(t, "mongo", cfg.Backend())
	assert.Equal(t, "streambot", cfg.MongoDatabase)
}
