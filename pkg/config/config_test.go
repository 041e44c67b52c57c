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
	t.Setenv("STORAGE_DRIVER", "")
	os.Unsetenv("STORAGE_DRIVER")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.ServerPort)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "repair.sid", cfg.SessionCookieName)
	assert.Equal(t, "http://localhost:5173", cfg.FrontendOrigin)
	assert.Equal(t, 10, cfg.AuthRateLimit)
	assert.Equal(t, 30, cfg.MessageRateLimit)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SERVER_PORT=9090\nSESSION_TTL=60\nMESSAGE_RATE_LIMIT=5\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("SESSION_TTL")
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, time.Minute, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.MessageRateLimit)
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	cfg := &Config{
		Environment:   "production",
		StorageDriver: StorageMemory,
		SessionSecret: defaultSessionSecret,
		SessionTTL:    time.Hour,
	}
	assert.Error(t, cfg.Validate())

	cfg.SessionSecret = "something-long-and-random"
	assert.NoError(t, cfg.Validate())
}

func TestValidateFirestoreNeedsProject(t *testing.T) {
	cfg := &Config{StorageDriver: StorageFirestore, SessionTTL: time.Hour}
	assert.Error(t, cfg.Validate())

	cfg.FirebaseProject = "furious-repair"
	assert.NoError(t, cfg.Validate())

	cfg.StorageDriver = "mongo"
	assert.Error(t, cfg.Validate())
}

func TestTrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.1/32,")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1/32"}, cfg.TrustedProxies)

	nets, err := cfg.TrustedProxyNets()
	require.NoError(t, err)
	require.Len(t, nets, 2)
	assert.Equal(t, "10.0.0.0/8", nets[0].String())

	cfg.TrustedProxies = []string{"not-a-cidr"}
	assert.Error(t, cfg.Validate())
}
