package authkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestConfigFromEnv tests loading configuration from the environment
func TestConfigFromEnv(t *testing.T) {
	t.Setenv("AUTHKIT_GOD_ID", "root")
	t.Setenv("AUTHKIT_DEFAULT_ROLES", "guest,authenticated")

	cfg, err := ConfigFromEnv()

	assert.NoError(t, err)
	assert.Equal(t, "root", cfg.GodID)
	assert.Equal(t, []string{"guest", "authenticated"}, cfg.DefaultRoles)
	assert.Nil(t, cfg.Logger)
}

// TestConfigFromEnvEmpty tests defaults when nothing is set
func TestConfigFromEnvEmpty(t *testing.T) {
	t.Setenv("AUTHKIT_GOD_ID", "")
	t.Setenv("AUTHKIT_DEFAULT_ROLES", "")

	cfg, err := ConfigFromEnv()

	assert.NoError(t, err)
	assert.Equal(t, "", cfg.GodID)
	assert.Empty(t, cfg.DefaultRoles)
}
