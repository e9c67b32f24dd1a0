package authkit

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Config holds the explicit configuration of the authorization service.
// The bypass identity and the default roles are deliberately plain
// configuration rather than ambient state so they stay auditable.
type Config struct {
	// GodID is an optional bypass identity. When set, every access check
	// for this exact user ID succeeds unconditionally without consulting
	// the item graph. Leave empty to disable.
	GodID string `envconfig:"GOD_ID"`

	// DefaultRoles are role names implicitly granted to every user
	// without a stored assignment. Their rules (if any) still apply.
	DefaultRoles []string `envconfig:"DEFAULT_ROLES"`

	// Logger receives structured trace and warning events. Nil disables
	// logging.
	Logger *zerolog.Logger `ignored:"true"`
}

// ConfigFromEnv loads a Config from AUTHKIT_-prefixed environment
// variables (AUTHKIT_GOD_ID, AUTHKIT_DEFAULT_ROLES as a comma-separated
// list).
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("authkit", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
