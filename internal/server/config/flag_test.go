package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_parseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("overrides from flags", func(t *testing.T) {
		os.Args = []string{"testbin",
			"-a", ":9999",
			"-d", "postgres://flag/db",
			"-s", "flag-secret",
			"-t", "5",
			"-r", "120",
			"-b", "flag-bucket",
		}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFlags(cfg)

		assert.Equal(t, ":9999", cfg.EndpointAddr)
		assert.Equal(t, "postgres://flag/db", cfg.DatabaseDSN)
		assert.Equal(t, "flag-secret", cfg.SecretKey)
		assert.Equal(t, 5*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 120*time.Minute, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, "flag-bucket", cfg.S3Bucket)
	})

	t.Run("no flags keep defaults", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFlags(cfg)

		assert.Equal(t, ":8080", cfg.EndpointAddr)
		assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	})
}
