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
		os.Args = []string{"testbin", "-a", "http://host:9999", "-f", "x.db", "-p", "7", "-i", "11"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFlags(cfg)

		assert.Equal(t, "http://host:9999", cfg.ServerBaseURL)
		assert.Equal(t, "x.db", cfg.DatabasePath)
		assert.Equal(t, 7*time.Second, cfg.PushInterval)
		assert.Equal(t, 11*time.Second, cfg.OnlineCheckInterval)
	})

	t.Run("no flags keeps defaults", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFlags(cfg)

		assert.Equal(t, "http://127.0.0.1:8080", cfg.ServerBaseURL)
		assert.Equal(t, 5*time.Second, cfg.PushInterval)
	})
}
