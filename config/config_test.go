package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/NethermindEth/rangekv/config"
	"github.com/NethermindEth/rangekv/db"
	"github.com/NethermindEth/rangekv/utils"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		v := viper.New()
		v.Set("db-path", "/var/lib/rangekv")

		cfg, err := config.Load(v)
		require.NoError(t, err)

		want := config.Default()
		want.DatabasePath = "/var/lib/rangekv"
		assert.Equal(t, want, cfg)
		assert.Equal(t, "localhost:9090", cfg.MetricsAddr())
		assert.Len(t, cfg.PebbleOptions(), 3)
	})

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
db-path: /data/store
log-level: debug
colour: false
cache-size: 64
max-open-files: 128
create-if-missing: false
metrics: true
metrics-port: 9191
`), 0o600))

		v := viper.New()
		v.SetConfigType("yaml")
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())

		cfg, err := config.Load(v)
		require.NoError(t, err)
		assert.Equal(t, &config.Config{
			DatabasePath:    "/data/store",
			LogLevel:        utils.DEBUG,
			Colour:          false,
			CacheSizeMB:     64,
			MaxOpenFiles:    128,
			CreateIfMissing: false,
			ErrorIfExists:   false,
			Metrics:         true,
			MetricsHost:     config.DefaultMetricsHost,
			MetricsPort:     9191,
		}, cfg)
		assert.False(t, cfg.OpenOptions().CreateIfMissing)
	})

	t.Run("invalid values", func(t *testing.T) {
		tests := map[string]map[string]any{
			"missing path":      {},
			"unknown log level": {"db-path": "/x", "log-level": "verbose"},
			"tiny cache":        {"db-path": "/x", "cache-size": 1},
			"few open files":    {"db-path": "/x", "max-open-files": 2},
			"conflicting flags": {"db-path": "/x", "create-if-missing": false, "error-if-exists": true},
			"metrics without port": {
				"db-path": "/x", "metrics": true, "metrics-port": 0,
			},
		}
		for name, values := range tests {
			t.Run(name, func(t *testing.T) {
				v := viper.New()
				for key, val := range values {
					v.Set(key, val)
				}
				_, err := config.Load(v)
				require.Error(t, err)
			})
		}
	})

	t.Run("conflicting open flags are an invalid argument", func(t *testing.T) {
		cfg := config.Default()
		cfg.DatabasePath = "/x"
		cfg.CreateIfMissing = false
		cfg.ErrorIfExists = true

		err := cfg.Validate()
		require.ErrorIs(t, err, db.ErrInvalidArgument)
		assert.Equal(t, db.CodeInvalidArgument, db.CodeOf(err))
	})
}
