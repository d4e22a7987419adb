package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillcms/quillcms/pkg/config"
	"github.com/quillcms/quillcms/pkg/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadSurrealDB(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
backend: surrealdb
surrealdb:
  url: ws://localhost:8000/rpc
  namespace: quillcms
  database: production
  username: root
  password: root
  retry:
    initial_delay: 250ms
    max_retries: 6
log_level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, config.BackendSurrealDB, cfg.Backend)
	assert.Equal(t, "quillcms", cfg.SurrealDB.Namespace)
	assert.Equal(t, "debug", cfg.LogLevel)

	policy, ok := cfg.SurrealDB.Retry.Policy().(*store.BackoffPolicy)
	require.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, policy.InitialDelay)
	assert.Equal(t, 6, policy.MaxRetries)
	// Unset knobs keep the defaults.
	assert.Equal(t, store.DefaultBackoff().MaxDelay, policy.MaxDelay)
}

func TestLoadSQLite(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
backend: sqlite
sqlite:
  path: /var/lib/quillcms/data.db
`))
	require.NoError(t, err)
	assert.Equal(t, config.BackendSQLite, cfg.Backend)
	assert.Equal(t, "/var/lib/quillcms/data.db", cfg.SQLite.Path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"NoBackend", `log_level: info`},
		{"UnknownBackend", `backend: mongodb`},
		{"SQLiteWithoutPath", `backend: sqlite`},
		{"PostgresWithoutDSN", `backend: postgres`},
		{"SurrealWithoutURL", "backend: surrealdb\nsurrealdb:\n  namespace: a\n  database: b"},
		{"SurrealWithoutScope", "backend: surrealdb\nsurrealdb:\n  url: ws://localhost:8000/rpc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestNilRetryMeansDefault(t *testing.T) {
	var r *config.RetryConfig
	assert.Nil(t, r.Policy())
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, config.BackendSQLite, cfg.Backend)
}
