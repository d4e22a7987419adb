package postgres_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	sqlitedriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/quillcms/quillcms/pkg/store"
	"github.com/quillcms/quillcms/pkg/store/postgres"
	"github.com/quillcms/quillcms/pkg/store/storetest"
)

// TestConformance runs the relational adapter against an embedded SQLite
// database. The adapter stays inside GORM's portable surface, so this covers
// its logic without a server; TestConformancePostgreSQL covers the real thing.
func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		db, err := gorm.Open(
			sqlitedriver.Open(filepath.Join(t.TempDir(), "quillcms.db")),
			&gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
		require.NoError(t, err)
		s := postgres.NewFromDB(db, zerolog.Nop())
		t.Cleanup(func() { _ = s.Close() })
		require.NoError(t, s.StartUp(context.Background()))
		return s
	})
}

// TestConformancePostgreSQL needs a disposable server, e.g.
//
//	QUILLCMS_TEST_POSTGRES_DSN="host=localhost user=postgres dbname=quillcms_test" go test ./...
//
// Each suite entry seeds fresh tenants, so a dirty database only risks
// collisions on the shared theme table.
func TestConformancePostgreSQL(t *testing.T) {
	dsn := os.Getenv("QUILLCMS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("QUILLCMS_TEST_POSTGRES_DSN not set")
	}
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := postgres.New(dsn, zerolog.Nop())
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		require.NoError(t, s.StartUp(context.Background()))
		return s
	})
}
