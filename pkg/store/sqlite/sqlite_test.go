package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quillcms/quillcms/pkg/store"
	"github.com/quillcms/quillcms/pkg/store/sqlite"
	"github.com/quillcms/quillcms/pkg/store/storetest"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "quillcms.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.StartUp(context.Background()))
	return s
}

func TestConformance(t *testing.T) {
	storetest.Run(t, newStore)
}
