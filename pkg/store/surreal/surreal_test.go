package surreal_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quillcms/quillcms/pkg/store"
	"github.com/quillcms/quillcms/pkg/store/storetest"
	"github.com/quillcms/quillcms/pkg/store/surreal"
)

// TestConformance needs a disposable server, e.g.
//
//	surreal start --user root --pass root memory
//	QUILLCMS_TEST_SURREAL_URL=ws://localhost:8000/rpc go test ./...
//
// Every suite entry gets its own database, so nothing leaks between tests.
func TestConformance(t *testing.T) {
	surrealURL := os.Getenv("QUILLCMS_TEST_SURREAL_URL")
	if surrealURL == "" {
		t.Skip("QUILLCMS_TEST_SURREAL_URL not set")
	}
	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		s, err := surreal.New(ctx, surreal.Config{
			URL:       surrealURL,
			Namespace: "quillcms_test",
			Database:  "test_" + uuid.NewString(),
			Username:  os.Getenv("QUILLCMS_TEST_SURREAL_USER"),
			Password:  os.Getenv("QUILLCMS_TEST_SURREAL_PASS"),
		}, zerolog.Nop())
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		require.NoError(t, s.StartUp(ctx))
		return s
	})
}
