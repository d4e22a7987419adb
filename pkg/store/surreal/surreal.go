// Package surreal implements the data access contract on SurrealDB, storing
// each entity as one whole document per record. Child collections live inside
// their parent document, so an update writes the aggregate in one statement
// and never needs a sync plan.
//
// The connection uses the surrealcbor codec so time.Time values and the typed
// record IDs round-trip through SurrealDB's CBOR protocol intact. Operations
// run under the shared retry policy; a dropped WebSocket or an in-flight
// leader election surfaces as a transient error and is retried with backoff.
package surreal

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/quillcms/quillcms/pkg/store"
)

// Config carries what New needs to reach a SurrealDB instance.
type Config struct {
	// URL is the WebSocket endpoint, e.g. ws://localhost:8000/rpc.
	URL string
	// Namespace and Database select the storage scope.
	Namespace string
	Database  string
	// Username and Password authenticate when set.
	Username string
	Password string
	// Retry overrides the default backoff policy when set.
	Retry store.RetryPolicy
}

// Store implements the umbrella contract on SurrealDB.
type Store struct {
	db    *surrealdb.DB
	log   zerolog.Logger
	retry store.RetryPolicy
}

// New connects to the SurrealDB instance described by cfg, signs in, and
// selects the namespace and database.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Store, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing SurrealDB URL: %w", err)
	}

	conf := connection.NewConfig(u)
	// The default codec mangles time.Time and record IDs; surrealcbor
	// round-trips both.
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	db, err := surrealdb.FromConnection(ctx, gorillaws.New(conf))
	if err != nil {
		return nil, fmt.Errorf("connecting to SurrealDB: %w", err)
	}

	if cfg.Username != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": cfg.Username,
			"pass": cfg.Password,
		}); err != nil {
			return nil, fmt.Errorf("authenticating with SurrealDB: %w", err)
		}
	}
	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		return nil, fmt.Errorf("selecting namespace %q database %q: %w", cfg.Namespace, cfg.Database, err)
	}

	retry := cfg.Retry
	if retry == nil {
		retry = store.DefaultBackoff()
	}
	return &Store{
		db:    db,
		log:   log.With().Str("store", "surreal").Logger(),
		retry: retry,
	}, nil
}

func (s *Store) Categories() store.CategoryStore    { return &categories{s: s} }
func (s *Store) Pages() store.PageStore             { return &pages{s: s} }
func (s *Store) Posts() store.PostStore             { return &posts{s: s} }
func (s *Store) TagMaps() store.TagMapStore         { return &tagMaps{s: s} }
func (s *Store) Themes() store.ThemeStore           { return &themes{s: s} }
func (s *Store) ThemeAssets() store.ThemeAssetStore { return &themeAssets{s: s} }
func (s *Store) Uploads() store.UploadStore         { return &uploads{s: s} }
func (s *Store) WebLogs() store.WebLogStore         { return &webLogs{s: s} }
func (s *Store) WebLogUsers() store.WebLogUserStore { return &webLogUsers{s: s} }

// StartUp defines the indexes the queries lean on and brings the schema
// version marker up to date. SurrealDB creates tables on first insert, so
// there is no table DDL here; the indexes are IF NOT EXISTS and safe to
// re-run.
func (s *Store) StartUp(ctx context.Context) error {
	s.log.Debug().Msg("ensuring indexes")
	indexes := []string{
		"DEFINE INDEX IF NOT EXISTS idx_category_web_log ON category FIELDS web_log_id",
		"DEFINE INDEX IF NOT EXISTS idx_page_web_log ON page FIELDS web_log_id",
		"DEFINE INDEX IF NOT EXISTS idx_page_permalink ON page FIELDS web_log_id, permalink",
		"DEFINE INDEX IF NOT EXISTS idx_post_web_log ON post FIELDS web_log_id",
		"DEFINE INDEX IF NOT EXISTS idx_post_permalink ON post FIELDS web_log_id, permalink",
		"DEFINE INDEX IF NOT EXISTS idx_post_status ON post FIELDS web_log_id, status",
		"DEFINE INDEX IF NOT EXISTS idx_tag_map_tag ON tag_map FIELDS web_log_id, tag",
		"DEFINE INDEX IF NOT EXISTS idx_upload_path ON upload FIELDS web_log_id, path",
		"DEFINE INDEX IF NOT EXISTS idx_user_email ON web_log_user FIELDS web_log_id, email",
	}
	for _, ddl := range indexes {
		if _, err := surrealdb.Query[any](ctx, s.db, ddl, nil); err != nil {
			return fmt.Errorf("defining index: %w", err)
		}
	}

	m := &store.Migrator{
		Log:        s.log,
		GetVersion: s.getVersion,
		SetVersion: s.setVersion,
		Steps:      s.migrationSteps(),
	}
	return m.Run(ctx)
}

// Close releases the WebSocket connection.
func (s *Store) Close() error {
	return s.db.Close(context.Background())
}

func (s *Store) getVersion(ctx context.Context) (string, error) {
	type versionDoc struct {
		Version string `json:"version"`
	}
	rows, err := queryRows[versionDoc](ctx, s, "SELECT version FROM db_version", nil)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].Version, nil
}

func (s *Store) setVersion(ctx context.Context, v string) error {
	return s.exec(ctx, "UPSERT db_version:schema SET version = $version",
		map[string]any{"version": v})
}

// migrationSteps holds the document migrations. Each statement only touches
// records still in the old shape, so a re-run finds nothing left to change.
func (s *Store) migrationSteps() map[string]func(ctx context.Context) error {
	return map[string]func(ctx context.Context) error{
		// Posts gained an explicit status field; anything stored without
		// one had been published.
		"v2-rc2": func(ctx context.Context) error {
			return s.exec(ctx,
				"UPDATE post SET status = 'published' WHERE status IS NONE", nil)
		},
		// The feed configuration moved under a single rss object.
		"v2": func(ctx context.Context) error {
			return s.exec(ctx,
				"UPDATE web_log SET rss.is_feed_enabled = is_feed_enabled, is_feed_enabled = NONE"+
					" WHERE is_feed_enabled IS NOT NONE", nil)
		},
	}
}

// isNotFound reports whether the error is the driver's way of saying no
// record matched.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Expected a single or multiple results but got 0") ||
		strings.Contains(msg, "cannot unmarshal array into Go value")
}

// exec runs a statement whose result is discarded, under the retry policy.
func (s *Store) exec(ctx context.Context, query string, params map[string]any) error {
	return store.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		_, err := surrealdb.Query[any](ctx, s.db, query, params)
		return err
	})
}

// queryRows runs a SELECT and returns the first statement's rows, under the
// retry policy.
func queryRows[T any](ctx context.Context, s *Store, query string, params map[string]any) ([]T, error) {
	var rows []T
	err := store.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		result, err := surrealdb.Query[[]T](ctx, s.db, query, params)
		if err != nil {
			return err
		}
		rows = nil
		if result != nil && len(*result) > 0 {
			rows = (*result)[0].Result
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// queryOne runs a SELECT expected to match at most one record.
func queryOne[T any](ctx context.Context, s *Store, query string, params map[string]any) (*T, error) {
	rows, err := queryRows[T](ctx, s, query, params)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// create stores a new record under its typed ID.
func create[T any](ctx context.Context, s *Store, table string, doc T) error {
	return store.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		_, err := surrealdb.Create[T](ctx, s.db, table, doc)
		return err
	})
}

// selectByID fetches one record by record ID; nil when it does not exist.
func selectByID[T any](ctx context.Context, s *Store, rid surrealmodels.RecordID) (*T, error) {
	var doc *T
	err := store.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		found, err := surrealdb.Select[T](ctx, s.db, rid)
		if err != nil {
			if isNotFound(err) {
				doc = nil
				return nil
			}
			return err
		}
		doc = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// replace overwrites a record wholesale.
func replace[T any](ctx context.Context, s *Store, rid surrealmodels.RecordID, doc T) error {
	return store.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		_, err := surrealdb.Update[T](ctx, s.db, rid, doc)
		return err
	})
}

// remove deletes a record by record ID.
func remove(ctx context.Context, s *Store, rid surrealmodels.RecordID) error {
	return store.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		_, err := surrealdb.Delete[any](ctx, s.db, rid)
		if err != nil && isNotFound(err) {
			return nil
		}
		return err
	})
}

// queryCount runs a count aggregation, which SurrealDB returns as a single
// grouped row.
func (s *Store) queryCount(ctx context.Context, query string, params map[string]any) (int64, error) {
	type countDoc struct {
		Count int64 `json:"count"`
	}
	row, err := queryOne[countDoc](ctx, s, query, params)
	if err != nil || row == nil {
		return 0, err
	}
	return row.Count, nil
}
