// Package sqlite implements the data access contract on SQLite with a hybrid
// layout: each entity table carries the row's identity and tenant columns for
// indexing, and the whole aggregate as one JSON document in a data column.
// Queries reach into the document with json_extract and json_each, so the
// schema never changes when a document gains a field.
//
// Writes compare the serialized document against the stored one and skip the
// write when nothing changed, which keeps the database file stable across
// no-op saves.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/quillcms/quillcms/pkg/store"
)

// Store implements the umbrella contract on SQLite.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// New opens (creating if needed) the SQLite database at path.
func New(path string, log zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database: %w", err)
	}
	return &Store{db: db, log: log.With().Str("store", "sqlite").Logger()}, nil
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

// docTables are the entity tables sharing the hybrid document layout. Themes
// and theme assets are keyed differently and get their own definitions.
var docTables = []string{
	"web_log", "category", "page", "post", "tag_map", "web_log_user",
}

// StartUp creates any missing tables and brings the schema version marker up
// to date.
func (s *Store) StartUp(ctx context.Context) error {
	s.log.Debug().Msg("ensuring schema")
	for _, table := range docTables {
		webLogCol := ", web_log_id TEXT NOT NULL"
		if table == "web_log" {
			webLogCol = ""
		}
		ddl := fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY%s, data TEXT NOT NULL)",
			table, webLogCol)
		if err := s.db.WithContext(ctx).Exec(ddl).Error; err != nil {
			return fmt.Errorf("creating table %s: %w", table, err)
		}
		if table != "web_log" {
			idx := fmt.Sprintf(
				"CREATE INDEX IF NOT EXISTS idx_%s_web_log ON %s (web_log_id)",
				table, table)
			if err := s.db.WithContext(ctx).Exec(idx).Error; err != nil {
				return fmt.Errorf("indexing table %s: %w", table, err)
			}
		}
	}

	// Themes are keyed by slug, and assets and uploads carry binary
	// payloads, so none of the three fits the document layout.
	extra := []string{
		"CREATE TABLE IF NOT EXISTS theme (id TEXT PRIMARY KEY, data TEXT NOT NULL)",
		"CREATE TABLE IF NOT EXISTS theme_asset (theme_id TEXT NOT NULL, path TEXT NOT NULL," +
			" updated_on DATETIME NOT NULL, data BLOB, PRIMARY KEY (theme_id, path))",
		"CREATE TABLE IF NOT EXISTS upload (id TEXT PRIMARY KEY, web_log_id TEXT NOT NULL," +
			" path TEXT NOT NULL, updated_on DATETIME NOT NULL, data BLOB)",
		"CREATE INDEX IF NOT EXISTS idx_upload_web_log ON upload (web_log_id, path)",
		"CREATE TABLE IF NOT EXISTS db_version (id INTEGER PRIMARY KEY, version TEXT NOT NULL)",
	}
	for _, ddl := range extra {
		if err := s.db.WithContext(ctx).Exec(ddl).Error; err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
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

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) getVersion(ctx context.Context) (string, error) {
	var version string
	err := s.db.WithContext(ctx).
		Raw("SELECT version FROM db_version LIMIT 1").Scan(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return version, err
}

func (s *Store) setVersion(ctx context.Context, v string) error {
	return s.db.WithContext(ctx).Exec(
		"INSERT INTO db_version (id, version) VALUES (1, ?)"+
			" ON CONFLICT (id) DO UPDATE SET version = excluded.version", v).Error
}

// migrationSteps holds the document-side migrations. Each rewrites stored
// JSON in place with SQLite's JSON functions, so a re-run finds nothing left
// to change.
func (s *Store) migrationSteps() map[string]func(ctx context.Context) error {
	return map[string]func(ctx context.Context) error{
		// Documents gained an explicit status field; anything stored
		// without one had been published.
		"v2-rc2": func(ctx context.Context) error {
			return s.db.WithContext(ctx).Exec(
				"UPDATE post SET data = json_set(data, '$.status', 'published')" +
					" WHERE json_extract(data, '$.status') IS NULL").Error
		},
		// The feed configuration moved under a single rss object.
		"v2": func(ctx context.Context) error {
			return s.db.WithContext(ctx).Exec(
				"UPDATE web_log SET data = json_set(json_remove(data, '$.is_feed_enabled')," +
					" '$.rss.is_feed_enabled', json_extract(data, '$.is_feed_enabled'))" +
					" WHERE json_extract(data, '$.is_feed_enabled') IS NOT NULL").Error
		},
	}
}

// saveDoc writes a document, skipping the write when the stored bytes
// already match.
func (s *Store) saveDoc(ctx context.Context, table, id string, webLogID string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serializing %s document: %w", table, err)
	}

	var existing sql.NullString
	err = s.db.WithContext(ctx).
		Raw(fmt.Sprintf("SELECT data FROM %s WHERE id = ?", table), id).
		Scan(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing.Valid && existing.String == string(data) {
		return nil
	}

	if webLogID == "" {
		return s.db.WithContext(ctx).Exec(
			fmt.Sprintf("INSERT INTO %s (id, data) VALUES (?, ?)"+
				" ON CONFLICT (id) DO UPDATE SET data = excluded.data", table),
			id, string(data)).Error
	}
	return s.db.WithContext(ctx).Exec(
		fmt.Sprintf("INSERT INTO %s (id, web_log_id, data) VALUES (?, ?, ?)"+
			" ON CONFLICT (id) DO UPDATE SET data = excluded.data", table),
		id, webLogID, string(data)).Error
}

// findDoc loads one document by an arbitrary WHERE clause and unmarshals it
// into out; ok is false when no row matched.
func (s *Store) findDoc(ctx context.Context, query string, out any, args ...any) (bool, error) {
	var data sql.NullString
	err := s.db.WithContext(ctx).Raw(query, args...).Scan(&data).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !data.Valid || data.String == "" {
		return false, nil
	}
	return true, json.Unmarshal([]byte(data.String), out)
}

// findDocs loads a list of documents into a slice of T.
func findDocs[T any](ctx context.Context, s *Store, query string, args ...any) ([]T, error) {
	var raw []string
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&raw).Error; err != nil {
		return nil, err
	}
	result := make([]T, 0, len(raw))
	for _, data := range raw {
		var item T
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

// countDocs runs a COUNT query.
func (s *Store) countDocs(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Raw(query, args...).Scan(&n).Error
	return n, err
}

// deleteDoc removes one row, reporting whether it existed.
func (s *Store) deleteDoc(ctx context.Context, query string, args ...any) (bool, error) {
	tx := s.db.WithContext(ctx).Exec(query, args...)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
