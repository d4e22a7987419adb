// Package postgres implements the data access contract on PostgreSQL with a
// fully normalized schema: one table per entity and one table per child
// collection. Child collections are kept in sync with the differ from
// pkg/store, so an update writes only the rows that actually changed.
//
// Individual operations are single statements or short statement sequences;
// there is no cross-operation transaction. The contract's weak-consistency
// rules apply here exactly as they do to the document backends.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/quillcms/quillcms/pkg/store"
)

// Store implements the umbrella contract on PostgreSQL via GORM.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// New connects to the PostgreSQL instance at dsn. The connection is verified
// lazily; StartUp is the first call that talks to the server.
func New(dsn string, log zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
	}
	return &Store{db: db, log: log.With().Str("store", "postgres").Logger()}, nil
}

// NewFromDB wraps an existing GORM connection; tests use this to run the
// adapter against other SQL backends.
func NewFromDB(db *gorm.DB, log zerolog.Logger) *Store {
	return &Store{db: db, log: log}
}

func (s *Store) Categories() store.CategoryStore     { return &categories{db: s.db} }
func (s *Store) Pages() store.PageStore              { return &pages{db: s.db} }
func (s *Store) Posts() store.PostStore              { return &posts{db: s.db} }
func (s *Store) TagMaps() store.TagMapStore          { return &tagMaps{db: s.db} }
func (s *Store) Themes() store.ThemeStore            { return &themes{db: s.db} }
func (s *Store) ThemeAssets() store.ThemeAssetStore  { return &themeAssets{db: s.db} }
func (s *Store) Uploads() store.UploadStore          { return &uploads{db: s.db} }
func (s *Store) WebLogs() store.WebLogStore          { return &webLogs{db: s.db} }
func (s *Store) WebLogUsers() store.WebLogUserStore  { return &webLogUsers{db: s.db} }

// StartUp creates any missing tables, columns, and indexes, then brings the
// schema version marker up to date. AutoMigrate only adds schema elements;
// the migration steps handle the removals older installations need.
func (s *Store) StartUp(ctx context.Context) error {
	s.log.Debug().Msg("ensuring schema")
	err := s.db.WithContext(ctx).AutoMigrate(
		&webLogRow{},
		&categoryRow{},
		&pageRow{},
		&pageMetaRow{},
		&pagePermalinkRow{},
		&pageRevisionRow{},
		&postRow{},
		&postCategoryRow{},
		&postTagRow{},
		&postMetaRow{},
		&postPermalinkRow{},
		&postRevisionRow{},
		&tagMapRow{},
		&themeRow{},
		&themeTemplateRow{},
		&themeAssetRow{},
		&uploadRow{},
		&webLogUserRow{},
		&versionRow{},
	)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}

	m := &store.Migrator{
		Log:        s.log,
		GetVersion: s.getVersion,
		SetVersion: s.setVersion,
		Steps:      s.migrationSteps(),
	}
	return m.Run(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) getVersion(ctx context.Context) (string, error) {
	var row versionRow
	err := s.db.WithContext(ctx).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.Version, nil
}

func (s *Store) setVersion(ctx context.Context, v string) error {
	return s.db.WithContext(ctx).
		Where("id = ?", 1).
		Assign(versionRow{ID: 1, Version: v}).
		FirstOrCreate(&versionRow{}).Error
}

// migrationSteps holds the relational schema work per version. AutoMigrate
// already added anything new before these run, so the steps only remove what
// the old layout kept; versions absent here changed document-side structure
// only. Every step checks before it drops, so re-running is harmless.
func (s *Store) migrationSteps() map[string]func(ctx context.Context) error {
	return map[string]func(ctx context.Context) error{
		// Prior permalinks and revisions moved out of JSON columns on the
		// page and post tables into their own child tables.
		"v2-rc2": func(ctx context.Context) error {
			m := s.db.WithContext(ctx).Migrator()
			for _, col := range []string{"prior_permalinks", "revisions"} {
				if m.HasColumn(&pageRow{}, col) {
					if err := m.DropColumn(&pageRow{}, col); err != nil {
						return err
					}
				}
				if m.HasColumn(&postRow{}, col) {
					if err := m.DropColumn(&postRow{}, col); err != nil {
						return err
					}
				}
			}
			return nil
		},
		// Episode metadata collapsed from discrete columns into one JSON
		// column; the legacy columns go away once the data is carried over.
		"v2.1": func(ctx context.Context) error {
			m := s.db.WithContext(ctx).Migrator()
			for _, col := range []string{"episode_media", "episode_length", "episode_duration", "episode_media_type"} {
				if m.HasColumn(&postRow{}, col) {
					if err := m.DropColumn(&postRow{}, col); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}

// firstOrNil runs First on the prepared query and normalizes GORM's
// missing-record error to the contract's nil result convention.
func firstOrNil[R any](tx *gorm.DB) (*R, error) {
	var row R
	if err := tx.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
