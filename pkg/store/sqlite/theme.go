package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/quillcms/quillcms/pkg/models"
)

type themes struct {
	s *Store
}

// adminThemeID is the built-in administration theme; All skips it.
const adminThemeID = "admin"

func (t *themes) All(ctx context.Context) ([]models.Theme, error) {
	result, err := findDocs[models.Theme](ctx, t.s,
		"SELECT data FROM theme WHERE id <> ? ORDER BY id", adminThemeID)
	if err != nil {
		return nil, err
	}
	for i := range result {
		for j := range result[i].Templates {
			result[i].Templates[j].Text = ""
		}
	}
	return result, nil
}

func (t *themes) Delete(ctx context.Context, id models.ThemeID) (bool, error) {
	existed, err := t.s.deleteDoc(ctx, "DELETE FROM theme WHERE id = ?", string(id))
	if !existed || err != nil {
		return false, err
	}
	err = t.s.db.WithContext(ctx).
		Exec("DELETE FROM theme_asset WHERE theme_id = ?", string(id)).Error
	return err == nil, err
}

func (t *themes) Exists(ctx context.Context, id models.ThemeID) (bool, error) {
	n, err := t.s.countDocs(ctx, "SELECT COUNT(*) FROM theme WHERE id = ?", string(id))
	return n > 0, err
}

func (t *themes) FindByID(ctx context.Context, id models.ThemeID) (*models.Theme, error) {
	var theme models.Theme
	ok, err := t.s.findDoc(ctx, "SELECT data FROM theme WHERE id = ?", &theme, string(id))
	if !ok || err != nil {
		return nil, err
	}
	return &theme, nil
}

func (t *themes) FindByIDWithoutText(ctx context.Context, id models.ThemeID) (*models.Theme, error) {
	theme, err := t.FindByID(ctx, id)
	if theme == nil || err != nil {
		return nil, err
	}
	for i := range theme.Templates {
		theme.Templates[i].Text = ""
	}
	return theme, nil
}

func (t *themes) Save(ctx context.Context, theme models.Theme) error {
	return t.s.saveDoc(ctx, "theme", string(theme.ID), "", theme)
}

type themeAssets struct {
	s *Store
}

// Assets carry binary payloads, so they live in a plain relational table
// rather than a JSON document.

type assetScan struct {
	ThemeID   string
	Path      string
	UpdatedOn time.Time
	Data      []byte
}

func (a assetScan) toModel() models.ThemeAsset {
	return models.ThemeAsset{
		ID:        models.ThemeAssetID{ThemeID: models.ThemeID(a.ThemeID), Path: a.Path},
		UpdatedOn: a.UpdatedOn,
		Data:      a.Data,
	}
}

func (a *themeAssets) All(ctx context.Context) ([]models.ThemeAsset, error) {
	return a.scan(ctx,
		"SELECT theme_id, path, updated_on, NULL AS data FROM theme_asset ORDER BY theme_id, path")
}

func (a *themeAssets) DeleteByTheme(ctx context.Context, themeID models.ThemeID) error {
	return a.s.db.WithContext(ctx).
		Exec("DELETE FROM theme_asset WHERE theme_id = ?", string(themeID)).Error
}

func (a *themeAssets) FindByID(ctx context.Context, id models.ThemeAssetID) (*models.ThemeAsset, error) {
	var row assetScan
	err := a.s.db.WithContext(ctx).
		Raw("SELECT theme_id, path, updated_on, data FROM theme_asset"+
			" WHERE theme_id = ? AND path = ?", string(id.ThemeID), id.Path).
		Scan(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if row.Path == "" {
		return nil, nil
	}
	asset := row.toModel()
	return &asset, nil
}

func (a *themeAssets) FindByTheme(ctx context.Context, themeID models.ThemeID) ([]models.ThemeAsset, error) {
	return a.scan(ctx,
		"SELECT theme_id, path, updated_on, NULL AS data FROM theme_asset"+
			" WHERE theme_id = ? ORDER BY path", string(themeID))
}

func (a *themeAssets) FindByThemeWithData(ctx context.Context, themeID models.ThemeID) ([]models.ThemeAsset, error) {
	return a.scan(ctx,
		"SELECT theme_id, path, updated_on, data FROM theme_asset"+
			" WHERE theme_id = ? ORDER BY path", string(themeID))
}

func (a *themeAssets) Save(ctx context.Context, asset models.ThemeAsset) error {
	return a.s.db.WithContext(ctx).Exec(
		"INSERT INTO theme_asset (theme_id, path, updated_on, data) VALUES (?, ?, ?, ?)"+
			" ON CONFLICT (theme_id, path) DO UPDATE SET"+
			" updated_on = excluded.updated_on, data = excluded.data",
		string(asset.ID.ThemeID), asset.ID.Path, asset.UpdatedOn, asset.Data).Error
}

func (a *themeAssets) scan(ctx context.Context, query string, args ...any) ([]models.ThemeAsset, error) {
	var rows []assetScan
	if err := a.s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]models.ThemeAsset, len(rows))
	for i, r := range rows {
		result[i] = r.toModel()
	}
	return result, nil
}
