package surreal

import (
	"context"

	"github.com/quillcms/quillcms/pkg/models"
)

type themes struct {
	s *Store
}

// adminThemeID is the built-in administration theme; All skips it.
const adminThemeID = "admin"

func (t *themes) All(ctx context.Context) ([]models.Theme, error) {
	result, err := queryRows[models.Theme](ctx, t.s,
		"SELECT * FROM theme WHERE record::id(id) != $admin ORDER BY id",
		map[string]any{"admin": adminThemeID})
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
	existing, err := t.Exists(ctx, id)
	if err != nil || !existing {
		return false, err
	}
	err = t.s.exec(ctx,
		"DELETE theme_asset WHERE string::starts_with(record::id(id), $prefix)",
		map[string]any{"prefix": string(id) + "/"})
	if err != nil {
		return false, err
	}
	return true, remove(ctx, t.s, id.RecordID())
}

func (t *themes) Exists(ctx context.Context, id models.ThemeID) (bool, error) {
	theme, err := selectByID[models.Theme](ctx, t.s, id.RecordID())
	return theme != nil, err
}

func (t *themes) FindByID(ctx context.Context, id models.ThemeID) (*models.Theme, error) {
	return selectByID[models.Theme](ctx, t.s, id.RecordID())
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
	return replace(ctx, t.s, theme.ID.RecordID(), theme)
}

type themeAssets struct {
	s *Store
}

func (a *themeAssets) All(ctx context.Context) ([]models.ThemeAsset, error) {
	result, err := queryRows[models.ThemeAsset](ctx, a.s,
		"SELECT * OMIT data FROM theme_asset ORDER BY id", nil)
	return result, err
}

func (a *themeAssets) DeleteByTheme(ctx context.Context, themeID models.ThemeID) error {
	return a.s.exec(ctx,
		"DELETE theme_asset WHERE string::starts_with(record::id(id), $prefix)",
		map[string]any{"prefix": string(themeID) + "/"})
}

func (a *themeAssets) FindByID(ctx context.Context, id models.ThemeAssetID) (*models.ThemeAsset, error) {
	return selectByID[models.ThemeAsset](ctx, a.s, id.RecordID())
}

func (a *themeAssets) FindByTheme(ctx context.Context, themeID models.ThemeID) ([]models.ThemeAsset, error) {
	return queryRows[models.ThemeAsset](ctx, a.s,
		"SELECT * OMIT data FROM theme_asset WHERE string::starts_with(record::id(id), $prefix) ORDER BY id",
		map[string]any{"prefix": string(themeID) + "/"})
}

func (a *themeAssets) FindByThemeWithData(ctx context.Context, themeID models.ThemeID) ([]models.ThemeAsset, error) {
	return queryRows[models.ThemeAsset](ctx, a.s,
		"SELECT * FROM theme_asset WHERE string::starts_with(record::id(id), $prefix) ORDER BY id",
		map[string]any{"prefix": string(themeID) + "/"})
}

func (a *themeAssets) Save(ctx context.Context, asset models.ThemeAsset) error {
	return replace(ctx, a.s, asset.ID.RecordID(), asset)
}
