package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quillcms/quillcms/pkg/models"
	"github.com/quillcms/quillcms/pkg/store"
)

type themes struct {
	db *gorm.DB
}

// adminThemeID is the built-in administration theme; All skips it.
const adminThemeID = models.ThemeID("admin")

func (t *themes) All(ctx context.Context) ([]models.Theme, error) {
	var rows []themeRow
	err := t.db.WithContext(ctx).
		Where("id <> ?", adminThemeID).Order("id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]models.Theme, len(rows))
	for i, r := range rows {
		result[i] = models.Theme{ID: r.ID, Name: r.Name, Version: r.Version}
		if err := t.loadTemplates(ctx, &result[i], false); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (t *themes) Delete(ctx context.Context, id models.ThemeID) (bool, error) {
	existing, err := t.Exists(ctx, id)
	if err != nil || !existing {
		return false, err
	}
	if err := t.db.WithContext(ctx).Where("theme_id = ?", id).Delete(&themeAssetRow{}).Error; err != nil {
		return false, err
	}
	if err := t.db.WithContext(ctx).Where("theme_id = ?", id).Delete(&themeTemplateRow{}).Error; err != nil {
		return false, err
	}
	err = t.db.WithContext(ctx).Where("id = ?", id).Delete(&themeRow{}).Error
	return err == nil, err
}

func (t *themes) Exists(ctx context.Context, id models.ThemeID) (bool, error) {
	var n int64
	err := t.db.WithContext(ctx).Model(&themeRow{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (t *themes) FindByID(ctx context.Context, id models.ThemeID) (*models.Theme, error) {
	return t.find(ctx, id, true)
}

func (t *themes) FindByIDWithoutText(ctx context.Context, id models.ThemeID) (*models.Theme, error) {
	return t.find(ctx, id, false)
}

func (t *themes) Save(ctx context.Context, theme models.Theme) error {
	row := themeRow{ID: theme.ID, Name: theme.Name, Version: theme.Version}
	err := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&row).Error
	if err != nil {
		return err
	}
	// Template sets are small; replacing wholesale beats diffing here.
	if err := t.db.WithContext(ctx).Where("theme_id = ?", theme.ID).Delete(&themeTemplateRow{}).Error; err != nil {
		return err
	}
	for _, tpl := range theme.Templates {
		tplRow := themeTemplateRow{ThemeID: theme.ID, Name: tpl.Name, Text: tpl.Text}
		if err := t.db.WithContext(ctx).Create(&tplRow).Error; err != nil {
			return err
		}
	}
	return nil
}

func (t *themes) find(ctx context.Context, id models.ThemeID, withText bool) (*models.Theme, error) {
	row, err := firstOrNil[themeRow](t.db.WithContext(ctx).Where("id = ?", id))
	if row == nil || err != nil {
		return nil, err
	}
	theme := models.Theme{ID: row.ID, Name: row.Name, Version: row.Version}
	if err := t.loadTemplates(ctx, &theme, withText); err != nil {
		return nil, err
	}
	return &theme, nil
}

func (t *themes) loadTemplates(ctx context.Context, theme *models.Theme, withText bool) error {
	tx := t.db.WithContext(ctx).Where("theme_id = ?", theme.ID).Order("name")
	if !withText {
		tx = tx.Omit("template_text")
	}
	var rows []themeTemplateRow
	if err := tx.Find(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		theme.Templates = append(theme.Templates, models.ThemeTemplate{Name: r.Name, Text: r.Text})
	}
	return nil
}

type themeAssets struct {
	db *gorm.DB
}

func (a *themeAssets) All(ctx context.Context) ([]models.ThemeAsset, error) {
	var rows []themeAssetRow
	err := a.db.WithContext(ctx).Omit("data").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rowsToAssets(rows), nil
}

func (a *themeAssets) DeleteByTheme(ctx context.Context, themeID models.ThemeID) error {
	return a.db.WithContext(ctx).Where("theme_id = ?", themeID).Delete(&themeAssetRow{}).Error
}

func (a *themeAssets) FindByID(ctx context.Context, id models.ThemeAssetID) (*models.ThemeAsset, error) {
	row, err := firstOrNil[themeAssetRow](a.db.WithContext(ctx).
		Where("theme_id = ? AND path = ?", id.ThemeID, id.Path))
	if row == nil || err != nil {
		return nil, err
	}
	asset := row.toModel()
	return &asset, nil
}

func (a *themeAssets) FindByTheme(ctx context.Context, themeID models.ThemeID) ([]models.ThemeAsset, error) {
	var rows []themeAssetRow
	err := a.db.WithContext(ctx).
		Omit("data").Where("theme_id = ?", themeID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rowsToAssets(rows), nil
}

func (a *themeAssets) FindByThemeWithData(ctx context.Context, themeID models.ThemeID) ([]models.ThemeAsset, error) {
	var rows []themeAssetRow
	err := a.db.WithContext(ctx).Where("theme_id = ?", themeID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rowsToAssets(rows), nil
}

func (a *themeAssets) Save(ctx context.Context, asset models.ThemeAsset) error {
	row := themeAssetToRow(asset)
	return a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "theme_id"}, {Name: "path"}},
			UpdateAll: true,
		}).Create(&row).Error
}

func rowsToAssets(rows []themeAssetRow) []models.ThemeAsset {
	result := make([]models.ThemeAsset, len(rows))
	for i, r := range rows {
		result[i] = r.toModel()
	}
	return result
}

var _ store.ThemeStore = (*themes)(nil)
var _ store.ThemeAssetStore = (*themeAssets)(nil)
