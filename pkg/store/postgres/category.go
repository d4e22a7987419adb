package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/quillcms/quillcms/pkg/models"
	"github.com/quillcms/quillcms/pkg/store"
)

type categories struct {
	db *gorm.DB
}

func (c *categories) Add(ctx context.Context, cat models.Category) error {
	row := categoryToRow(cat)
	return c.db.WithContext(ctx).Create(&row).Error
}

func (c *categories) CountAll(ctx context.Context, webLogID models.WebLogID) (int64, error) {
	var n int64
	err := c.db.WithContext(ctx).Model(&categoryRow{}).
		Where("web_log_id = ?", webLogID).Count(&n).Error
	return n, err
}

func (c *categories) CountTopLevel(ctx context.Context, webLogID models.WebLogID) (int64, error) {
	var n int64
	err := c.db.WithContext(ctx).Model(&categoryRow{}).
		Where("web_log_id = ? AND parent_id IS NULL", webLogID).Count(&n).Error
	return n, err
}

func (c *categories) Delete(ctx context.Context, id models.CategoryID, webLogID models.WebLogID) (bool, error) {
	existing, err := c.FindByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}

	// Children move up to the deleted category's parent before the row
	// itself goes, so the forest stays connected.
	err = c.db.WithContext(ctx).Model(&categoryRow{}).
		Where("web_log_id = ? AND parent_id = ?", webLogID, id).
		Update("parent_id", existing.ParentID).Error
	if err != nil {
		return false, err
	}
	if err := c.db.WithContext(ctx).
		Where("category_id = ?", id).Delete(&postCategoryRow{}).Error; err != nil {
		return false, err
	}
	err = c.db.WithContext(ctx).
		Where("id = ? AND web_log_id = ?", id, webLogID).Delete(&categoryRow{}).Error
	return err == nil, err
}

func (c *categories) FindAllForView(ctx context.Context, webLogID models.WebLogID) ([]store.DisplayCategory, error) {
	cats, err := c.FindByWebLog(ctx, webLogID)
	if err != nil {
		return nil, err
	}
	return store.BuildDisplayCategories(cats, func(ids []models.CategoryID) (int, error) {
		var n int64
		err := c.db.WithContext(ctx).Model(&postCategoryRow{}).
			Joins("JOIN post ON post.id = post_category.post_id").
			Where("post_category.category_id IN ?", ids).
			Where("post.web_log_id = ? AND post.status = ?", webLogID, models.Published).
			Distinct("post_category.post_id").
			Count(&n).Error
		return int(n), err
	})
}

func (c *categories) FindByID(ctx context.Context, id models.CategoryID, webLogID models.WebLogID) (*models.Category, error) {
	row, err := firstOrNil[categoryRow](c.db.WithContext(ctx).
		Where("id = ? AND web_log_id = ?", id, webLogID))
	if row == nil || err != nil {
		return nil, err
	}
	cat := row.toModel()
	return &cat, nil
}

func (c *categories) FindByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.Category, error) {
	var rows []categoryRow
	err := c.db.WithContext(ctx).
		Where("web_log_id = ?", webLogID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	cats := make([]models.Category, len(rows))
	for i, r := range rows {
		cats[i] = r.toModel()
	}
	return cats, nil
}

func (c *categories) Restore(ctx context.Context, cats []models.Category) error {
	if len(cats) == 0 {
		return nil
	}
	rows := make([]categoryRow, len(cats))
	for i, cat := range cats {
		rows[i] = categoryToRow(cat)
	}
	return c.db.WithContext(ctx).CreateInBatches(rows, store.RestoreBatchSize).Error
}

func (c *categories) Update(ctx context.Context, cat models.Category) error {
	existing, err := c.FindByID(ctx, cat.ID, cat.WebLogID)
	if err != nil || existing == nil {
		return err
	}
	row := categoryToRow(cat)
	return c.db.WithContext(ctx).
		Where("id = ? AND web_log_id = ?", cat.ID, cat.WebLogID).
		Select("*").Omit("id").Updates(&row).Error
}
