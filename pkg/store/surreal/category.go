package surreal

import (
	"context"

	"github.com/quillcms/quillcms/pkg/models"
	"github.com/quillcms/quillcms/pkg/store"
)

type categories struct {
	s *Store
}

func (c *categories) Add(ctx context.Context, cat models.Category) error {
	return create(ctx, c.s, "category", cat)
}

func (c *categories) CountAll(ctx context.Context, webLogID models.WebLogID) (int64, error) {
	return c.s.queryCount(ctx,
		"SELECT count() FROM category WHERE web_log_id = $web_log GROUP ALL",
		map[string]any{"web_log": webLogID.RecordID()})
}

func (c *categories) CountTopLevel(ctx context.Context, webLogID models.WebLogID) (int64, error) {
	return c.s.queryCount(ctx,
		"SELECT count() FROM category WHERE web_log_id = $web_log AND parent_id IS NONE GROUP ALL",
		map[string]any{"web_log": webLogID.RecordID()})
}

func (c *categories) Delete(ctx context.Context, id models.CategoryID, webLogID models.WebLogID) (bool, error) {
	existing, err := c.FindByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}

	var parent any
	if existing.ParentID != nil {
		parent = existing.ParentID.RecordID()
	}
	err = c.s.exec(ctx,
		"UPDATE category SET parent_id = $parent WHERE web_log_id = $web_log AND parent_id = $id",
		map[string]any{"parent": parent, "web_log": webLogID.RecordID(), "id": id.RecordID()})
	if err != nil {
		return false, err
	}
	err = c.s.exec(ctx,
		"UPDATE post SET category_ids -= $id WHERE web_log_id = $web_log AND category_ids CONTAINS $id",
		map[string]any{"web_log": webLogID.RecordID(), "id": id.RecordID()})
	if err != nil {
		return false, err
	}
	return true, remove(ctx, c.s, id.RecordID())
}

func (c *categories) FindAllForView(ctx context.Context, webLogID models.WebLogID) ([]store.DisplayCategory, error) {
	cats, err := c.FindByWebLog(ctx, webLogID)
	if err != nil {
		return nil, err
	}
	return store.BuildDisplayCategories(cats, func(ids []models.CategoryID) (int, error) {
		rids := make([]any, len(ids))
		for i, catID := range ids {
			rids[i] = catID.RecordID()
		}
		n, err := c.s.queryCount(ctx,
			"SELECT count() FROM post WHERE web_log_id = $web_log AND status = 'published'"+
				" AND category_ids CONTAINSANY $cats GROUP ALL",
			map[string]any{"web_log": webLogID.RecordID(), "cats": rids})
		return int(n), err
	})
}

func (c *categories) FindByID(ctx context.Context, id models.CategoryID, webLogID models.WebLogID) (*models.Category, error) {
	cat, err := selectByID[models.Category](ctx, c.s, id.RecordID())
	if cat == nil || err != nil {
		return nil, err
	}
	if cat.WebLogID != webLogID {
		return nil, nil
	}
	return cat, nil
}

func (c *categories) FindByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.Category, error) {
	return queryRows[models.Category](ctx, c.s,
		"SELECT * FROM category WHERE web_log_id = $web_log",
		map[string]any{"web_log": webLogID.RecordID()})
}

func (c *categories) Restore(ctx context.Context, cats []models.Category) error {
	for _, cat := range cats {
		if err := c.Add(ctx, cat); err != nil {
			return err
		}
	}
	return nil
}

func (c *categories) Update(ctx context.Context, cat models.Category) error {
	existing, err := c.FindByID(ctx, cat.ID, cat.WebLogID)
	if err != nil || existing == nil {
		return err
	}
	return replace(ctx, c.s, cat.ID.RecordID(), cat)
}
