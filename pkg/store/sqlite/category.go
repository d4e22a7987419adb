package sqlite

import (
	"context"

	"github.com/quillcms/quillcms/pkg/models"
	"github.com/quillcms/quillcms/pkg/store"
)

type categories struct {
	s *Store
}

func (c *categories) Add(ctx context.Context, cat models.Category) error {
	return c.s.saveDoc(ctx, "category", cat.ID.String(), cat.WebLogID.String(), cat)
}

func (c *categories) CountAll(ctx context.Context, webLogID models.WebLogID) (int64, error) {
	return c.s.countDocs(ctx,
		"SELECT COUNT(*) FROM category WHERE web_log_id = ?", webLogID.String())
}

func (c *categories) CountTopLevel(ctx context.Context, webLogID models.WebLogID) (int64, error) {
	return c.s.countDocs(ctx,
		"SELECT COUNT(*) FROM category WHERE web_log_id = ?"+
			" AND json_extract(data, '$.parent_id') IS NULL", webLogID.String())
}

func (c *categories) Delete(ctx context.Context, id models.CategoryID, webLogID models.WebLogID) (bool, error) {
	existing, err := c.FindByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}

	// Reparent children, then unlink the category from any posts carrying
	// it, then drop the document.
	children, err := findDocs[models.Category](ctx, c.s,
		"SELECT data FROM category WHERE web_log_id = ?"+
			" AND json_extract(data, '$.parent_id') = ?",
		webLogID.String(), id.String())
	if err != nil {
		return false, err
	}
	for _, child := range children {
		child.ParentID = existing.ParentID
		if err := c.s.saveDoc(ctx, "category", child.ID.String(), webLogID.String(), child); err != nil {
			return false, err
		}
	}

	tagged, err := findDocs[models.Post](ctx, c.s,
		"SELECT post.data FROM post, json_each(post.data, '$.category_ids') AS cat"+
			" WHERE post.web_log_id = ? AND cat.value = ?",
		webLogID.String(), id.String())
	if err != nil {
		return false, err
	}
	for _, post := range tagged {
		kept := post.CategoryIDs[:0]
		for _, catID := range post.CategoryIDs {
			if catID != id {
				kept = append(kept, catID)
			}
		}
		post.CategoryIDs = kept
		if err := c.s.saveDoc(ctx, "post", post.ID.String(), webLogID.String(), post); err != nil {
			return false, err
		}
	}

	return c.s.deleteDoc(ctx,
		"DELETE FROM category WHERE id = ? AND web_log_id = ?",
		id.String(), webLogID.String())
}

func (c *categories) FindAllForView(ctx context.Context, webLogID models.WebLogID) ([]store.DisplayCategory, error) {
	cats, err := c.FindByWebLog(ctx, webLogID)
	if err != nil {
		return nil, err
	}
	return store.BuildDisplayCategories(cats, func(ids []models.CategoryID) (int, error) {
		args := []any{webLogID.String()}
		placeholders := ""
		for i, catID := range ids {
			if i > 0 {
				placeholders += ", "
			}
			placeholders += "?"
			args = append(args, catID.String())
		}
		n, err := c.s.countDocs(ctx,
			"SELECT COUNT(DISTINCT post.id) FROM post, json_each(post.data, '$.category_ids') AS cat"+
				" WHERE post.web_log_id = ? AND json_extract(post.data, '$.status') = 'published'"+
				" AND cat.value IN ("+placeholders+")", args...)
		return int(n), err
	})
}

func (c *categories) FindByID(ctx context.Context, id models.CategoryID, webLogID models.WebLogID) (*models.Category, error) {
	var cat models.Category
	ok, err := c.s.findDoc(ctx,
		"SELECT data FROM category WHERE id = ? AND web_log_id = ?",
		&cat, id.String(), webLogID.String())
	if !ok || err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *categories) FindByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.Category, error) {
	return findDocs[models.Category](ctx, c.s,
		"SELECT data FROM category WHERE web_log_id = ?", webLogID.String())
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
	return c.s.saveDoc(ctx, "category", cat.ID.String(), cat.WebLogID.String(), cat)
}
