package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/quillcms/quillcms/pkg/models"
	"github.com/quillcms/quillcms/pkg/store"
)

type posts struct {
	db *gorm.DB
}

func (p *posts) Add(ctx context.Context, post models.Post) error {
	row := postToRow(post)
	if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	return p.syncChildren(ctx, models.Post{ID: post.ID}, post)
}

func (p *posts) CountByStatus(ctx context.Context, status models.PostStatus, webLogID models.WebLogID) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).Model(&postRow{}).
		Where("web_log_id = ? AND status = ?", webLogID, status).Count(&n).Error
	return n, err
}

func (p *posts) Delete(ctx context.Context, id models.PostID, webLogID models.WebLogID) (bool, error) {
	existing, err := p.FindByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}
	children := []any{
		&postCategoryRow{}, &postTagRow{}, &postMetaRow{},
		&postPermalinkRow{}, &postRevisionRow{},
	}
	for _, child := range children {
		if err := p.db.WithContext(ctx).Where("post_id = ?", id).Delete(child).Error; err != nil {
			return false, err
		}
	}
	err = p.db.WithContext(ctx).Where("id = ?", id).Delete(&postRow{}).Error
	return err == nil, err
}

func (p *posts) FindByID(ctx context.Context, id models.PostID, webLogID models.WebLogID) (*models.Post, error) {
	row, err := firstOrNil[postRow](p.db.WithContext(ctx).
		Where("id = ? AND web_log_id = ?", id, webLogID))
	if row == nil || err != nil {
		return nil, err
	}
	post := row.toModel()
	if err := p.loadBasicChildren(ctx, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (p *posts) FindFullByID(ctx context.Context, id models.PostID, webLogID models.WebLogID) (*models.Post, error) {
	post, err := p.FindByID(ctx, id, webLogID)
	if post == nil || err != nil {
		return nil, err
	}
	if err := p.loadHistory(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (p *posts) FindByPermalink(ctx context.Context, permalink models.Permalink, webLogID models.WebLogID) (*models.Post, error) {
	row, err := firstOrNil[postRow](p.db.WithContext(ctx).
		Where("web_log_id = ? AND permalink = ?", webLogID, permalink))
	if row == nil || err != nil {
		return nil, err
	}
	post := row.toModel()
	if err := p.loadBasicChildren(ctx, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (p *posts) FindCurrentPermalink(ctx context.Context, permalinks []models.Permalink, webLogID models.WebLogID) (*models.Permalink, error) {
	if len(permalinks) == 0 {
		return nil, nil
	}
	row, err := firstOrNil[postRow](p.db.WithContext(ctx).
		Select("post.*").
		Joins("JOIN post_permalink ON post_permalink.post_id = post.id").
		Where("post.web_log_id = ? AND post_permalink.permalink IN ?", webLogID, permalinks))
	if row == nil || err != nil {
		return nil, err
	}
	return &row.Permalink, nil
}

func (p *posts) FindFullByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.Post, error) {
	var rows []postRow
	err := p.db.WithContext(ctx).
		Where("web_log_id = ?", webLogID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]models.Post, len(rows))
	for i, r := range rows {
		result[i] = r.toModel()
		if err := p.loadBasicChildren(ctx, &result[i]); err != nil {
			return nil, err
		}
		if err := p.loadHistory(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (p *posts) FindPageOfCategorizedPosts(ctx context.Context, webLogID models.WebLogID, categoryIDs []models.CategoryID, pageNbr, postsPerPage int) ([]models.Post, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	tx := p.db.WithContext(ctx).
		Select("DISTINCT post.*").
		Joins("JOIN post_category ON post_category.post_id = post.id").
		Where("post.web_log_id = ? AND post.status = ?", webLogID, models.Published).
		Where("post_category.category_id IN ?", categoryIDs).
		Order("post.published_on DESC")
	return p.findPage(ctx, tx, pageNbr, postsPerPage)
}

func (p *posts) FindPageOfPosts(ctx context.Context, webLogID models.WebLogID, pageNbr, postsPerPage int) ([]models.Post, error) {
	// Drafts have no publish date; they sort ahead of everything, newest
	// update first.
	tx := p.db.WithContext(ctx).
		Where("post.web_log_id = ?", webLogID).
		Order("post.published_on DESC NULLS FIRST").
		Order("post.updated_on DESC")
	return p.findPage(ctx, tx, pageNbr, postsPerPage)
}

func (p *posts) FindPageOfPublishedPosts(ctx context.Context, webLogID models.WebLogID, pageNbr, postsPerPage int) ([]models.Post, error) {
	tx := p.db.WithContext(ctx).
		Where("post.web_log_id = ? AND post.status = ?", webLogID, models.Published).
		Order("post.published_on DESC")
	return p.findPage(ctx, tx, pageNbr, postsPerPage)
}

func (p *posts) FindPageOfTaggedPosts(ctx context.Context, webLogID models.WebLogID, tag string, pageNbr, postsPerPage int) ([]models.Post, error) {
	tx := p.db.WithContext(ctx).
		Select("post.*").
		Joins("JOIN post_tag ON post_tag.post_id = post.id").
		Where("post.web_log_id = ? AND post.status = ?", webLogID, models.Published).
		Where("post_tag.tag = ?", tag).
		Order("post.published_on DESC")
	return p.findPage(ctx, tx, pageNbr, postsPerPage)
}

func (p *posts) FindSurroundingPosts(ctx context.Context, webLogID models.WebLogID, publishedOn time.Time) (older, newer *models.Post, err error) {
	marker := publishedOn.UTC()
	olderRow, err := firstOrNil[postRow](p.db.WithContext(ctx).
		Where("web_log_id = ? AND status = ? AND published_on < ?", webLogID, models.Published, marker).
		Order("published_on DESC"))
	if err != nil {
		return nil, nil, err
	}
	newerRow, err := firstOrNil[postRow](p.db.WithContext(ctx).
		Where("web_log_id = ? AND status = ? AND published_on > ?", webLogID, models.Published, marker).
		Order("published_on ASC"))
	if err != nil {
		return nil, nil, err
	}
	if olderRow != nil {
		m := olderRow.toModel()
		if err := p.loadBasicChildren(ctx, &m); err != nil {
			return nil, nil, err
		}
		older = &m
	}
	if newerRow != nil {
		m := newerRow.toModel()
		if err := p.loadBasicChildren(ctx, &m); err != nil {
			return nil, nil, err
		}
		newer = &m
	}
	return older, newer, nil
}

func (p *posts) Restore(ctx context.Context, restorePosts []models.Post) error {
	for _, post := range restorePosts {
		if err := p.Add(ctx, post); err != nil {
			return err
		}
	}
	return nil
}

func (p *posts) Update(ctx context.Context, post models.Post) error {
	existing, err := p.FindFullByID(ctx, post.ID, post.WebLogID)
	if err != nil || existing == nil {
		return err
	}
	row := postToRow(post)
	err = p.db.WithContext(ctx).
		Where("id = ?", post.ID).
		Select("*").Omit("id").Updates(&row).Error
	if err != nil {
		return err
	}
	return p.syncChildren(ctx, *existing, post)
}

func (p *posts) UpdatePriorPermalinks(ctx context.Context, id models.PostID, webLogID models.WebLogID, permalinks []models.Permalink) (bool, error) {
	existing, err := p.FindFullByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}
	plan := store.DiffPermalinks(existing.PriorPermalinks, permalinks)
	return true, p.applyPermalinkPlan(ctx, id, plan)
}

// findPage runs a prepared, ordered query with the pageSize+1 convention.
func (p *posts) findPage(ctx context.Context, tx *gorm.DB, pageNbr, postsPerPage int) ([]models.Post, error) {
	if pageNbr < 1 {
		pageNbr = 1
	}
	var rows []postRow
	err := tx.
		Offset((pageNbr - 1) * postsPerPage).
		Limit(postsPerPage + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]models.Post, len(rows))
	for i, r := range rows {
		result[i] = r.toModel()
		if err := p.loadBasicChildren(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// loadBasicChildren populates categories, tags, and metadata; every finder
// except the history-bearing ones includes these.
func (p *posts) loadBasicChildren(ctx context.Context, post *models.Post) error {
	var catRows []postCategoryRow
	if err := p.db.WithContext(ctx).Where("post_id = ?", post.ID).Find(&catRows).Error; err != nil {
		return err
	}
	for _, r := range catRows {
		post.CategoryIDs = append(post.CategoryIDs, r.CategoryID)
	}

	var tagRows []postTagRow
	err := p.db.WithContext(ctx).
		Where("post_id = ?", post.ID).Order("tag").Find(&tagRows).Error
	if err != nil {
		return err
	}
	for _, r := range tagRows {
		post.Tags = append(post.Tags, r.Tag)
	}

	var metaRows []postMetaRow
	if err := p.db.WithContext(ctx).Where("post_id = ?", post.ID).Find(&metaRows).Error; err != nil {
		return err
	}
	for _, r := range metaRows {
		post.Metadata = append(post.Metadata, models.MetaItem{Name: r.Name, Value: r.Value})
	}
	return nil
}

func (p *posts) loadHistory(ctx context.Context, post *models.Post) error {
	var linkRows []postPermalinkRow
	if err := p.db.WithContext(ctx).Where("post_id = ?", post.ID).Find(&linkRows).Error; err != nil {
		return err
	}
	for _, r := range linkRows {
		post.PriorPermalinks = append(post.PriorPermalinks, r.Permalink)
	}

	var revRows []postRevisionRow
	err := p.db.WithContext(ctx).
		Where("post_id = ?", post.ID).Order("as_of DESC").Find(&revRows).Error
	if err != nil {
		return err
	}
	for _, r := range revRows {
		post.Revisions = append(post.Revisions, models.Revision{AsOf: r.AsOf, Text: r.Text})
	}
	return nil
}

func (p *posts) syncChildren(ctx context.Context, stored, desired models.Post) error {
	catPlan := store.DiffCategoryIDs(stored.CategoryIDs, desired.CategoryIDs)
	for _, id := range catPlan.ToDelete {
		err := p.db.WithContext(ctx).
			Where("post_id = ? AND category_id = ?", desired.ID, id).
			Delete(&postCategoryRow{}).Error
		if err != nil {
			return err
		}
	}
	for _, id := range catPlan.ToAdd {
		row := postCategoryRow{PostID: desired.ID, CategoryID: id}
		if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
			return err
		}
	}

	tagPlan := store.DiffTags(stored.Tags, desired.Tags)
	for _, tag := range tagPlan.ToDelete {
		err := p.db.WithContext(ctx).
			Where("post_id = ? AND tag = ?", desired.ID, tag).
			Delete(&postTagRow{}).Error
		if err != nil {
			return err
		}
	}
	for _, tag := range tagPlan.ToAdd {
		row := postTagRow{PostID: desired.ID, Tag: tag}
		if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
			return err
		}
	}

	metaPlan := store.DiffMetaItems(stored.Metadata, desired.Metadata)
	for _, m := range metaPlan.ToDelete {
		err := p.db.WithContext(ctx).
			Where("post_id = ? AND name = ? AND value = ?", desired.ID, m.Name, m.Value).
			Delete(&postMetaRow{}).Error
		if err != nil {
			return err
		}
	}
	for _, m := range metaPlan.ToAdd {
		row := postMetaRow{PostID: desired.ID, Name: m.Name, Value: m.Value}
		if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
			return err
		}
	}

	if err := p.applyPermalinkPlan(ctx, desired.ID,
		store.DiffPermalinks(stored.PriorPermalinks, desired.PriorPermalinks)); err != nil {
		return err
	}

	revPlan := store.DiffRevisions(stored.Revisions, desired.Revisions)
	for _, r := range revPlan.ToDelete {
		err := p.db.WithContext(ctx).
			Where("post_id = ? AND as_of = ? AND revision_text = ?", desired.ID, r.AsOf, r.Text).
			Delete(&postRevisionRow{}).Error
		if err != nil {
			return err
		}
	}
	for _, r := range revPlan.ToAdd {
		row := postRevisionRow{PostID: desired.ID, AsOf: r.AsOf.UTC(), Text: r.Text}
		if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (p *posts) applyPermalinkPlan(ctx context.Context, id models.PostID, plan store.DiffResult[models.Permalink]) error {
	for _, link := range plan.ToDelete {
		err := p.db.WithContext(ctx).
			Where("post_id = ? AND permalink = ?", id, link).
			Delete(&postPermalinkRow{}).Error
		if err != nil {
			return err
		}
	}
	for _, link := range plan.ToAdd {
		row := postPermalinkRow{PostID: id, Permalink: link}
		if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
