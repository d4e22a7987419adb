package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/quillcms/quillcms/pkg/models"
	"github.com/quillcms/quillcms/pkg/store"
)

type pages struct {
	db *gorm.DB
}

func (p *pages) Add(ctx context.Context, page models.Page) error {
	row := pageToRow(page)
	if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	return p.syncChildren(ctx, models.Page{ID: page.ID}, page)
}

func (p *pages) All(ctx context.Context, webLogID models.WebLogID) ([]models.Page, error) {
	var rows []pageRow
	err := p.db.WithContext(ctx).
		Omit("text").
		Where("web_log_id = ?", webLogID).
		Order("LOWER(title)").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rowsToPages(rows), nil
}

func (p *pages) CountAll(ctx context.Context, webLogID models.WebLogID) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).Model(&pageRow{}).
		Where("web_log_id = ?", webLogID).Count(&n).Error
	return n, err
}

func (p *pages) CountListed(ctx context.Context, webLogID models.WebLogID) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).Model(&pageRow{}).
		Where("web_log_id = ? AND is_in_page_list = ?", webLogID, true).Count(&n).Error
	return n, err
}

func (p *pages) Delete(ctx context.Context, id models.PageID, webLogID models.WebLogID) (bool, error) {
	existing, err := p.FindByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}
	for _, child := range []any{&pageMetaRow{}, &pagePermalinkRow{}, &pageRevisionRow{}} {
		if err := p.db.WithContext(ctx).Where("page_id = ?", id).Delete(child).Error; err != nil {
			return false, err
		}
	}
	err = p.db.WithContext(ctx).Where("id = ?", id).Delete(&pageRow{}).Error
	return err == nil, err
}

func (p *pages) FindByID(ctx context.Context, id models.PageID, webLogID models.WebLogID) (*models.Page, error) {
	row, err := firstOrNil[pageRow](p.db.WithContext(ctx).
		Where("id = ? AND web_log_id = ?", id, webLogID))
	if row == nil || err != nil {
		return nil, err
	}
	page := row.toModel()
	if err := p.loadMeta(ctx, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (p *pages) FindFullByID(ctx context.Context, id models.PageID, webLogID models.WebLogID) (*models.Page, error) {
	page, err := p.FindByID(ctx, id, webLogID)
	if page == nil || err != nil {
		return nil, err
	}
	if err := p.loadHistory(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

func (p *pages) FindByPermalink(ctx context.Context, permalink models.Permalink, webLogID models.WebLogID) (*models.Page, error) {
	row, err := firstOrNil[pageRow](p.db.WithContext(ctx).
		Where("web_log_id = ? AND permalink = ?", webLogID, permalink))
	if row == nil || err != nil {
		return nil, err
	}
	page := row.toModel()
	if err := p.loadMeta(ctx, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (p *pages) FindCurrentPermalink(ctx context.Context, permalinks []models.Permalink, webLogID models.WebLogID) (*models.Permalink, error) {
	if len(permalinks) == 0 {
		return nil, nil
	}
	row, err := firstOrNil[pageRow](p.db.WithContext(ctx).
		Select("page.*").
		Joins("JOIN page_permalink ON page_permalink.page_id = page.id").
		Where("page.web_log_id = ? AND page_permalink.permalink IN ?", webLogID, permalinks))
	if row == nil || err != nil {
		return nil, err
	}
	return &row.Permalink, nil
}

func (p *pages) FindFullByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.Page, error) {
	var rows []pageRow
	err := p.db.WithContext(ctx).
		Where("web_log_id = ?", webLogID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := rowsToPages(rows)
	for i := range result {
		if err := p.loadMeta(ctx, &result[i]); err != nil {
			return nil, err
		}
		if err := p.loadHistory(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (p *pages) FindListed(ctx context.Context, webLogID models.WebLogID) ([]models.Page, error) {
	var rows []pageRow
	err := p.db.WithContext(ctx).
		Omit("text").
		Where("web_log_id = ? AND is_in_page_list = ?", webLogID, true).
		Order("LOWER(title)").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rowsToPages(rows), nil
}

func (p *pages) FindPageOfPages(ctx context.Context, webLogID models.WebLogID, pageNbr int) ([]models.Page, error) {
	if pageNbr < 1 {
		pageNbr = 1
	}
	var rows []pageRow
	err := p.db.WithContext(ctx).
		Where("web_log_id = ?", webLogID).
		Order("LOWER(title)").
		Offset((pageNbr - 1) * store.PageListPageSize).
		Limit(store.PageListPageSize + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rowsToPages(rows), nil
}

func (p *pages) Restore(ctx context.Context, restorePages []models.Page) error {
	for _, page := range restorePages {
		if err := p.Add(ctx, page); err != nil {
			return err
		}
	}
	return nil
}

func (p *pages) Update(ctx context.Context, page models.Page) error {
	existing, err := p.FindFullByID(ctx, page.ID, page.WebLogID)
	if err != nil || existing == nil {
		return err
	}
	row := pageToRow(page)
	err = p.db.WithContext(ctx).
		Where("id = ?", page.ID).
		Select("*").Omit("id").Updates(&row).Error
	if err != nil {
		return err
	}
	return p.syncChildren(ctx, *existing, page)
}

func (p *pages) UpdatePriorPermalinks(ctx context.Context, id models.PageID, webLogID models.WebLogID, permalinks []models.Permalink) (bool, error) {
	existing, err := p.FindFullByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}
	plan := store.DiffPermalinks(existing.PriorPermalinks, permalinks)
	return true, p.applyPermalinkPlan(ctx, id, plan)
}

// loadMeta populates the metadata collection, which FindByID includes.
func (p *pages) loadMeta(ctx context.Context, page *models.Page) error {
	var rows []pageMetaRow
	if err := p.db.WithContext(ctx).Where("page_id = ?", page.ID).Find(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		page.Metadata = append(page.Metadata, models.MetaItem{Name: r.Name, Value: r.Value})
	}
	return nil
}

// loadHistory populates prior permalinks and revisions, which only the full
// finders include.
func (p *pages) loadHistory(ctx context.Context, page *models.Page) error {
	var linkRows []pagePermalinkRow
	if err := p.db.WithContext(ctx).Where("page_id = ?", page.ID).Find(&linkRows).Error; err != nil {
		return err
	}
	for _, r := range linkRows {
		page.PriorPermalinks = append(page.PriorPermalinks, r.Permalink)
	}

	var revRows []pageRevisionRow
	err := p.db.WithContext(ctx).
		Where("page_id = ?", page.ID).Order("as_of DESC").Find(&revRows).Error
	if err != nil {
		return err
	}
	for _, r := range revRows {
		page.Revisions = append(page.Revisions, models.Revision{AsOf: r.AsOf, Text: r.Text})
	}
	return nil
}

// syncChildren applies the minimal child-table writes that turn the stored
// state into the desired one.
func (p *pages) syncChildren(ctx context.Context, stored, desired models.Page) error {
	metaPlan := store.DiffMetaItems(stored.Metadata, desired.Metadata)
	for _, m := range metaPlan.ToDelete {
		err := p.db.WithContext(ctx).
			Where("page_id = ? AND name = ? AND value = ?", desired.ID, m.Name, m.Value).
			Delete(&pageMetaRow{}).Error
		if err != nil {
			return err
		}
	}
	for _, m := range metaPlan.ToAdd {
		row := pageMetaRow{PageID: desired.ID, Name: m.Name, Value: m.Value}
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
			Where("page_id = ? AND as_of = ? AND revision_text = ?", desired.ID, r.AsOf, r.Text).
			Delete(&pageRevisionRow{}).Error
		if err != nil {
			return err
		}
	}
	for _, r := range revPlan.ToAdd {
		row := pageRevisionRow{PageID: desired.ID, AsOf: r.AsOf.UTC(), Text: r.Text}
		if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (p *pages) applyPermalinkPlan(ctx context.Context, id models.PageID, plan store.DiffResult[models.Permalink]) error {
	for _, link := range plan.ToDelete {
		err := p.db.WithContext(ctx).
			Where("page_id = ? AND permalink = ?", id, link).
			Delete(&pagePermalinkRow{}).Error
		if err != nil {
			return err
		}
	}
	for _, link := range plan.ToAdd {
		row := pagePermalinkRow{PageID: id, Permalink: link}
		if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func rowsToPages(rows []pageRow) []models.Page {
	result := make([]models.Page, len(rows))
	for i, r := range rows {
		result[i] = r.toModel()
	}
	return result
}
