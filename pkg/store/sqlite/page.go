package sqlite

import (
	"context"
	"fmt"

	"github.com/quillcms/quillcms/pkg/models"
	"github.com/quillcms/quillcms/pkg/store"
)

type pages struct {
	s *Store
}

// Shapes the finders return. The document holds everything; the narrower
// finders strip what the contract omits so all backends agree.

func pageWithoutHistory(p models.Page) models.Page {
	p.PriorPermalinks = nil
	p.Revisions = nil
	return p
}

func pageForList(p models.Page) models.Page {
	p = pageWithoutHistory(p)
	p.Text = ""
	p.Metadata = nil
	return p
}

func (p *pages) Add(ctx context.Context, page models.Page) error {
	page = pageUTC(page)
	return p.s.saveDoc(ctx, "page", page.ID.String(), page.WebLogID.String(), page)
}

func (p *pages) All(ctx context.Context, webLogID models.WebLogID) ([]models.Page, error) {
	result, err := findDocs[models.Page](ctx, p.s,
		"SELECT data FROM page WHERE web_log_id = ?"+
			" ORDER BY LOWER(json_extract(data, '$.title'))", webLogID.String())
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i] = pageForList(result[i])
	}
	return result, nil
}

func (p *pages) CountAll(ctx context.Context, webLogID models.WebLogID) (int64, error) {
	return p.s.countDocs(ctx,
		"SELECT COUNT(*) FROM page WHERE web_log_id = ?", webLogID.String())
}

func (p *pages) CountListed(ctx context.Context, webLogID models.WebLogID) (int64, error) {
	return p.s.countDocs(ctx,
		"SELECT COUNT(*) FROM page WHERE web_log_id = ?"+
			" AND json_extract(data, '$.is_in_page_list')", webLogID.String())
}

func (p *pages) Delete(ctx context.Context, id models.PageID, webLogID models.WebLogID) (bool, error) {
	return p.s.deleteDoc(ctx,
		"DELETE FROM page WHERE id = ? AND web_log_id = ?",
		id.String(), webLogID.String())
}

func (p *pages) FindByID(ctx context.Context, id models.PageID, webLogID models.WebLogID) (*models.Page, error) {
	page, err := p.FindFullByID(ctx, id, webLogID)
	if page == nil || err != nil {
		return nil, err
	}
	trimmed := pageWithoutHistory(*page)
	return &trimmed, nil
}

func (p *pages) FindFullByID(ctx context.Context, id models.PageID, webLogID models.WebLogID) (*models.Page, error) {
	var page models.Page
	ok, err := p.s.findDoc(ctx,
		"SELECT data FROM page WHERE id = ? AND web_log_id = ?",
		&page, id.String(), webLogID.String())
	if !ok || err != nil {
		return nil, err
	}
	return &page, nil
}

func (p *pages) FindByPermalink(ctx context.Context, permalink models.Permalink, webLogID models.WebLogID) (*models.Page, error) {
	var page models.Page
	ok, err := p.s.findDoc(ctx,
		"SELECT data FROM page WHERE web_log_id = ?"+
			" AND json_extract(data, '$.permalink') = ?",
		&page, webLogID.String(), permalink.String())
	if !ok || err != nil {
		return nil, err
	}
	trimmed := pageWithoutHistory(page)
	return &trimmed, nil
}

func (p *pages) FindCurrentPermalink(ctx context.Context, permalinks []models.Permalink, webLogID models.WebLogID) (*models.Permalink, error) {
	if len(permalinks) == 0 {
		return nil, nil
	}
	args := []any{webLogID.String()}
	placeholders := ""
	for i, link := range permalinks {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args = append(args, link.String())
	}
	var page models.Page
	ok, err := p.s.findDoc(ctx,
		fmt.Sprintf("SELECT page.data FROM page, json_each(page.data, '$.prior_permalinks') AS prior"+
			" WHERE page.web_log_id = ? AND prior.value IN (%s)", placeholders),
		&page, args...)
	if !ok || err != nil {
		return nil, err
	}
	return &page.Permalink, nil
}

func (p *pages) FindFullByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.Page, error) {
	return findDocs[models.Page](ctx, p.s,
		"SELECT data FROM page WHERE web_log_id = ?", webLogID.String())
}

func (p *pages) FindListed(ctx context.Context, webLogID models.WebLogID) ([]models.Page, error) {
	result, err := findDocs[models.Page](ctx, p.s,
		"SELECT data FROM page WHERE web_log_id = ?"+
			" AND json_extract(data, '$.is_in_page_list')"+
			" ORDER BY LOWER(json_extract(data, '$.title'))", webLogID.String())
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i] = pageForList(result[i])
	}
	return result, nil
}

func (p *pages) FindPageOfPages(ctx context.Context, webLogID models.WebLogID, pageNbr int) ([]models.Page, error) {
	if pageNbr < 1 {
		pageNbr = 1
	}
	result, err := findDocs[models.Page](ctx, p.s,
		"SELECT data FROM page WHERE web_log_id = ?"+
			" ORDER BY LOWER(json_extract(data, '$.title'))"+
			" LIMIT ? OFFSET ?",
		webLogID.String(), store.PageListPageSize+1, (pageNbr-1)*store.PageListPageSize)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i] = pageWithoutHistory(result[i])
		result[i].Metadata = nil
	}
	return result, nil
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
	page = pageUTC(page)
	return p.s.saveDoc(ctx, "page", page.ID.String(), page.WebLogID.String(), page)
}

func (p *pages) UpdatePriorPermalinks(ctx context.Context, id models.PageID, webLogID models.WebLogID, permalinks []models.Permalink) (bool, error) {
	existing, err := p.FindFullByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}
	existing.PriorPermalinks = permalinks
	return true, p.s.saveDoc(ctx, "page", id.String(), webLogID.String(), *existing)
}
