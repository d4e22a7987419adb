package surreal

import (
	"context"

	"github.com/quillcms/quillcms/pkg/models"
	"github.com/quillcms/quillcms/pkg/store"
)

type pages struct {
	s *Store
}

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
	return create(ctx, p.s, "page", page)
}

func (p *pages) All(ctx context.Context, webLogID models.WebLogID) ([]models.Page, error) {
	result, err := queryRows[models.Page](ctx, p.s,
		"SELECT * FROM page WHERE web_log_id = $web_log ORDER BY string::lowercase(title)",
		map[string]any{"web_log": webLogID.RecordID()})
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i] = pageForList(result[i])
	}
	return result, nil
}

func (p *pages) CountAll(ctx context.Context, webLogID models.WebLogID) (int64, error) {
	return p.s.queryCount(ctx,
		"SELECT count() FROM page WHERE web_log_id = $web_log GROUP ALL",
		map[string]any{"web_log": webLogID.RecordID()})
}

func (p *pages) CountListed(ctx context.Context, webLogID models.WebLogID) (int64, error) {
	return p.s.queryCount(ctx,
		"SELECT count() FROM page WHERE web_log_id = $web_log AND is_in_page_list = true GROUP ALL",
		map[string]any{"web_log": webLogID.RecordID()})
}

func (p *pages) Delete(ctx context.Context, id models.PageID, webLogID models.WebLogID) (bool, error) {
	existing, err := p.FindByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}
	return true, remove(ctx, p.s, id.RecordID())
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
	page, err := selectByID[models.Page](ctx, p.s, id.RecordID())
	if page == nil || err != nil {
		return nil, err
	}
	if page.WebLogID != webLogID {
		return nil, nil
	}
	return page, nil
}

func (p *pages) FindByPermalink(ctx context.Context, permalink models.Permalink, webLogID models.WebLogID) (*models.Page, error) {
	page, err := queryOne[models.Page](ctx, p.s,
		"SELECT * FROM page WHERE web_log_id = $web_log AND permalink = $permalink",
		map[string]any{"web_log": webLogID.RecordID(), "permalink": permalink.String()})
	if page == nil || err != nil {
		return nil, err
	}
	trimmed := pageWithoutHistory(*page)
	return &trimmed, nil
}

func (p *pages) FindCurrentPermalink(ctx context.Context, permalinks []models.Permalink, webLogID models.WebLogID) (*models.Permalink, error) {
	if len(permalinks) == 0 {
		return nil, nil
	}
	links := make([]string, len(permalinks))
	for i, link := range permalinks {
		links[i] = link.String()
	}
	type permalinkDoc struct {
		Permalink models.Permalink `json:"permalink"`
	}
	row, err := queryOne[permalinkDoc](ctx, p.s,
		"SELECT permalink FROM page WHERE web_log_id = $web_log AND prior_permalinks CONTAINSANY $links",
		map[string]any{"web_log": webLogID.RecordID(), "links": links})
	if row == nil || err != nil {
		return nil, err
	}
	return &row.Permalink, nil
}

func (p *pages) FindFullByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.Page, error) {
	return queryRows[models.Page](ctx, p.s,
		"SELECT * FROM page WHERE web_log_id = $web_log",
		map[string]any{"web_log": webLogID.RecordID()})
}

func (p *pages) FindListed(ctx context.Context, webLogID models.WebLogID) ([]models.Page, error) {
	result, err := queryRows[models.Page](ctx, p.s,
		"SELECT * FROM page WHERE web_log_id = $web_log AND is_in_page_list = true"+
			" ORDER BY string::lowercase(title)",
		map[string]any{"web_log": webLogID.RecordID()})
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
	result, err := queryRows[models.Page](ctx, p.s,
		"SELECT * FROM page WHERE web_log_id = $web_log ORDER BY string::lowercase(title)"+
			" LIMIT $limit START $start",
		map[string]any{
			"web_log": webLogID.RecordID(),
			"limit":   store.PageListPageSize + 1,
			"start":   (pageNbr - 1) * store.PageListPageSize,
		})
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
	return replace(ctx, p.s, page.ID.RecordID(), page)
}

func (p *pages) UpdatePriorPermalinks(ctx context.Context, id models.PageID, webLogID models.WebLogID, permalinks []models.Permalink) (bool, error) {
	existing, err := p.FindFullByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}
	existing.PriorPermalinks = permalinks
	return true, replace(ctx, p.s, id.RecordID(), *existing)
}
