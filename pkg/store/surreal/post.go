package surreal

import (
	"context"
	"time"

	"github.com/quillcms/quillcms/pkg/models"
)

type posts struct {
	s *Store
}

func postWithoutHistory(p models.Post) models.Post {
	p.PriorPermalinks = nil
	p.Revisions = nil
	return p
}

func (p *posts) Add(ctx context.Context, post models.Post) error {
	return create(ctx, p.s, "post", post)
}

func (p *posts) CountByStatus(ctx context.Context, status models.PostStatus, webLogID models.WebLogID) (int64, error) {
	return p.s.queryCount(ctx,
		"SELECT count() FROM post WHERE web_log_id = $web_log AND status = $status GROUP ALL",
		map[string]any{"web_log": webLogID.RecordID(), "status": string(status)})
}

func (p *posts) Delete(ctx context.Context, id models.PostID, webLogID models.WebLogID) (bool, error) {
	existing, err := p.FindByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}
	return true, remove(ctx, p.s, id.RecordID())
}

func (p *posts) FindByID(ctx context.Context, id models.PostID, webLogID models.WebLogID) (*models.Post, error) {
	post, err := p.FindFullByID(ctx, id, webLogID)
	if post == nil || err != nil {
		return nil, err
	}
	trimmed := postWithoutHistory(*post)
	return &trimmed, nil
}

func (p *posts) FindFullByID(ctx context.Context, id models.PostID, webLogID models.WebLogID) (*models.Post, error) {
	post, err := selectByID[models.Post](ctx, p.s, id.RecordID())
	if post == nil || err != nil {
		return nil, err
	}
	if post.WebLogID != webLogID {
		return nil, nil
	}
	return post, nil
}

func (p *posts) FindByPermalink(ctx context.Context, permalink models.Permalink, webLogID models.WebLogID) (*models.Post, error) {
	post, err := queryOne[models.Post](ctx, p.s,
		"SELECT * FROM post WHERE web_log_id = $web_log AND permalink = $permalink",
		map[string]any{"web_log": webLogID.RecordID(), "permalink": permalink.String()})
	if post == nil || err != nil {
		return nil, err
	}
	trimmed := postWithoutHistory(*post)
	return &trimmed, nil
}

func (p *posts) FindCurrentPermalink(ctx context.Context, permalinks []models.Permalink, webLogID models.WebLogID) (*models.Permalink, error) {
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
		"SELECT permalink FROM post WHERE web_log_id = $web_log AND prior_permalinks CONTAINSANY $links",
		map[string]any{"web_log": webLogID.RecordID(), "links": links})
	if row == nil || err != nil {
		return nil, err
	}
	return &row.Permalink, nil
}

func (p *posts) FindFullByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.Post, error) {
	return queryRows[models.Post](ctx, p.s,
		"SELECT * FROM post WHERE web_log_id = $web_log",
		map[string]any{"web_log": webLogID.RecordID()})
}

func (p *posts) FindPageOfCategorizedPosts(ctx context.Context, webLogID models.WebLogID, categoryIDs []models.CategoryID, pageNbr, postsPerPage int) ([]models.Post, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	rids := make([]any, len(categoryIDs))
	for i, id := range categoryIDs {
		rids[i] = id.RecordID()
	}
	return p.findPage(ctx,
		"SELECT * FROM post WHERE web_log_id = $web_log AND status = 'published'"+
			" AND category_ids CONTAINSANY $cats ORDER BY published_on DESC",
		map[string]any{"web_log": webLogID.RecordID(), "cats": rids},
		pageNbr, postsPerPage)
}

func (p *posts) FindPageOfPosts(ctx context.Context, webLogID models.WebLogID, pageNbr, postsPerPage int) ([]models.Post, error) {
	// Drafts sort ahead of published posts: they have no published_on, and
	// 'draft' < 'published' gives the same grouping the relational NULLS
	// FIRST ordering does.
	return p.findPage(ctx,
		"SELECT * FROM post WHERE web_log_id = $web_log"+
			" ORDER BY status ASC, published_on DESC, updated_on DESC",
		map[string]any{"web_log": webLogID.RecordID()},
		pageNbr, postsPerPage)
}

func (p *posts) FindPageOfPublishedPosts(ctx context.Context, webLogID models.WebLogID, pageNbr, postsPerPage int) ([]models.Post, error) {
	return p.findPage(ctx,
		"SELECT * FROM post WHERE web_log_id = $web_log AND status = 'published'"+
			" ORDER BY published_on DESC",
		map[string]any{"web_log": webLogID.RecordID()},
		pageNbr, postsPerPage)
}

func (p *posts) FindPageOfTaggedPosts(ctx context.Context, webLogID models.WebLogID, tag string, pageNbr, postsPerPage int) ([]models.Post, error) {
	return p.findPage(ctx,
		"SELECT * FROM post WHERE web_log_id = $web_log AND status = 'published'"+
			" AND tags CONTAINS $tag ORDER BY published_on DESC",
		map[string]any{"web_log": webLogID.RecordID(), "tag": tag},
		pageNbr, postsPerPage)
}

func (p *posts) FindSurroundingPosts(ctx context.Context, webLogID models.WebLogID, publishedOn time.Time) (older, newer *models.Post, err error) {
	olderPost, err := queryOne[models.Post](ctx, p.s,
		"SELECT * FROM post WHERE web_log_id = $web_log AND status = 'published'"+
			" AND published_on < $marker ORDER BY published_on DESC LIMIT 1",
		map[string]any{"web_log": webLogID.RecordID(), "marker": publishedOn})
	if err != nil {
		return nil, nil, err
	}
	newerPost, err := queryOne[models.Post](ctx, p.s,
		"SELECT * FROM post WHERE web_log_id = $web_log AND status = 'published'"+
			" AND published_on > $marker ORDER BY published_on ASC LIMIT 1",
		map[string]any{"web_log": webLogID.RecordID(), "marker": publishedOn})
	if err != nil {
		return nil, nil, err
	}
	if olderPost != nil {
		trimmed := postWithoutHistory(*olderPost)
		older = &trimmed
	}
	if newerPost != nil {
		trimmed := postWithoutHistory(*newerPost)
		newer = &trimmed
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
	return replace(ctx, p.s, post.ID.RecordID(), post)
}

func (p *posts) UpdatePriorPermalinks(ctx context.Context, id models.PostID, webLogID models.WebLogID, permalinks []models.Permalink) (bool, error) {
	existing, err := p.FindFullByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}
	existing.PriorPermalinks = permalinks
	return true, replace(ctx, p.s, id.RecordID(), *existing)
}

func (p *posts) findPage(ctx context.Context, query string, params map[string]any, pageNbr, postsPerPage int) ([]models.Post, error) {
	if pageNbr < 1 {
		pageNbr = 1
	}
	params["limit"] = postsPerPage + 1
	params["start"] = (pageNbr - 1) * postsPerPage
	result, err := queryRows[models.Post](ctx, p.s, query+" LIMIT $limit START $start", params)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i] = postWithoutHistory(result[i])
	}
	return result, nil
}
