package sqlite

import (
	"context"
	"fmt"
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
	post = postUTC(post)
	return p.s.saveDoc(ctx, "post", post.ID.String(), post.WebLogID.String(), post)
}

func (p *posts) CountByStatus(ctx context.Context, status models.PostStatus, webLogID models.WebLogID) (int64, error) {
	return p.s.countDocs(ctx,
		"SELECT COUNT(*) FROM post WHERE web_log_id = ?"+
			" AND json_extract(data, '$.status') = ?",
		webLogID.String(), string(status))
}

func (p *posts) Delete(ctx context.Context, id models.PostID, webLogID models.WebLogID) (bool, error) {
	return p.s.deleteDoc(ctx,
		"DELETE FROM post WHERE id = ? AND web_log_id = ?",
		id.String(), webLogID.String())
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
	var post models.Post
	ok, err := p.s.findDoc(ctx,
		"SELECT data FROM post WHERE id = ? AND web_log_id = ?",
		&post, id.String(), webLogID.String())
	if !ok || err != nil {
		return nil, err
	}
	return &post, nil
}

func (p *posts) FindByPermalink(ctx context.Context, permalink models.Permalink, webLogID models.WebLogID) (*models.Post, error) {
	var post models.Post
	ok, err := p.s.findDoc(ctx,
		"SELECT data FROM post WHERE web_log_id = ?"+
			" AND json_extract(data, '$.permalink') = ?",
		&post, webLogID.String(), permalink.String())
	if !ok || err != nil {
		return nil, err
	}
	trimmed := postWithoutHistory(post)
	return &trimmed, nil
}

func (p *posts) FindCurrentPermalink(ctx context.Context, permalinks []models.Permalink, webLogID models.WebLogID) (*models.Permalink, error) {
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
	var post models.Post
	ok, err := p.s.findDoc(ctx,
		fmt.Sprintf("SELECT post.data FROM post, json_each(post.data, '$.prior_permalinks') AS prior"+
			" WHERE post.web_log_id = ? AND prior.value IN (%s)", placeholders),
		&post, args...)
	if !ok || err != nil {
		return nil, err
	}
	return &post.Permalink, nil
}

func (p *posts) FindFullByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.Post, error) {
	return findDocs[models.Post](ctx, p.s,
		"SELECT data FROM post WHERE web_log_id = ?", webLogID.String())
}

func (p *posts) FindPageOfCategorizedPosts(ctx context.Context, webLogID models.WebLogID, categoryIDs []models.CategoryID, pageNbr, postsPerPage int) ([]models.Post, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	args := []any{webLogID.String()}
	placeholders := ""
	for i, id := range categoryIDs {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args = append(args, id.String())
	}
	query := fmt.Sprintf(
		"SELECT DISTINCT post.data FROM post, json_each(post.data, '$.category_ids') AS cat"+
			" WHERE post.web_log_id = ? AND json_extract(post.data, '$.status') = 'published'"+
			" AND cat.value IN (%s)"+
			" ORDER BY json_extract(post.data, '$.published_on') DESC", placeholders)
	return p.findPage(ctx, query, args, pageNbr, postsPerPage)
}

func (p *posts) FindPageOfPosts(ctx context.Context, webLogID models.WebLogID, pageNbr, postsPerPage int) ([]models.Post, error) {
	// RFC 3339 strings in UTC sort chronologically, so string comparison
	// stands in for date comparison throughout.
	query := "SELECT data FROM post WHERE web_log_id = ?" +
		" ORDER BY json_extract(data, '$.published_on') DESC NULLS FIRST," +
		" json_extract(data, '$.updated_on') DESC"
	return p.findPage(ctx, query, []any{webLogID.String()}, pageNbr, postsPerPage)
}

func (p *posts) FindPageOfPublishedPosts(ctx context.Context, webLogID models.WebLogID, pageNbr, postsPerPage int) ([]models.Post, error) {
	query := "SELECT data FROM post WHERE web_log_id = ?" +
		" AND json_extract(data, '$.status') = 'published'" +
		" ORDER BY json_extract(data, '$.published_on') DESC"
	return p.findPage(ctx, query, []any{webLogID.String()}, pageNbr, postsPerPage)
}

func (p *posts) FindPageOfTaggedPosts(ctx context.Context, webLogID models.WebLogID, tag string, pageNbr, postsPerPage int) ([]models.Post, error) {
	query := "SELECT post.data FROM post, json_each(post.data, '$.tags') AS tag" +
		" WHERE post.web_log_id = ? AND json_extract(post.data, '$.status') = 'published'" +
		" AND tag.value = ?" +
		" ORDER BY json_extract(post.data, '$.published_on') DESC"
	return p.findPage(ctx, query, []any{webLogID.String(), tag}, pageNbr, postsPerPage)
}

func (p *posts) FindSurroundingPosts(ctx context.Context, webLogID models.WebLogID, publishedOn time.Time) (older, newer *models.Post, err error) {
	marker := publishedOn.UTC().Format(time.RFC3339Nano)

	var olderPost models.Post
	ok, err := p.s.findDoc(ctx,
		"SELECT data FROM post WHERE web_log_id = ?"+
			" AND json_extract(data, '$.status') = 'published'"+
			" AND json_extract(data, '$.published_on') < ?"+
			" ORDER BY json_extract(data, '$.published_on') DESC LIMIT 1",
		&olderPost, webLogID.String(), marker)
	if err != nil {
		return nil, nil, err
	}
	if ok {
		trimmed := postWithoutHistory(olderPost)
		older = &trimmed
	}

	var newerPost models.Post
	ok, err = p.s.findDoc(ctx,
		"SELECT data FROM post WHERE web_log_id = ?"+
			" AND json_extract(data, '$.status') = 'published'"+
			" AND json_extract(data, '$.published_on') > ?"+
			" ORDER BY json_extract(data, '$.published_on') ASC LIMIT 1",
		&newerPost, webLogID.String(), marker)
	if err != nil {
		return nil, nil, err
	}
	if ok {
		trimmed := postWithoutHistory(newerPost)
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
	post = postUTC(post)
	return p.s.saveDoc(ctx, "post", post.ID.String(), post.WebLogID.String(), post)
}

func (p *posts) UpdatePriorPermalinks(ctx context.Context, id models.PostID, webLogID models.WebLogID, permalinks []models.Permalink) (bool, error) {
	existing, err := p.FindFullByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}
	existing.PriorPermalinks = permalinks
	return true, p.s.saveDoc(ctx, "post", id.String(), webLogID.String(), *existing)
}

func (p *posts) findPage(ctx context.Context, query string, args []any, pageNbr, postsPerPage int) ([]models.Post, error) {
	if pageNbr < 1 {
		pageNbr = 1
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, postsPerPage+1, (pageNbr-1)*postsPerPage)
	result, err := findDocs[models.Post](ctx, p.s, query, args...)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i] = postWithoutHistory(result[i])
	}
	return result, nil
}
