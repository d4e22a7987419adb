package sqlite

import (
	"context"

	"github.com/quillcms/quillcms/pkg/models"
)

type webLogs struct {
	s *Store
}

func (w *webLogs) Add(ctx context.Context, webLog models.WebLog) error {
	return w.s.saveDoc(ctx, "web_log", webLog.ID.String(), "", webLog)
}

func (w *webLogs) All(ctx context.Context) ([]models.WebLog, error) {
	return findDocs[models.WebLog](ctx, w.s, "SELECT data FROM web_log")
}

// Delete removes the web log and everything it owns, one table at a time.
func (w *webLogs) Delete(ctx context.Context, id models.WebLogID) error {
	owned := []string{"category", "page", "post", "tag_map", "upload", "web_log_user"}
	for _, table := range owned {
		err := w.s.db.WithContext(ctx).
			Exec("DELETE FROM "+table+" WHERE web_log_id = ?", id.String()).Error
		if err != nil {
			return err
		}
	}
	return w.s.db.WithContext(ctx).
		Exec("DELETE FROM web_log WHERE id = ?", id.String()).Error
}

func (w *webLogs) FindByHost(ctx context.Context, url string) (*models.WebLog, error) {
	var webLog models.WebLog
	ok, err := w.s.findDoc(ctx,
		"SELECT data FROM web_log WHERE json_extract(data, '$.url_base') = ?", &webLog, url)
	if !ok || err != nil {
		return nil, err
	}
	return &webLog, nil
}

func (w *webLogs) FindByID(ctx context.Context, id models.WebLogID) (*models.WebLog, error) {
	var webLog models.WebLog
	ok, err := w.s.findDoc(ctx,
		"SELECT data FROM web_log WHERE id = ?", &webLog, id.String())
	if !ok || err != nil {
		return nil, err
	}
	return &webLog, nil
}

func (w *webLogs) UpdateRedirectRules(ctx context.Context, webLog models.WebLog) error {
	existing, err := w.FindByID(ctx, webLog.ID)
	if err != nil || existing == nil {
		return err
	}
	existing.RedirectRules = webLog.RedirectRules
	return w.s.saveDoc(ctx, "web_log", webLog.ID.String(), "", *existing)
}

func (w *webLogs) UpdateRSSOptions(ctx context.Context, webLog models.WebLog) error {
	existing, err := w.FindByID(ctx, webLog.ID)
	if err != nil || existing == nil {
		return err
	}
	existing.RSS = webLog.RSS
	return w.s.saveDoc(ctx, "web_log", webLog.ID.String(), "", *existing)
}

func (w *webLogs) UpdateSettings(ctx context.Context, webLog models.WebLog) error {
	existing, err := w.FindByID(ctx, webLog.ID)
	if err != nil || existing == nil {
		return err
	}
	updated := webLog
	updated.RSS = existing.RSS
	updated.RedirectRules = existing.RedirectRules
	return w.s.saveDoc(ctx, "web_log", webLog.ID.String(), "", updated)
}
