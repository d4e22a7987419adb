package surreal

import (
	"context"

	"github.com/quillcms/quillcms/pkg/models"
)

type webLogs struct {
	s *Store
}

func (w *webLogs) Add(ctx context.Context, webLog models.WebLog) error {
	return create(ctx, w.s, "web_log", webLog)
}

func (w *webLogs) All(ctx context.Context) ([]models.WebLog, error) {
	return queryRows[models.WebLog](ctx, w.s, "SELECT * FROM web_log", nil)
}

// Delete removes the web log and everything it owns. One DELETE per table;
// a failure partway leaves the rest for a retry.
func (w *webLogs) Delete(ctx context.Context, id models.WebLogID) error {
	owned := []string{"category", "page", "post", "tag_map", "upload", "web_log_user"}
	for _, table := range owned {
		err := w.s.exec(ctx,
			"DELETE "+table+" WHERE web_log_id = $web_log",
			map[string]any{"web_log": id.RecordID()})
		if err != nil {
			return err
		}
	}
	return remove(ctx, w.s, id.RecordID())
}

func (w *webLogs) FindByHost(ctx context.Context, url string) (*models.WebLog, error) {
	return queryOne[models.WebLog](ctx, w.s,
		"SELECT * FROM web_log WHERE url_base = $url",
		map[string]any{"url": url})
}

func (w *webLogs) FindByID(ctx context.Context, id models.WebLogID) (*models.WebLog, error) {
	return selectByID[models.WebLog](ctx, w.s, id.RecordID())
}

func (w *webLogs) UpdateRedirectRules(ctx context.Context, webLog models.WebLog) error {
	existing, err := w.FindByID(ctx, webLog.ID)
	if err != nil || existing == nil {
		return err
	}
	existing.RedirectRules = webLog.RedirectRules
	return replace(ctx, w.s, webLog.ID.RecordID(), *existing)
}

func (w *webLogs) UpdateRSSOptions(ctx context.Context, webLog models.WebLog) error {
	existing, err := w.FindByID(ctx, webLog.ID)
	if err != nil || existing == nil {
		return err
	}
	existing.RSS = webLog.RSS
	return replace(ctx, w.s, webLog.ID.RecordID(), *existing)
}

func (w *webLogs) UpdateSettings(ctx context.Context, webLog models.WebLog) error {
	existing, err := w.FindByID(ctx, webLog.ID)
	if err != nil || existing == nil {
		return err
	}
	updated := webLog
	updated.RSS = existing.RSS
	updated.RedirectRules = existing.RedirectRules
	return replace(ctx, w.s, webLog.ID.RecordID(), updated)
}
