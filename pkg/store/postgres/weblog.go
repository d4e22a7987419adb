package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/quillcms/quillcms/pkg/models"
)

type webLogs struct {
	db *gorm.DB
}

func (w *webLogs) Add(ctx context.Context, webLog models.WebLog) error {
	row := webLogToRow(webLog)
	return w.db.WithContext(ctx).Create(&row).Error
}

func (w *webLogs) All(ctx context.Context) ([]models.WebLog, error) {
	var rows []webLogRow
	if err := w.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]models.WebLog, len(rows))
	for i, r := range rows {
		result[i] = r.toModel()
	}
	return result, nil
}

// Delete removes the web log and everything it owns. The child tables of
// pages and posts go first via subqueries, then the entity tables, then the
// web log row itself. Each statement stands alone; a failure partway leaves
// the remaining rows for a retry, never dangling references to a deleted
// web log.
func (w *webLogs) Delete(ctx context.Context, id models.WebLogID) error {
	pageIDs := w.db.Model(&pageRow{}).Select("id").Where("web_log_id = ?", id)
	for _, child := range []any{&pageMetaRow{}, &pagePermalinkRow{}, &pageRevisionRow{}} {
		if err := w.db.WithContext(ctx).Where("page_id IN (?)", pageIDs).Delete(child).Error; err != nil {
			return err
		}
	}

	postIDs := w.db.Model(&postRow{}).Select("id").Where("web_log_id = ?", id)
	postChildren := []any{
		&postCategoryRow{}, &postTagRow{}, &postMetaRow{},
		&postPermalinkRow{}, &postRevisionRow{},
	}
	for _, child := range postChildren {
		if err := w.db.WithContext(ctx).Where("post_id IN (?)", postIDs).Delete(child).Error; err != nil {
			return err
		}
	}

	owned := []any{
		&pageRow{}, &postRow{}, &categoryRow{}, &tagMapRow{},
		&uploadRow{}, &webLogUserRow{},
	}
	for _, entity := range owned {
		if err := w.db.WithContext(ctx).Where("web_log_id = ?", id).Delete(entity).Error; err != nil {
			return err
		}
	}
	return w.db.WithContext(ctx).Where("id = ?", id).Delete(&webLogRow{}).Error
}

func (w *webLogs) FindByHost(ctx context.Context, url string) (*models.WebLog, error) {
	row, err := firstOrNil[webLogRow](w.db.WithContext(ctx).Where("url_base = ?", url))
	if row == nil || err != nil {
		return nil, err
	}
	webLog := row.toModel()
	return &webLog, nil
}

func (w *webLogs) FindByID(ctx context.Context, id models.WebLogID) (*models.WebLog, error) {
	row, err := firstOrNil[webLogRow](w.db.WithContext(ctx).Where("id = ?", id))
	if row == nil || err != nil {
		return nil, err
	}
	webLog := row.toModel()
	return &webLog, nil
}

func (w *webLogs) UpdateRedirectRules(ctx context.Context, webLog models.WebLog) error {
	row := webLogToRow(webLog)
	return w.db.WithContext(ctx).Model(&webLogRow{}).
		Where("id = ?", webLog.ID).
		Update("redirect_rules", row.RedirectRules).Error
}

func (w *webLogs) UpdateRSSOptions(ctx context.Context, webLog models.WebLog) error {
	row := webLogToRow(webLog)
	return w.db.WithContext(ctx).Model(&webLogRow{}).
		Where("id = ?", webLog.ID).
		Update("rss", row.RSS).Error
}

func (w *webLogs) UpdateSettings(ctx context.Context, webLog models.WebLog) error {
	row := webLogToRow(webLog)
	return w.db.WithContext(ctx).Model(&webLogRow{}).
		Where("id = ?", webLog.ID).
		Select("name", "slug", "subtitle", "default_page", "posts_per_page",
			"theme_id", "url_base", "time_zone", "auto_htmx", "uploads").
		Updates(&row).Error
}
