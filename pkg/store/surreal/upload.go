package surreal

import (
	"context"

	"github.com/quillcms/quillcms/pkg/models"
)

type uploads struct {
	s *Store
}

func (u *uploads) Add(ctx context.Context, upload models.Upload) error {
	return create(ctx, u.s, "upload", upload)
}

func (u *uploads) Delete(ctx context.Context, id models.UploadID, webLogID models.WebLogID) (bool, error) {
	type uploadHead struct {
		ID       models.UploadID `json:"id"`
		WebLogID models.WebLogID `json:"web_log_id"`
	}
	existing, err := selectByID[uploadHead](ctx, u.s, id.RecordID())
	if existing == nil || err != nil {
		return false, err
	}
	if existing.WebLogID != webLogID {
		return false, nil
	}
	return true, remove(ctx, u.s, id.RecordID())
}

func (u *uploads) FindByPath(ctx context.Context, path models.Permalink, webLogID models.WebLogID) (*models.Upload, error) {
	return queryOne[models.Upload](ctx, u.s,
		"SELECT * FROM upload WHERE web_log_id = $web_log AND path = $path",
		map[string]any{"web_log": webLogID.RecordID(), "path": path.String()})
}

func (u *uploads) FindByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.Upload, error) {
	return queryRows[models.Upload](ctx, u.s,
		"SELECT * OMIT data FROM upload WHERE web_log_id = $web_log ORDER BY path",
		map[string]any{"web_log": webLogID.RecordID()})
}

func (u *uploads) FindByWebLogWithData(ctx context.Context, webLogID models.WebLogID) ([]models.Upload, error) {
	return queryRows[models.Upload](ctx, u.s,
		"SELECT * FROM upload WHERE web_log_id = $web_log ORDER BY path",
		map[string]any{"web_log": webLogID.RecordID()})
}

func (u *uploads) Restore(ctx context.Context, restoreUploads []models.Upload) error {
	for _, up := range restoreUploads {
		if err := u.Add(ctx, up); err != nil {
			return err
		}
	}
	return nil
}
