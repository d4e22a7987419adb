package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/quillcms/quillcms/pkg/models"
)

type uploads struct {
	s *Store
}

// Uploads carry binary payloads, so they live in a plain relational table
// like theme assets do.

type uploadScan struct {
	ID        string
	WebLogID  string
	Path      string
	UpdatedOn time.Time
	Data      []byte
}

func (u uploadScan) toModel() (models.Upload, error) {
	id, err := models.ParseUploadID(u.ID)
	if err != nil {
		return models.Upload{}, err
	}
	webLogID, err := models.ParseWebLogID(u.WebLogID)
	if err != nil {
		return models.Upload{}, err
	}
	return models.Upload{
		ID:        id,
		WebLogID:  webLogID,
		Path:      models.Permalink(u.Path),
		UpdatedOn: u.UpdatedOn,
		Data:      u.Data,
	}, nil
}

func (u *uploads) Add(ctx context.Context, upload models.Upload) error {
	return u.s.db.WithContext(ctx).Exec(
		"INSERT INTO upload (id, web_log_id, path, updated_on, data) VALUES (?, ?, ?, ?, ?)",
		upload.ID.String(), upload.WebLogID.String(), upload.Path.String(),
		upload.UpdatedOn, upload.Data).Error
}

func (u *uploads) Delete(ctx context.Context, id models.UploadID, webLogID models.WebLogID) (bool, error) {
	return u.s.deleteDoc(ctx,
		"DELETE FROM upload WHERE id = ? AND web_log_id = ?",
		id.String(), webLogID.String())
}

func (u *uploads) FindByPath(ctx context.Context, path models.Permalink, webLogID models.WebLogID) (*models.Upload, error) {
	var row uploadScan
	err := u.s.db.WithContext(ctx).
		Raw("SELECT id, web_log_id, path, updated_on, data FROM upload"+
			" WHERE web_log_id = ? AND path = ?", webLogID.String(), path.String()).
		Scan(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if row.ID == "" {
		return nil, nil
	}
	upload, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

func (u *uploads) FindByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.Upload, error) {
	return u.scan(ctx,
		"SELECT id, web_log_id, path, updated_on, NULL AS data FROM upload"+
			" WHERE web_log_id = ? ORDER BY path", webLogID.String())
}

func (u *uploads) FindByWebLogWithData(ctx context.Context, webLogID models.WebLogID) ([]models.Upload, error) {
	return u.scan(ctx,
		"SELECT id, web_log_id, path, updated_on, data FROM upload"+
			" WHERE web_log_id = ? ORDER BY path", webLogID.String())
}

func (u *uploads) Restore(ctx context.Context, restoreUploads []models.Upload) error {
	for _, up := range restoreUploads {
		if err := u.Add(ctx, up); err != nil {
			return err
		}
	}
	return nil
}

func (u *uploads) scan(ctx context.Context, query string, args ...any) ([]models.Upload, error) {
	var rows []uploadScan
	if err := u.s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]models.Upload, len(rows))
	for i, r := range rows {
		upload, err := r.toModel()
		if err != nil {
			return nil, err
		}
		result[i] = upload
	}
	return result, nil
}
