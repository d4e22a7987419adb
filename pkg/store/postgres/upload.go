package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/quillcms/quillcms/pkg/models"
	"github.com/quillcms/quillcms/pkg/store"
)

type uploads struct {
	db *gorm.DB
}

func (u *uploads) Add(ctx context.Context, upload models.Upload) error {
	row := uploadToRow(upload)
	return u.db.WithContext(ctx).Create(&row).Error
}

func (u *uploads) Delete(ctx context.Context, id models.UploadID, webLogID models.WebLogID) (bool, error) {
	row, err := firstOrNil[uploadRow](u.db.WithContext(ctx).
		Omit("data").Where("id = ? AND web_log_id = ?", id, webLogID))
	if row == nil || err != nil {
		return false, err
	}
	err = u.db.WithContext(ctx).
		Where("id = ? AND web_log_id = ?", id, webLogID).Delete(&uploadRow{}).Error
	return err == nil, err
}

func (u *uploads) FindByPath(ctx context.Context, path models.Permalink, webLogID models.WebLogID) (*models.Upload, error) {
	row, err := firstOrNil[uploadRow](u.db.WithContext(ctx).
		Where("web_log_id = ? AND path = ?", webLogID, path))
	if row == nil || err != nil {
		return nil, err
	}
	upload := row.toModel()
	return &upload, nil
}

func (u *uploads) FindByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.Upload, error) {
	return u.findByWebLog(ctx, webLogID, false)
}

func (u *uploads) FindByWebLogWithData(ctx context.Context, webLogID models.WebLogID) ([]models.Upload, error) {
	return u.findByWebLog(ctx, webLogID, true)
}

func (u *uploads) findByWebLog(ctx context.Context, webLogID models.WebLogID, withData bool) ([]models.Upload, error) {
	tx := u.db.WithContext(ctx).Where("web_log_id = ?", webLogID).Order("path")
	if !withData {
		tx = tx.Omit("data")
	}
	var rows []uploadRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]models.Upload, len(rows))
	for i, r := range rows {
		result[i] = r.toModel()
	}
	return result, nil
}

func (u *uploads) Restore(ctx context.Context, restoreUploads []models.Upload) error {
	if len(restoreUploads) == 0 {
		return nil
	}
	rows := make([]uploadRow, len(restoreUploads))
	for i, up := range restoreUploads {
		rows[i] = uploadToRow(up)
	}
	// Upload payloads are large; small batches keep statements bounded.
	return u.db.WithContext(ctx).CreateInBatches(rows, store.RestoreBinaryBatchSize).Error
}
