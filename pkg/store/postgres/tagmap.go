package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quillcms/quillcms/pkg/models"
	"github.com/quillcms/quillcms/pkg/store"
)

type tagMaps struct {
	db *gorm.DB
}

func (t *tagMaps) Delete(ctx context.Context, id models.TagMapID, webLogID models.WebLogID) (bool, error) {
	existing, err := t.FindByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}
	err = t.db.WithContext(ctx).
		Where("id = ? AND web_log_id = ?", id, webLogID).Delete(&tagMapRow{}).Error
	return err == nil, err
}

func (t *tagMaps) FindByID(ctx context.Context, id models.TagMapID, webLogID models.WebLogID) (*models.TagMap, error) {
	row, err := firstOrNil[tagMapRow](t.db.WithContext(ctx).
		Where("id = ? AND web_log_id = ?", id, webLogID))
	if row == nil || err != nil {
		return nil, err
	}
	m := row.toModel()
	return &m, nil
}

func (t *tagMaps) FindByURLValue(ctx context.Context, urlValue string, webLogID models.WebLogID) (*models.TagMap, error) {
	row, err := firstOrNil[tagMapRow](t.db.WithContext(ctx).
		Where("web_log_id = ? AND url_value = ?", webLogID, urlValue))
	if row == nil || err != nil {
		return nil, err
	}
	m := row.toModel()
	return &m, nil
}

func (t *tagMaps) FindByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.TagMap, error) {
	var rows []tagMapRow
	err := t.db.WithContext(ctx).
		Where("web_log_id = ?", webLogID).Order("tag").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rowsToTagMaps(rows), nil
}

func (t *tagMaps) FindMappingForTags(ctx context.Context, tags []string, webLogID models.WebLogID) ([]models.TagMap, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	var rows []tagMapRow
	err := t.db.WithContext(ctx).
		Where("web_log_id = ? AND tag IN ?", webLogID, tags).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rowsToTagMaps(rows), nil
}

func (t *tagMaps) Restore(ctx context.Context, mappings []models.TagMap) error {
	if len(mappings) == 0 {
		return nil
	}
	rows := make([]tagMapRow, len(mappings))
	for i, m := range mappings {
		rows[i] = tagMapToRow(m)
	}
	return t.db.WithContext(ctx).CreateInBatches(rows, store.RestoreBatchSize).Error
}

func (t *tagMaps) Save(ctx context.Context, mapping models.TagMap) error {
	row := tagMapToRow(mapping)
	return t.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&row).Error
}

func rowsToTagMaps(rows []tagMapRow) []models.TagMap {
	result := make([]models.TagMap, len(rows))
	for i, r := range rows {
		result[i] = r.toModel()
	}
	return result
}
