package sqlite

import (
	"context"
	"fmt"

	"github.com/quillcms/quillcms/pkg/models"
)

type tagMaps struct {
	s *Store
}

func (t *tagMaps) Delete(ctx context.Context, id models.TagMapID, webLogID models.WebLogID) (bool, error) {
	return t.s.deleteDoc(ctx,
		"DELETE FROM tag_map WHERE id = ? AND web_log_id = ?",
		id.String(), webLogID.String())
}

func (t *tagMaps) FindByID(ctx context.Context, id models.TagMapID, webLogID models.WebLogID) (*models.TagMap, error) {
	var m models.TagMap
	ok, err := t.s.findDoc(ctx,
		"SELECT data FROM tag_map WHERE id = ? AND web_log_id = ?",
		&m, id.String(), webLogID.String())
	if !ok || err != nil {
		return nil, err
	}
	return &m, nil
}

func (t *tagMaps) FindByURLValue(ctx context.Context, urlValue string, webLogID models.WebLogID) (*models.TagMap, error) {
	var m models.TagMap
	ok, err := t.s.findDoc(ctx,
		"SELECT data FROM tag_map WHERE web_log_id = ?"+
			" AND json_extract(data, '$.url_value') = ?",
		&m, webLogID.String(), urlValue)
	if !ok || err != nil {
		return nil, err
	}
	return &m, nil
}

func (t *tagMaps) FindByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.TagMap, error) {
	return findDocs[models.TagMap](ctx, t.s,
		"SELECT data FROM tag_map WHERE web_log_id = ?"+
			" ORDER BY json_extract(data, '$.tag')", webLogID.String())
}

func (t *tagMaps) FindMappingForTags(ctx context.Context, tags []string, webLogID models.WebLogID) ([]models.TagMap, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	args := []any{webLogID.String()}
	placeholders := ""
	for i, tag := range tags {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args = append(args, tag)
	}
	return findDocs[models.TagMap](ctx, t.s,
		fmt.Sprintf("SELECT data FROM tag_map WHERE web_log_id = ?"+
			" AND json_extract(data, '$.tag') IN (%s)", placeholders), args...)
}

func (t *tagMaps) Restore(ctx context.Context, mappings []models.TagMap) error {
	for _, m := range mappings {
		if err := t.Save(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (t *tagMaps) Save(ctx context.Context, mapping models.TagMap) error {
	return t.s.saveDoc(ctx, "tag_map", mapping.ID.String(), mapping.WebLogID.String(), mapping)
}
