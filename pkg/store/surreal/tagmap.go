package surreal

import (
	"context"

	"github.com/quillcms/quillcms/pkg/models"
)

type tagMaps struct {
	s *Store
}

func (t *tagMaps) Delete(ctx context.Context, id models.TagMapID, webLogID models.WebLogID) (bool, error) {
	existing, err := t.FindByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}
	return true, remove(ctx, t.s, id.RecordID())
}

func (t *tagMaps) FindByID(ctx context.Context, id models.TagMapID, webLogID models.WebLogID) (*models.TagMap, error) {
	m, err := selectByID[models.TagMap](ctx, t.s, id.RecordID())
	if m == nil || err != nil {
		return nil, err
	}
	if m.WebLogID != webLogID {
		return nil, nil
	}
	return m, nil
}

func (t *tagMaps) FindByURLValue(ctx context.Context, urlValue string, webLogID models.WebLogID) (*models.TagMap, error) {
	return queryOne[models.TagMap](ctx, t.s,
		"SELECT * FROM tag_map WHERE web_log_id = $web_log AND url_value = $url",
		map[string]any{"web_log": webLogID.RecordID(), "url": urlValue})
}

func (t *tagMaps) FindByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.TagMap, error) {
	return queryRows[models.TagMap](ctx, t.s,
		"SELECT * FROM tag_map WHERE web_log_id = $web_log ORDER BY tag",
		map[string]any{"web_log": webLogID.RecordID()})
}

func (t *tagMaps) FindMappingForTags(ctx context.Context, tags []string, webLogID models.WebLogID) ([]models.TagMap, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	return queryRows[models.TagMap](ctx, t.s,
		"SELECT * FROM tag_map WHERE web_log_id = $web_log AND tag IN $tags",
		map[string]any{"web_log": webLogID.RecordID(), "tags": tags})
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
	return replace(ctx, t.s, mapping.ID.RecordID(), mapping)
}
