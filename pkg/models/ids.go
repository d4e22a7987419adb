package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
)

// WebLogID identifies a web log, the tenant unit of the whole data model.
type WebLogID struct {
	uuid uuid.UUID
}

func NewWebLogID() WebLogID {
	return WebLogID{uuid: uuid.New()}
}

func NewWebLogIDFromUUID(id uuid.UUID) WebLogID {
	return WebLogID{uuid: id}
}

func ParseWebLogID(s string) (WebLogID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return WebLogID{}, fmt.Errorf("invalid web log ID: %w", err)
	}
	return WebLogID{uuid: id}, nil
}

func (w WebLogID) UUID() uuid.UUID { return w.uuid }
func (w WebLogID) String() string  { return w.uuid.String() }
func (w WebLogID) IsZero() bool    { return w.uuid == uuid.Nil }

func (w WebLogID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "web_log", ID: w.uuid.String()}
}

func (w WebLogID) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.uuid.String())
}

func (w *WebLogID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &w.uuid)
}

func (w WebLogID) MarshalCBOR() ([]byte, error) {
	return marshalCBORID("web_log", w.uuid)
}

func (w *WebLogID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "web_log", &w.uuid)
}

func (w WebLogID) Value() (driver.Value, error) {
	if w.IsZero() {
		return nil, nil
	}
	return w.uuid.String(), nil
}

func (w *WebLogID) Scan(value any) error {
	return scanUUID(value, &w.uuid)
}

func (WebLogID) GormDataType() string { return "uuid" }

// CategoryID identifies a category within a web log.
type CategoryID struct {
	uuid uuid.UUID
}

func NewCategoryID() CategoryID {
	return CategoryID{uuid: uuid.New()}
}

func NewCategoryIDFromUUID(id uuid.UUID) CategoryID {
	return CategoryID{uuid: id}
}

func ParseCategoryID(s string) (CategoryID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return CategoryID{}, fmt.Errorf("invalid category ID: %w", err)
	}
	return CategoryID{uuid: id}, nil
}

func (c CategoryID) UUID() uuid.UUID { return c.uuid }
func (c CategoryID) String() string  { return c.uuid.String() }
func (c CategoryID) IsZero() bool    { return c.uuid == uuid.Nil }

func (c CategoryID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "category", ID: c.uuid.String()}
}

func (c CategoryID) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.uuid.String())
}

func (c *CategoryID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &c.uuid)
}

func (c CategoryID) MarshalCBOR() ([]byte, error) {
	return marshalCBORID("category", c.uuid)
}

func (c *CategoryID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "category", &c.uuid)
}

func (c CategoryID) Value() (driver.Value, error) {
	if c.IsZero() {
		return nil, nil
	}
	return c.uuid.String(), nil
}

func (c *CategoryID) Scan(value any) error {
	return scanUUID(value, &c.uuid)
}

func (CategoryID) GormDataType() string { return "uuid" }

// PageID identifies a page within a web log.
type PageID struct {
	uuid uuid.UUID
}

func NewPageID() PageID {
	return PageID{uuid: uuid.New()}
}

func NewPageIDFromUUID(id uuid.UUID) PageID {
	return PageID{uuid: id}
}

func ParsePageID(s string) (PageID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return PageID{}, fmt.Errorf("invalid page ID: %w", err)
	}
	return PageID{uuid: id}, nil
}

func (p PageID) UUID() uuid.UUID { return p.uuid }
func (p PageID) String() string  { return p.uuid.String() }
func (p PageID) IsZero() bool    { return p.uuid == uuid.Nil }

func (p PageID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "page", ID: p.uuid.String()}
}

func (p PageID) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.uuid.String())
}

func (p *PageID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &p.uuid)
}

func (p PageID) MarshalCBOR() ([]byte, error) {
	return marshalCBORID("page", p.uuid)
}

func (p *PageID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "page", &p.uuid)
}

func (p PageID) Value() (driver.Value, error) {
	if p.IsZero() {
		return nil, nil
	}
	return p.uuid.String(), nil
}

func (p *PageID) Scan(value any) error {
	return scanUUID(value, &p.uuid)
}

func (PageID) GormDataType() string { return "uuid" }

// PostID identifies a post within a web log.
type PostID struct {
	uuid uuid.UUID
}

func NewPostID() PostID {
	return PostID{uuid: uuid.New()}
}

func NewPostIDFromUUID(id uuid.UUID) PostID {
	return PostID{uuid: id}
}

func ParsePostID(s string) (PostID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return PostID{}, fmt.Errorf("invalid post ID: %w", err)
	}
	return PostID{uuid: id}, nil
}

func (p PostID) UUID() uuid.UUID { return p.uuid }
func (p PostID) String() string  { return p.uuid.String() }
func (p PostID) IsZero() bool    { return p.uuid == uuid.Nil }

func (p PostID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "post", ID: p.uuid.String()}
}

func (p PostID) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.uuid.String())
}

func (p *PostID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &p.uuid)
}

func (p PostID) MarshalCBOR() ([]byte, error) {
	return marshalCBORID("post", p.uuid)
}

func (p *PostID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "post", &p.uuid)
}

func (p PostID) Value() (driver.Value, error) {
	if p.IsZero() {
		return nil, nil
	}
	return p.uuid.String(), nil
}

func (p *PostID) Scan(value any) error {
	return scanUUID(value, &p.uuid)
}

func (PostID) GormDataType() string { return "uuid" }

// TagMapID identifies a tag-to-URL mapping within a web log.
type TagMapID struct {
	uuid uuid.UUID
}

func NewTagMapID() TagMapID {
	return TagMapID{uuid: uuid.New()}
}

func NewTagMapIDFromUUID(id uuid.UUID) TagMapID {
	return TagMapID{uuid: id}
}

func ParseTagMapID(s string) (TagMapID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return TagMapID{}, fmt.Errorf("invalid tag mapping ID: %w", err)
	}
	return TagMapID{uuid: id}, nil
}

func (t TagMapID) UUID() uuid.UUID { return t.uuid }
func (t TagMapID) String() string  { return t.uuid.String() }
func (t TagMapID) IsZero() bool    { return t.uuid == uuid.Nil }

func (t TagMapID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "tag_map", ID: t.uuid.String()}
}

func (t TagMapID) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.uuid.String())
}

func (t *TagMapID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &t.uuid)
}

func (t TagMapID) MarshalCBOR() ([]byte, error) {
	return marshalCBORID("tag_map", t.uuid)
}

func (t *TagMapID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "tag_map", &t.uuid)
}

func (t TagMapID) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.uuid.String(), nil
}

func (t *TagMapID) Scan(value any) error {
	return scanUUID(value, &t.uuid)
}

func (TagMapID) GormDataType() string { return "uuid" }

// CustomFeedID identifies a custom RSS feed defined for a web log.
type CustomFeedID struct {
	uuid uuid.UUID
}

func NewCustomFeedID() CustomFeedID {
	return CustomFeedID{uuid: uuid.New()}
}

func ParseCustomFeedID(s string) (CustomFeedID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return CustomFeedID{}, fmt.Errorf("invalid custom feed ID: %w", err)
	}
	return CustomFeedID{uuid: id}, nil
}

func (c CustomFeedID) UUID() uuid.UUID { return c.uuid }
func (c CustomFeedID) String() string  { return c.uuid.String() }
func (c CustomFeedID) IsZero() bool    { return c.uuid == uuid.Nil }

func (c CustomFeedID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "custom_feed", ID: c.uuid.String()}
}

func (c CustomFeedID) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.uuid.String())
}

func (c *CustomFeedID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &c.uuid)
}

func (c CustomFeedID) MarshalCBOR() ([]byte, error) {
	return marshalCBORID("custom_feed", c.uuid)
}

func (c *CustomFeedID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "custom_feed", &c.uuid)
}

func (c CustomFeedID) Value() (driver.Value, error) {
	if c.IsZero() {
		return nil, nil
	}
	return c.uuid.String(), nil
}

func (c *CustomFeedID) Scan(value any) error {
	return scanUUID(value, &c.uuid)
}

func (CustomFeedID) GormDataType() string { return "uuid" }

// UploadID identifies an uploaded file within a web log.
type UploadID struct {
	uuid uuid.UUID
}

func NewUploadID() UploadID {
	return UploadID{uuid: uuid.New()}
}

func NewUploadIDFromUUID(id uuid.UUID) UploadID {
	return UploadID{uuid: id}
}

func ParseUploadID(s string) (UploadID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UploadID{}, fmt.Errorf("invalid upload ID: %w", err)
	}
	return UploadID{uuid: id}, nil
}

func (u UploadID) UUID() uuid.UUID { return u.uuid }
func (u UploadID) String() string  { return u.uuid.String() }
func (u UploadID) IsZero() bool    { return u.uuid == uuid.Nil }

func (u UploadID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "upload", ID: u.uuid.String()}
}

func (u UploadID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.uuid.String())
}

func (u *UploadID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &u.uuid)
}

func (u UploadID) MarshalCBOR() ([]byte, error) {
	return marshalCBORID("upload", u.uuid)
}

func (u *UploadID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "upload", &u.uuid)
}

func (u UploadID) Value() (driver.Value, error) {
	if u.IsZero() {
		return nil, nil
	}
	return u.uuid.String(), nil
}

func (u *UploadID) Scan(value any) error {
	return scanUUID(value, &u.uuid)
}

func (UploadID) GormDataType() string { return "uuid" }

// WebLogUserID identifies a user account within a web log.
type WebLogUserID struct {
	uuid uuid.UUID
}

func NewWebLogUserID() WebLogUserID {
	return WebLogUserID{uuid: uuid.New()}
}

func NewWebLogUserIDFromUUID(id uuid.UUID) WebLogUserID {
	return WebLogUserID{uuid: id}
}

func ParseWebLogUserID(s string) (WebLogUserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return WebLogUserID{}, fmt.Errorf("invalid user ID: %w", err)
	}
	return WebLogUserID{uuid: id}, nil
}

func (u WebLogUserID) UUID() uuid.UUID { return u.uuid }
func (u WebLogUserID) String() string  { return u.uuid.String() }
func (u WebLogUserID) IsZero() bool    { return u.uuid == uuid.Nil }

func (u WebLogUserID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "web_log_user", ID: u.uuid.String()}
}

func (u WebLogUserID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.uuid.String())
}

func (u *WebLogUserID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &u.uuid)
}

func (u WebLogUserID) MarshalCBOR() ([]byte, error) {
	return marshalCBORID("web_log_user", u.uuid)
}

func (u *WebLogUserID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "web_log_user", &u.uuid)
}

func (u WebLogUserID) Value() (driver.Value, error) {
	if u.IsZero() {
		return nil, nil
	}
	return u.uuid.String(), nil
}

func (u *WebLogUserID) Scan(value any) error {
	return scanUUID(value, &u.uuid)
}

func (WebLogUserID) GormDataType() string { return "uuid" }

// ThemeID identifies a theme bundle. Themes are keyed by human-readable slug
// ("default", "admin"), not by UUID, because the slug is what web logs and
// template references name.
type ThemeID string

func (t ThemeID) String() string { return string(t) }
func (t ThemeID) IsZero() bool   { return t == "" }

func (t ThemeID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "theme", ID: string(t)}
}

func (t ThemeID) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return string(t), nil
}

func (t *ThemeID) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*t = ""
	case string:
		*t = ThemeID(v)
	case []byte:
		*t = ThemeID(v)
	default:
		return fmt.Errorf("cannot scan type %T into ThemeID", value)
	}
	return nil
}

// ThemeAssetID identifies a file belonging to a theme: the theme slug plus
// the asset's relative path, joined with '/'.
type ThemeAssetID struct {
	ThemeID ThemeID
	Path    string
}

func ParseThemeAssetID(s string) (ThemeAssetID, error) {
	theme, path, ok := strings.Cut(s, "/")
	if !ok || theme == "" || path == "" {
		return ThemeAssetID{}, fmt.Errorf("invalid theme asset ID %q", s)
	}
	return ThemeAssetID{ThemeID: ThemeID(theme), Path: path}, nil
}

func (a ThemeAssetID) String() string {
	return string(a.ThemeID) + "/" + a.Path
}

func (a ThemeAssetID) IsZero() bool {
	return a.ThemeID.IsZero() && a.Path == ""
}

func (a ThemeAssetID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "theme_asset", ID: a.String()}
}

func (a ThemeAssetID) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *ThemeAssetID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := ParseThemeAssetID(s)
	if err != nil {
		return err
	}
	*a = id
	return nil
}

// Helper functions

func unmarshalJSONID(data []byte, target *uuid.UUID) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	*target = id
	return nil
}

// marshalCBORID encodes the ID as a SurrealDB RecordID. SurrealDB uses CBOR
// tag 8 for RecordIDs, encoded as a [table, id] pair.
func marshalCBORID(table string, id uuid.UUID) ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{table, id.String()},
	})
}

// unmarshalCBORID decodes a SurrealDB RecordID back into a UUID, accepting
// either the tagged [table, id] form or a bare string.
func unmarshalCBORID(data []byte, expectedTable string, target *uuid.UUID) error {
	if len(data) == 0 {
		return fmt.Errorf("empty CBOR data")
	}

	majorType := data[0] >> 5
	if majorType != 6 {
		// Bare string form, as stored by backends that keep IDs as plain text.
		var s string
		if err := cbor.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("expected CBOR tag or string for record ID: %w", err)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return err
		}
		*target = id
		return nil
	}

	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("failed to unmarshal CBOR tag: %w", err)
	}
	if tag.Number != 8 {
		return fmt.Errorf("expected RecordID tag (8), got %d", tag.Number)
	}

	arr, ok := tag.Content.([]any)
	if !ok || len(arr) != 2 {
		return fmt.Errorf("invalid RecordID format: expected [table, id] array")
	}
	table, ok := arr[0].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: table name must be string")
	}
	if table != expectedTable {
		return fmt.Errorf("expected table %s, got %s", expectedTable, table)
	}
	idStr, ok := arr[1].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: ID must be string")
	}

	parsed, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid UUID in RecordID: %w", err)
	}
	*target = parsed
	return nil
}

// scanUUID implements the sql.Scanner plumbing shared by all typed IDs.
func scanUUID(value any, target *uuid.UUID) error {
	if value == nil {
		*target = uuid.Nil
		return nil
	}

	switch v := value.(type) {
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return err
		}
		*target = id
	case []byte:
		id, err := uuid.ParseBytes(v)
		if err != nil {
			return err
		}
		*target = id
	default:
		return fmt.Errorf("cannot scan type %T into UUID", value)
	}
	return nil
}
