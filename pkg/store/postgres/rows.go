package postgres

import (
	"time"

	"github.com/quillcms/quillcms/pkg/models"
)

// Row types map the entities onto a normalized schema: one table per entity,
// one table per child collection. Child tables carry composite primary keys
// matching the differ's identity projections, so a sync plan translates
// directly into keyed deletes and inserts.
//
// Timestamps are stored in UTC so ordering and range comparisons behave the
// same on every SQL backend.

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

type webLogRow struct {
	ID            models.WebLogID          `gorm:"primaryKey;type:uuid"`
	Name          string                   `gorm:"not null"`
	Slug          string                   `gorm:"not null"`
	Subtitle      *string
	DefaultPage   string                   `gorm:"not null"`
	PostsPerPage  int                      `gorm:"not null"`
	ThemeID       models.ThemeID           `gorm:"not null"`
	URLBase       string                   `gorm:"uniqueIndex;not null"`
	TimeZone      string                   `gorm:"not null"`
	AutoHTMX      bool
	Uploads       models.UploadDestination `gorm:"not null"`
	RSS           models.RSSOptions        `gorm:"serializer:json"`
	RedirectRules []models.RedirectRule    `gorm:"serializer:json"`
}

func (webLogRow) TableName() string { return "web_log" }

func webLogToRow(w models.WebLog) webLogRow {
	return webLogRow{
		ID:            w.ID,
		Name:          w.Name,
		Slug:          w.Slug,
		Subtitle:      w.Subtitle,
		DefaultPage:   w.DefaultPage,
		PostsPerPage:  w.PostsPerPage,
		ThemeID:       w.ThemeID,
		URLBase:       w.URLBase,
		TimeZone:      w.TimeZone,
		AutoHTMX:      w.AutoHTMX,
		Uploads:       w.Uploads,
		RSS:           w.RSS,
		RedirectRules: w.RedirectRules,
	}
}

func (r webLogRow) toModel() models.WebLog {
	return models.WebLog{
		ID:            r.ID,
		Name:          r.Name,
		Slug:          r.Slug,
		Subtitle:      r.Subtitle,
		DefaultPage:   r.DefaultPage,
		PostsPerPage:  r.PostsPerPage,
		ThemeID:       r.ThemeID,
		URLBase:       r.URLBase,
		TimeZone:      r.TimeZone,
		AutoHTMX:      r.AutoHTMX,
		Uploads:       r.Uploads,
		RSS:           r.RSS,
		RedirectRules: r.RedirectRules,
	}
}

type categoryRow struct {
	ID          models.CategoryID  `gorm:"primaryKey;type:uuid"`
	WebLogID    models.WebLogID    `gorm:"index;type:uuid;not null"`
	Name        string             `gorm:"not null"`
	Slug        string             `gorm:"not null"`
	Description *string
	ParentID    *models.CategoryID `gorm:"type:uuid"`
}

func (categoryRow) TableName() string { return "category" }

func categoryToRow(c models.Category) categoryRow {
	return categoryRow{
		ID:          c.ID,
		WebLogID:    c.WebLogID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ParentID:    c.ParentID,
	}
}

func (r categoryRow) toModel() models.Category {
	return models.Category{
		ID:          r.ID,
		WebLogID:    r.WebLogID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		ParentID:    r.ParentID,
	}
}

type pageRow struct {
	ID           models.PageID       `gorm:"primaryKey;type:uuid"`
	WebLogID     models.WebLogID     `gorm:"index;type:uuid;not null"`
	AuthorID     models.WebLogUserID `gorm:"index;type:uuid;not null"`
	Title        string              `gorm:"not null"`
	Permalink    models.Permalink    `gorm:"index:idx_page_permalink,unique,composite:web_log_id;not null"`
	PublishedOn  time.Time           `gorm:"not null"`
	UpdatedOn    time.Time           `gorm:"not null"`
	IsInPageList bool
	Template     *string
	Text         string
}

func (pageRow) TableName() string { return "page" }

func pageToRow(p models.Page) pageRow {
	return pageRow{
		ID:           p.ID,
		WebLogID:     p.WebLogID,
		AuthorID:     p.AuthorID,
		Title:        p.Title,
		Permalink:    p.Permalink,
		PublishedOn:  p.PublishedOn.UTC(),
		UpdatedOn:    p.UpdatedOn.UTC(),
		IsInPageList: p.IsInPageList,
		Template:     p.Template,
		Text:         p.Text,
	}
}

func (r pageRow) toModel() models.Page {
	return models.Page{
		ID:           r.ID,
		WebLogID:     r.WebLogID,
		AuthorID:     r.AuthorID,
		Title:        r.Title,
		Permalink:    r.Permalink,
		PublishedOn:  r.PublishedOn,
		UpdatedOn:    r.UpdatedOn,
		IsInPageList: r.IsInPageList,
		Template:     r.Template,
		Text:         r.Text,
	}
}

type pageMetaRow struct {
	PageID models.PageID `gorm:"primaryKey;type:uuid"`
	Name   string        `gorm:"primaryKey"`
	Value  string        `gorm:"primaryKey"`
}

func (pageMetaRow) TableName() string { return "page_meta" }

type pagePermalinkRow struct {
	PageID    models.PageID    `gorm:"primaryKey;type:uuid"`
	Permalink models.Permalink `gorm:"primaryKey;index"`
}

func (pagePermalinkRow) TableName() string { return "page_permalink" }

type pageRevisionRow struct {
	PageID models.PageID `gorm:"primaryKey;type:uuid"`
	AsOf   time.Time     `gorm:"primaryKey"`
	Text   string        `gorm:"primaryKey;column:revision_text"`
}

func (pageRevisionRow) TableName() string { return "page_revision" }

type postRow struct {
	ID          models.PostID       `gorm:"primaryKey;type:uuid"`
	WebLogID    models.WebLogID     `gorm:"index;type:uuid;not null"`
	AuthorID    models.WebLogUserID `gorm:"index;type:uuid;not null"`
	Status      models.PostStatus   `gorm:"not null"`
	Title       string              `gorm:"not null"`
	Permalink   models.Permalink    `gorm:"index:idx_post_permalink,unique,composite:web_log_id;not null"`
	PublishedOn *time.Time          `gorm:"index"`
	UpdatedOn   time.Time           `gorm:"not null"`
	Template    *string
	Text        string
	Episode     *models.Episode `gorm:"serializer:json"`
}

func (postRow) TableName() string { return "post" }

func postToRow(p models.Post) postRow {
	return postRow{
		ID:          p.ID,
		WebLogID:    p.WebLogID,
		AuthorID:    p.AuthorID,
		Status:      p.Status,
		Title:       p.Title,
		Permalink:   p.Permalink,
		PublishedOn: utcPtr(p.PublishedOn),
		UpdatedOn:   p.UpdatedOn.UTC(),
		Template:    p.Template,
		Text:        p.Text,
		Episode:     p.Episode,
	}
}

func (r postRow) toModel() models.Post {
	return models.Post{
		ID:          r.ID,
		WebLogID:    r.WebLogID,
		AuthorID:    r.AuthorID,
		Status:      r.Status,
		Title:       r.Title,
		Permalink:   r.Permalink,
		PublishedOn: r.PublishedOn,
		UpdatedOn:   r.UpdatedOn,
		Template:    r.Template,
		Text:        r.Text,
		Episode:     r.Episode,
	}
}

type postCategoryRow struct {
	PostID     models.PostID     `gorm:"primaryKey;type:uuid"`
	CategoryID models.CategoryID `gorm:"primaryKey;type:uuid;index"`
}

func (postCategoryRow) TableName() string { return "post_category" }

type postTagRow struct {
	PostID models.PostID `gorm:"primaryKey;type:uuid"`
	Tag    string        `gorm:"primaryKey;index"`
}

func (postTagRow) TableName() string { return "post_tag" }

type postMetaRow struct {
	PostID models.PostID `gorm:"primaryKey;type:uuid"`
	Name   string        `gorm:"primaryKey"`
	Value  string        `gorm:"primaryKey"`
}

func (postMetaRow) TableName() string { return "post_meta" }

type postPermalinkRow struct {
	PostID    models.PostID    `gorm:"primaryKey;type:uuid"`
	Permalink models.Permalink `gorm:"primaryKey;index"`
}

func (postPermalinkRow) TableName() string { return "post_permalink" }

type postRevisionRow struct {
	PostID models.PostID `gorm:"primaryKey;type:uuid"`
	AsOf   time.Time     `gorm:"primaryKey"`
	Text   string        `gorm:"primaryKey;column:revision_text"`
}

func (postRevisionRow) TableName() string { return "post_revision" }

type tagMapRow struct {
	ID       models.TagMapID `gorm:"primaryKey;type:uuid"`
	WebLogID models.WebLogID `gorm:"index:idx_tag_map_tag,unique;index:idx_tag_map_url,unique;type:uuid;not null"`
	Tag      string          `gorm:"index:idx_tag_map_tag,unique;not null"`
	URLValue string          `gorm:"index:idx_tag_map_url,unique;not null"`
}

func (tagMapRow) TableName() string { return "tag_map" }

func tagMapToRow(m models.TagMap) tagMapRow {
	return tagMapRow{ID: m.ID, WebLogID: m.WebLogID, Tag: m.Tag, URLValue: m.URLValue}
}

func (r tagMapRow) toModel() models.TagMap {
	return models.TagMap{ID: r.ID, WebLogID: r.WebLogID, Tag: r.Tag, URLValue: r.URLValue}
}

type themeRow struct {
	ID      models.ThemeID `gorm:"primaryKey"`
	Name    string         `gorm:"not null"`
	Version string         `gorm:"not null"`
}

func (themeRow) TableName() string { return "theme" }

type themeTemplateRow struct {
	ThemeID models.ThemeID `gorm:"primaryKey"`
	Name    string         `gorm:"primaryKey"`
	Text    string         `gorm:"column:template_text"`
}

func (themeTemplateRow) TableName() string { return "theme_template" }

type themeAssetRow struct {
	ThemeID   models.ThemeID `gorm:"primaryKey"`
	Path      string         `gorm:"primaryKey"`
	UpdatedOn time.Time      `gorm:"not null"`
	Data      []byte
}

func (themeAssetRow) TableName() string { return "theme_asset" }

func themeAssetToRow(a models.ThemeAsset) themeAssetRow {
	return themeAssetRow{ThemeID: a.ID.ThemeID, Path: a.ID.Path, UpdatedOn: a.UpdatedOn, Data: a.Data}
}

func (r themeAssetRow) toModel() models.ThemeAsset {
	return models.ThemeAsset{
		ID:        models.ThemeAssetID{ThemeID: r.ThemeID, Path: r.Path},
		UpdatedOn: r.UpdatedOn,
		Data:      r.Data,
	}
}

type uploadRow struct {
	ID        models.UploadID  `gorm:"primaryKey;type:uuid"`
	WebLogID  models.WebLogID  `gorm:"index:idx_upload_path,unique;type:uuid;not null"`
	Path      models.Permalink `gorm:"index:idx_upload_path,unique;not null"`
	UpdatedOn time.Time        `gorm:"not null"`
	Data      []byte
}

func (uploadRow) TableName() string { return "upload" }

func uploadToRow(u models.Upload) uploadRow {
	return uploadRow{ID: u.ID, WebLogID: u.WebLogID, Path: u.Path, UpdatedOn: u.UpdatedOn, Data: u.Data}
}

func (r uploadRow) toModel() models.Upload {
	return models.Upload{ID: r.ID, WebLogID: r.WebLogID, Path: r.Path, UpdatedOn: r.UpdatedOn, Data: r.Data}
}

type webLogUserRow struct {
	ID            models.WebLogUserID `gorm:"primaryKey;type:uuid"`
	WebLogID      models.WebLogID     `gorm:"index:idx_user_email,unique;type:uuid;not null"`
	Email         string              `gorm:"index:idx_user_email,unique;not null"`
	FirstName     string              `gorm:"not null"`
	LastName      string              `gorm:"not null"`
	PreferredName string
	PasswordHash  string             `gorm:"not null"`
	URL           *string
	AccessLevel   models.AccessLevel `gorm:"not null"`
	CreatedOn     time.Time          `gorm:"not null"`
	LastSeenOn    *time.Time
}

func (webLogUserRow) TableName() string { return "web_log_user" }

func userToRow(u models.WebLogUser) webLogUserRow {
	return webLogUserRow{
		ID:            u.ID,
		WebLogID:      u.WebLogID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		PreferredName: u.PreferredName,
		PasswordHash:  u.PasswordHash,
		URL:           u.URL,
		AccessLevel:   u.AccessLevel,
		CreatedOn:     u.CreatedOn.UTC(),
		LastSeenOn:    utcPtr(u.LastSeenOn),
	}
}

func (r webLogUserRow) toModel() models.WebLogUser {
	return models.WebLogUser{
		ID:            r.ID,
		WebLogID:      r.WebLogID,
		Email:         r.Email,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		PreferredName: r.PreferredName,
		PasswordHash:  r.PasswordHash,
		URL:           r.URL,
		AccessLevel:   r.AccessLevel,
		CreatedOn:     r.CreatedOn,
		LastSeenOn:    r.LastSeenOn,
	}
}

// versionRow holds the single schema version marker.
type versionRow struct {
	ID      int    `gorm:"primaryKey"`
	Version string `gorm:"not null"`
}

func (versionRow) TableName() string { return "db_version" }
