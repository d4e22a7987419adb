package models

import "time"

// Permalink is a tenant-unique URL path identifying a page or post.
type Permalink string

func (p Permalink) String() string { return string(p) }
func (p Permalink) IsZero() bool   { return p == "" }

// PostStatus is the publication state of a post.
type PostStatus string

const (
	Draft     PostStatus = "draft"
	Published PostStatus = "published"
)

// MetaItem is a name/value pair attached to a page or post.
type MetaItem struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Revision is a historical snapshot of a page or post's body text. Two
// revisions are the same revision only when both the timestamp and the text
// match; display order is timestamp descending.
type Revision struct {
	AsOf time.Time `json:"as_of"`
	Text string    `json:"text"`
}

// Episode is the podcast episode metadata optionally carried by a post.
type Episode struct {
	Media              string          `json:"media"`
	Length             int64           `json:"length"`
	Duration           *time.Duration  `json:"duration,omitempty"`
	MediaType          *string         `json:"media_type,omitempty"`
	ImageURL           *Permalink      `json:"image_url,omitempty"`
	Subtitle           *string         `json:"subtitle,omitempty"`
	Explicit           *ExplicitRating `json:"explicit,omitempty"`
	ChapterFile        *string         `json:"chapter_file,omitempty"`
	ChapterType        *string         `json:"chapter_type,omitempty"`
	TranscriptURL      *string         `json:"transcript_url,omitempty"`
	TranscriptType     *string         `json:"transcript_type,omitempty"`
	TranscriptLang     *string         `json:"transcript_lang,omitempty"`
	TranscriptCaptions *bool           `json:"transcript_captions,omitempty"`
	SeasonNumber       *int            `json:"season_number,omitempty"`
	SeasonDescription  *string         `json:"season_description,omitempty"`
	EpisodeNumber      *float64        `json:"episode_number,omitempty"`
	EpisodeDescription *string         `json:"episode_description,omitempty"`
}

// Page is a piece of long-lived content (About, Contact, ...) belonging to a
// web log. Permalink is unique within the web log at any instant; prior
// permalinks keep the history for redirect resolution.
type Page struct {
	ID              PageID       `json:"id"`
	WebLogID        WebLogID     `json:"web_log_id"`
	AuthorID        WebLogUserID `json:"author_id"`
	Title           string       `json:"title"`
	Permalink       Permalink    `json:"permalink"`
	PublishedOn     time.Time    `json:"published_on"`
	UpdatedOn       time.Time    `json:"updated_on"`
	IsInPageList    bool         `json:"is_in_page_list"`
	Template        *string      `json:"template,omitempty"`
	Text            string       `json:"text"`
	Metadata        []MetaItem   `json:"metadata,omitempty"`
	PriorPermalinks []Permalink  `json:"prior_permalinks,omitempty"`
	Revisions       []Revision   `json:"revisions,omitempty"`
}

// Post is a dated piece of content belonging to a web log.
type Post struct {
	ID              PostID       `json:"id"`
	WebLogID        WebLogID     `json:"web_log_id"`
	AuthorID        WebLogUserID `json:"author_id"`
	Status          PostStatus   `json:"status"`
	Title           string       `json:"title"`
	Permalink       Permalink    `json:"permalink"`
	PublishedOn     *time.Time   `json:"published_on,omitempty"`
	UpdatedOn       time.Time    `json:"updated_on"`
	Template        *string      `json:"template,omitempty"`
	Text            string       `json:"text"`
	CategoryIDs     []CategoryID `json:"category_ids,omitempty"`
	Tags            []string     `json:"tags,omitempty"`
	Episode         *Episode     `json:"episode,omitempty"`
	Metadata        []MetaItem   `json:"metadata,omitempty"`
	PriorPermalinks []Permalink  `json:"prior_permalinks,omitempty"`
	Revisions       []Revision   `json:"revisions,omitempty"`
}

// Category organizes posts; ParentID forms a forest within the web log.
type Category struct {
	ID          CategoryID  `json:"id"`
	WebLogID    WebLogID    `json:"web_log_id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description *string     `json:"description,omitempty"`
	ParentID    *CategoryID `json:"parent_id,omitempty"`
}

// TagMap overrides the URL value derived for a tag; unique per (web log,
// tag) and per (web log, URL value).
type TagMap struct {
	ID       TagMapID `json:"id"`
	WebLogID WebLogID `json:"web_log_id"`
	Tag      string   `json:"tag"`
	URLValue string   `json:"url_value"`
}
