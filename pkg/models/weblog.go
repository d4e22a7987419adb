package models

import "github.com/google/uuid"

// UploadDestination says where a web log keeps its uploaded files.
type UploadDestination string

const (
	UploadToDatabase UploadDestination = "database"
	UploadToDisk     UploadDestination = "disk"
)

// ExplicitRating is the iTunes explicit-content rating for a podcast.
type ExplicitRating string

const (
	ExplicitYes   ExplicitRating = "yes"
	ExplicitNo    ExplicitRating = "no"
	ExplicitClean ExplicitRating = "clean"
)

// PodcastMedium describes what a podcast feed carries (RSS namespace
// extension value: podcast, music, audiobook, ...).
type PodcastMedium string

const (
	MediumPodcast    PodcastMedium = "podcast"
	MediumMusic      PodcastMedium = "music"
	MediumVideo      PodcastMedium = "video"
	MediumFilm       PodcastMedium = "film"
	MediumAudiobook  PodcastMedium = "audiobook"
	MediumNewsletter PodcastMedium = "newsletter"
	MediumBlog       PodcastMedium = "blog"
)

// CustomFeedSource is what a custom feed draws its posts from: a single
// category or a single tag.
type CustomFeedSource struct {
	Category *CategoryID `json:"category,omitempty"`
	Tag      *string     `json:"tag,omitempty"`
}

// CategoryFeedSource builds a source covering one category.
func CategoryFeedSource(id CategoryID) CustomFeedSource {
	return CustomFeedSource{Category: &id}
}

// TagFeedSource builds a source covering one tag.
func TagFeedSource(tag string) CustomFeedSource {
	return CustomFeedSource{Tag: &tag}
}

// PodcastOptions holds the podcast metadata for a custom feed. Only the
// storage of these settings is in scope here; feed rendering interprets them.
type PodcastOptions struct {
	Title            string         `json:"title"`
	Subtitle         *string        `json:"subtitle,omitempty"`
	ItemsInFeed      int            `json:"items_in_feed"`
	Summary          string         `json:"summary"`
	DisplayedAuthor  string         `json:"displayed_author"`
	Email            string         `json:"email"`
	ImageURL         Permalink      `json:"image_url"`
	AppleCategory    string         `json:"apple_category"`
	AppleSubcategory *string        `json:"apple_subcategory,omitempty"`
	Explicit         ExplicitRating `json:"explicit"`
	DefaultMediaType *string        `json:"default_media_type,omitempty"`
	MediaBaseURL     *string        `json:"media_base_url,omitempty"`
	PodcastGUID      *uuid.UUID     `json:"podcast_guid,omitempty"`
	FundingURL       *string        `json:"funding_url,omitempty"`
	FundingText      *string        `json:"funding_text,omitempty"`
	Medium           *PodcastMedium `json:"medium,omitempty"`
}

// CustomFeed is an additional RSS feed a web log serves beside the main one,
// fed by a category or tag, optionally as a podcast.
type CustomFeed struct {
	ID      CustomFeedID     `json:"id"`
	Source  CustomFeedSource `json:"source"`
	Path    Permalink        `json:"path"`
	Podcast *PodcastOptions  `json:"podcast,omitempty"`
}

// RSSOptions is the feed configuration of a web log.
type RSSOptions struct {
	IsFeedEnabled     bool         `json:"is_feed_enabled"`
	FeedName          string       `json:"feed_name"`
	ItemsInFeed       *int         `json:"items_in_feed,omitempty"`
	IsCategoryEnabled bool         `json:"is_category_enabled"`
	IsTagEnabled      bool         `json:"is_tag_enabled"`
	Copyright         *string      `json:"copyright,omitempty"`
	CustomFeeds       []CustomFeed `json:"custom_feeds,omitempty"`
}

// RedirectRule maps an incoming URL (or regex) to its destination.
type RedirectRule struct {
	From    string `json:"from"`
	To      string `json:"to"`
	IsRegex bool   `json:"is_regex"`
}

// WebLog is the tenant record; every other entity except themes belongs to
// exactly one. URLBase must be globally unique across all web logs.
type WebLog struct {
	ID            WebLogID          `json:"id"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Subtitle      *string           `json:"subtitle,omitempty"`
	DefaultPage   string            `json:"default_page"`
	PostsPerPage  int               `json:"posts_per_page"`
	ThemeID       ThemeID           `json:"theme_id"`
	URLBase       string            `json:"url_base"`
	TimeZone      string            `json:"time_zone"`
	RSS           RSSOptions        `json:"rss"`
	AutoHTMX      bool              `json:"auto_htmx"`
	Uploads       UploadDestination `json:"uploads"`
	RedirectRules []RedirectRule    `json:"redirect_rules,omitempty"`
}
