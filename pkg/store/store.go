// Package store defines the backend-neutral data access contract for the
// quillcms content graph, together with the algorithms every adapter shares:
// the child-collection differ, the category hierarchy builder, the versioned
// migration engine, and the retry policy for distributed backends.
//
// The contract is implemented by three structurally different adapters:
//
//   - [github.com/quillcms/quillcms/pkg/store/postgres.Store]: normalized
//     relational tables via GORM, child rows kept in sync with the differ
//   - [github.com/quillcms/quillcms/pkg/store/surreal.Store]: whole
//     aggregates as SurrealDB documents, queried with SurrealQL
//   - [github.com/quillcms/quillcms/pkg/store/sqlite.Store]: hybrid layout,
//     JSON documents inside relational tables queried via json_extract
//
// All three must produce contract-identical results for every operation;
// pkg/store/storetest holds the conformance suite that checks them.
//
// # Tenant isolation
//
// Every operation that could cross tenant boundaries takes a
// [github.com/quillcms/quillcms/pkg/models.WebLogID] and either filters by it
// in the query or fetches by primary key and verifies the tenant field,
// returning "not found" on a mismatch. Primary keys are globally unique but
// not secret; skipping the check would leak another tenant's data. Mutations
// that fail the check are no-ops reporting "not found", never errors.
//
// # Not found, errors, and consistency
//
// Finders return (nil, nil) for missing or foreign-tenant records; an error
// always means the store itself failed. Uniqueness and referential failures
// surface as [ConstraintError] where an operation is designed to fail
// gracefully. Multi-step updates (post text plus tags, categories, metadata,
// permalinks, revisions) are NOT atomic: each step is an independent write,
// the first failure propagates, later steps stay unattempted, and the caller
// owns any compensation. This weak-consistency behavior is the documented
// contract, not an oversight to be patched with transactions.
package store

import (
	"context"
	"time"

	"github.com/quillcms/quillcms/pkg/models"
)

// CategoryStore is the contract for category persistence.
type CategoryStore interface {
	// Add stores a new category.
	Add(ctx context.Context, cat models.Category) error

	// CountAll returns the number of categories in the web log.
	CountAll(ctx context.Context, webLogID models.WebLogID) (int64, error)

	// CountTopLevel returns the number of categories without a parent.
	CountTopLevel(ctx context.Context, webLogID models.WebLogID) (int64, error)

	// Delete removes the category. Child categories are reassigned to the
	// deleted category's parent (or detached if it had none), and post
	// associations with the category are removed, before the category row
	// goes away. Returns false when the category does not exist in the
	// given web log.
	Delete(ctx context.Context, id models.CategoryID, webLogID models.WebLogID) (bool, error)

	// FindAllForView returns the web log's categories as a display-ready
	// pre-order forest with subtree post counts (see BuildDisplayCategories).
	FindAllForView(ctx context.Context, webLogID models.WebLogID) ([]DisplayCategory, error)

	// FindByID returns the category, or nil when it does not exist in the
	// given web log.
	FindByID(ctx context.Context, id models.CategoryID, webLogID models.WebLogID) (*models.Category, error)

	// FindByWebLog returns all categories for the web log, unordered.
	FindByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.Category, error)

	// Restore bulk-loads categories from a backup.
	Restore(ctx context.Context, cats []models.Category) error

	// Update saves changes to an existing category; a category that fails
	// the tenant check is left untouched.
	Update(ctx context.Context, cat models.Category) error
}

// PageStore is the contract for page persistence.
type PageStore interface {
	// Add stores a new page with all its child collections.
	Add(ctx context.Context, page models.Page) error

	// All returns all of the web log's pages without their text, metadata,
	// revisions, or prior permalinks, ordered by title (case-insensitive).
	All(ctx context.Context, webLogID models.WebLogID) ([]models.Page, error)

	// CountAll returns the number of pages in the web log.
	CountAll(ctx context.Context, webLogID models.WebLogID) (int64, error)

	// CountListed returns the number of pages shown in the page list.
	CountListed(ctx context.Context, webLogID models.WebLogID) (int64, error)

	// Delete removes the page and its child collections; false when the
	// page does not exist in the given web log.
	Delete(ctx context.Context, id models.PageID, webLogID models.WebLogID) (bool, error)

	// FindByID returns the page without revisions and prior permalinks, or
	// nil when it does not exist in the given web log.
	FindByID(ctx context.Context, id models.PageID, webLogID models.WebLogID) (*models.Page, error)

	// FindFullByID returns the page with every child collection populated.
	FindFullByID(ctx context.Context, id models.PageID, webLogID models.WebLogID) (*models.Page, error)

	// FindByPermalink returns the page currently at the permalink, or nil.
	FindByPermalink(ctx context.Context, permalink models.Permalink, webLogID models.WebLogID) (*models.Page, error)

	// FindCurrentPermalink resolves a prior permalink to the page's current
	// one, for redirects. Nil when no page ever had any of the old links.
	FindCurrentPermalink(ctx context.Context, permalinks []models.Permalink, webLogID models.WebLogID) (*models.Permalink, error)

	// FindFullByWebLog returns every page with all children, for backups.
	FindFullByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.Page, error)

	// FindListed returns the pages shown in the page list, without text,
	// ordered by title (case-insensitive).
	FindListed(ctx context.Context, webLogID models.WebLogID) ([]models.Page, error)

	// FindPageOfPages returns page pageNbr (1-based, 25 per page, plus one
	// extra row so the caller can detect more pages), ordered by title
	// (case-insensitive), without metadata, revisions, or prior permalinks.
	FindPageOfPages(ctx context.Context, webLogID models.WebLogID, pageNbr int) ([]models.Page, error)

	// Restore bulk-loads pages from a backup.
	Restore(ctx context.Context, pages []models.Page) error

	// Update saves changes to a page, synchronizing metadata, prior
	// permalinks, and revisions with minimal writes.
	Update(ctx context.Context, page models.Page) error

	// UpdatePriorPermalinks replaces the page's prior-permalink history;
	// false when the page does not exist in the given web log.
	UpdatePriorPermalinks(ctx context.Context, id models.PageID, webLogID models.WebLogID, permalinks []models.Permalink) (bool, error)
}

// PostStore is the contract for post persistence.
type PostStore interface {
	// Add stores a new post with all its child collections.
	Add(ctx context.Context, post models.Post) error

	// CountByStatus returns the number of posts with the given status.
	CountByStatus(ctx context.Context, status models.PostStatus, webLogID models.WebLogID) (int64, error)

	// Delete removes the post and its child collections; false when the
	// post does not exist in the given web log.
	Delete(ctx context.Context, id models.PostID, webLogID models.WebLogID) (bool, error)

	// FindByID returns the post without revisions and prior permalinks, or
	// nil when it does not exist in the given web log.
	FindByID(ctx context.Context, id models.PostID, webLogID models.WebLogID) (*models.Post, error)

	// FindFullByID returns the post with every child collection populated.
	FindFullByID(ctx context.Context, id models.PostID, webLogID models.WebLogID) (*models.Post, error)

	// FindByPermalink returns the post currently at the permalink, or nil.
	FindByPermalink(ctx context.Context, permalink models.Permalink, webLogID models.WebLogID) (*models.Post, error)

	// FindCurrentPermalink resolves a prior permalink to the post's current
	// one, for redirects.
	FindCurrentPermalink(ctx context.Context, permalinks []models.Permalink, webLogID models.WebLogID) (*models.Permalink, error)

	// FindFullByWebLog returns every post with all children, for backups.
	FindFullByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.Post, error)

	// FindPageOfCategorizedPosts returns published posts in any of the
	// given categories, newest first, page pageNbr of postsPerPage (+1).
	FindPageOfCategorizedPosts(ctx context.Context, webLogID models.WebLogID, categoryIDs []models.CategoryID, pageNbr, postsPerPage int) ([]models.Post, error)

	// FindPageOfPosts returns posts of any status, ordered by published
	// date descending with drafts (by updated date) first, page pageNbr of
	// postsPerPage (+1); for the admin list.
	FindPageOfPosts(ctx context.Context, webLogID models.WebLogID, pageNbr, postsPerPage int) ([]models.Post, error)

	// FindPageOfPublishedPosts returns published posts, newest first, page
	// pageNbr of postsPerPage (+1).
	FindPageOfPublishedPosts(ctx context.Context, webLogID models.WebLogID, pageNbr, postsPerPage int) ([]models.Post, error)

	// FindPageOfTaggedPosts returns published posts carrying the tag,
	// newest first, page pageNbr of postsPerPage (+1).
	FindPageOfTaggedPosts(ctx context.Context, webLogID models.WebLogID, tag string, pageNbr, postsPerPage int) ([]models.Post, error)

	// FindSurroundingPosts returns the published posts immediately older
	// and newer than the given publish instant; either may be nil.
	FindSurroundingPosts(ctx context.Context, webLogID models.WebLogID, publishedOn time.Time) (older, newer *models.Post, err error)

	// Restore bulk-loads posts from a backup.
	Restore(ctx context.Context, posts []models.Post) error

	// Update saves changes to a post, synchronizing categories, tags,
	// metadata, prior permalinks, and revisions with minimal writes.
	Update(ctx context.Context, post models.Post) error

	// UpdatePriorPermalinks replaces the post's prior-permalink history;
	// false when the post does not exist in the given web log.
	UpdatePriorPermalinks(ctx context.Context, id models.PostID, webLogID models.WebLogID, permalinks []models.Permalink) (bool, error)
}

// TagMapStore is the contract for tag mapping persistence.
type TagMapStore interface {
	// Delete removes the mapping; false when it does not exist in the
	// given web log.
	Delete(ctx context.Context, id models.TagMapID, webLogID models.WebLogID) (bool, error)

	// FindByID returns the mapping, or nil when it does not exist in the
	// given web log.
	FindByID(ctx context.Context, id models.TagMapID, webLogID models.WebLogID) (*models.TagMap, error)

	// FindByURLValue returns the mapping with the given URL value, or nil.
	FindByURLValue(ctx context.Context, urlValue string, webLogID models.WebLogID) (*models.TagMap, error)

	// FindByWebLog returns all mappings for the web log, ordered by tag.
	FindByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.TagMap, error)

	// FindMappingForTags returns the mappings defined for any of the tags.
	FindMappingForTags(ctx context.Context, tags []string, webLogID models.WebLogID) ([]models.TagMap, error)

	// Restore bulk-loads mappings from a backup.
	Restore(ctx context.Context, mappings []models.TagMap) error

	// Save upserts the mapping.
	Save(ctx context.Context, mapping models.TagMap) error
}

// ThemeStore is the contract for theme persistence.
type ThemeStore interface {
	// All returns all themes (except the internal admin theme), sorted by
	// ID, with template text omitted.
	All(ctx context.Context) ([]models.Theme, error)

	// Delete removes the theme and all of its assets; false when no theme
	// has the ID.
	Delete(ctx context.Context, id models.ThemeID) (bool, error)

	// Exists reports whether a theme with the ID is stored.
	Exists(ctx context.Context, id models.ThemeID) (bool, error)

	// FindByID returns the theme with full template text, or nil.
	FindByID(ctx context.Context, id models.ThemeID) (*models.Theme, error)

	// FindByIDWithoutText returns the theme with template names only.
	FindByIDWithoutText(ctx context.Context, id models.ThemeID) (*models.Theme, error)

	// Save upserts the theme.
	Save(ctx context.Context, theme models.Theme) error
}

// ThemeAssetStore is the contract for theme asset persistence.
type ThemeAssetStore interface {
	// All returns every asset of every theme, without file data.
	All(ctx context.Context) ([]models.ThemeAsset, error)

	// DeleteByTheme removes all assets belonging to the theme.
	DeleteByTheme(ctx context.Context, themeID models.ThemeID) error

	// FindByID returns the asset with its data, or nil.
	FindByID(ctx context.Context, id models.ThemeAssetID) (*models.ThemeAsset, error)

	// FindByTheme returns the theme's assets without file data.
	FindByTheme(ctx context.Context, themeID models.ThemeID) ([]models.ThemeAsset, error)

	// FindByThemeWithData returns the theme's assets with file data.
	FindByThemeWithData(ctx context.Context, themeID models.ThemeID) ([]models.ThemeAsset, error)

	// Save upserts the asset.
	Save(ctx context.Context, asset models.ThemeAsset) error
}

// UploadStore is the contract for uploaded file persistence.
type UploadStore interface {
	// Add stores a new upload.
	Add(ctx context.Context, upload models.Upload) error

	// Delete removes the upload; false when it does not exist in the given
	// web log.
	Delete(ctx context.Context, id models.UploadID, webLogID models.WebLogID) (bool, error)

	// FindByPath returns the upload at the path with its data, or nil.
	FindByPath(ctx context.Context, path models.Permalink, webLogID models.WebLogID) (*models.Upload, error)

	// FindByWebLog returns the web log's uploads without file data.
	FindByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.Upload, error)

	// FindByWebLogWithData returns the web log's uploads with file data.
	FindByWebLogWithData(ctx context.Context, webLogID models.WebLogID) ([]models.Upload, error)

	// Restore bulk-loads uploads from a backup. Implementations batch the
	// writes; upload payloads are large, so batches are small.
	Restore(ctx context.Context, uploads []models.Upload) error
}

// WebLogStore is the contract for web log (tenant) persistence.
type WebLogStore interface {
	// Add stores a new web log.
	Add(ctx context.Context, webLog models.WebLog) error

	// All returns every web log.
	All(ctx context.Context) ([]models.WebLog, error)

	// Delete removes the web log and cascades over everything it owns:
	// posts, pages, categories, tag mappings, uploads, and users, along
	// with their child collections.
	Delete(ctx context.Context, id models.WebLogID) error

	// FindByHost returns the web log whose URL base matches, or nil.
	FindByHost(ctx context.Context, url string) (*models.WebLog, error)

	// FindByID returns the web log, or nil.
	FindByID(ctx context.Context, id models.WebLogID) (*models.WebLog, error)

	// UpdateRedirectRules saves only the web log's redirect rules.
	UpdateRedirectRules(ctx context.Context, webLog models.WebLog) error

	// UpdateRSSOptions saves only the web log's RSS options.
	UpdateRSSOptions(ctx context.Context, webLog models.WebLog) error

	// UpdateSettings saves the web log's base settings (name, slug, theme,
	// time zone, ...), leaving RSS options and redirect rules alone.
	UpdateSettings(ctx context.Context, webLog models.WebLog) error
}

// WebLogUserStore is the contract for user persistence.
type WebLogUserStore interface {
	// Add stores a new user.
	Add(ctx context.Context, user models.WebLogUser) error

	// Delete removes the user. Returns false when the user does not exist
	// in the given web log, and a ConstraintError when the user still has
	// authored pages or posts.
	Delete(ctx context.Context, id models.WebLogUserID, webLogID models.WebLogID) (bool, error)

	// FindByEmail returns the user with the e-mail address, or nil.
	FindByEmail(ctx context.Context, email string, webLogID models.WebLogID) (*models.WebLogUser, error)

	// FindByID returns the user, or nil when they do not exist in the
	// given web log.
	FindByID(ctx context.Context, id models.WebLogUserID, webLogID models.WebLogID) (*models.WebLogUser, error)

	// FindByWebLog returns the web log's users, ordered by display name.
	FindByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.WebLogUser, error)

	// FindNames returns id/display-name pairs for the given users, for
	// attribution lists.
	FindNames(ctx context.Context, webLogID models.WebLogID, ids []models.WebLogUserID) ([]UserName, error)

	// Restore bulk-loads users from a backup.
	Restore(ctx context.Context, users []models.WebLogUser) error

	// SetLastSeen updates the user's last-seen timestamp to now; a user
	// that fails the tenant check is left untouched.
	SetLastSeen(ctx context.Context, id models.WebLogUserID, webLogID models.WebLogID) error

	// Update saves changes to an existing user.
	Update(ctx context.Context, user models.WebLogUser) error
}

// UserName pairs a user ID with the name to display for it.
type UserName struct {
	ID   models.WebLogUserID `json:"id"`
	Name string              `json:"name"`
}

// Store aggregates the per-entity contracts behind one umbrella. StartUp
// must be called, and must succeed, before any other operation; it connects
// nothing new but ensures the physical schema exists and runs any pending
// migrations (see Migrator). Close releases the adapter's connection.
//
// Implementations are safe for concurrent use by multiple in-process
// callers; each Store instance owns its connection or session for its
// lifetime.
type Store interface {
	Categories() CategoryStore
	Pages() PageStore
	Posts() PostStore
	TagMaps() TagMapStore
	Themes() ThemeStore
	ThemeAssets() ThemeAssetStore
	Uploads() UploadStore
	WebLogs() WebLogStore
	WebLogUsers() WebLogUserStore

	// StartUp ensures the schema exists and is at the current version.
	// It must not run concurrently with itself or any other operation.
	StartUp(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// PageListPageSize is the fixed page size for FindPageOfPages.
const PageListPageSize = 25

// RestoreBatchSize is how many records a Restore implementation writes per
// batch; RestoreBinaryBatchSize applies to entities carrying file payloads.
const (
	RestoreBatchSize       = 100
	RestoreBinaryBatchSize = 5
)
