// Package storetest holds the conformance suite every storage backend must
// pass. The contract promises identical observable behavior across the
// document, relational, and hybrid adapters; running this suite against each
// is what backs that promise up.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillcms/quillcms/pkg/models"
	"github.com/quillcms/quillcms/pkg/store"
)

// Factory builds a fresh, started store for one test; the suite never reuses
// a store across tests. Cleanup registered on t handles teardown.
type Factory func(t *testing.T) store.Store

// Run exercises the full contract against the backend the factory provides.
func Run(t *testing.T, factory Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"WebLogRoundTrip", testWebLogRoundTrip},
		{"WebLogSettingsLeaveRSSAlone", testWebLogSettingsLeaveRSSAlone},
		{"TenantIsolation", testTenantIsolation},
		{"NotFoundIsNil", testNotFoundIsNil},
		{"PageRoundTrip", testPageRoundTrip},
		{"PageChildSync", testPageChildSync},
		{"PagePermalinkHistory", testPagePermalinkHistory},
		{"PageListOrdering", testPageListOrdering},
		{"PagePagination", testPagePagination},
		{"PostStatusCounts", testPostStatusCounts},
		{"PostPagination", testPostPagination},
		{"PostTaggedAndCategorized", testPostTaggedAndCategorized},
		{"PostSurrounding", testPostSurrounding},
		{"PostZonedPublishTimes", testPostZonedPublishTimes},
		{"CategoryDeleteReparents", testCategoryDeleteReparents},
		{"CategoryHierarchyView", testCategoryHierarchyView},
		{"TagMapLookups", testTagMapLookups},
		{"UserDeleteBlockedByContent", testUserDeleteBlockedByContent},
		{"UserLastSeen", testUserLastSeen},
		{"ThemeLifecycle", testThemeLifecycle},
		{"UploadLifecycle", testUploadLifecycle},
		{"WebLogCascadeDelete", testWebLogCascadeDelete},
		{"StartUpIsIdempotent", testStartUpIsIdempotent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := factory(t)
			tc.fn(t, s)
		})
	}
}

func seedWebLog(t *testing.T, s store.Store) models.WebLog {
	t.Helper()
	webLog := models.WebLog{
		ID:           models.NewWebLogID(),
		Name:         "Test Log",
		Slug:         "test-log",
		DefaultPage:  "posts",
		PostsPerPage: 10,
		ThemeID:      models.ThemeID("default"),
		URLBase:      fmt.Sprintf("https://%s.example.com", models.NewWebLogID()),
		TimeZone:     "Etc/UTC",
		Uploads:      models.UploadToDatabase,
		RSS:          models.RSSOptions{IsFeedEnabled: true, FeedName: "feed.xml"},
	}
	require.NoError(t, s.WebLogs().Add(context.Background(), webLog))
	return webLog
}

func seedUser(t *testing.T, s store.Store, webLogID models.WebLogID) models.WebLogUser {
	t.Helper()
	user := models.WebLogUser{
		ID:           models.NewWebLogUserID(),
		WebLogID:     webLogID,
		Email:        fmt.Sprintf("%s@example.com", models.NewWebLogUserID()),
		FirstName:    "Test",
		LastName:     "Author",
		PasswordHash: "not-a-real-hash",
		AccessLevel:  models.Author,
		CreatedOn:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.WebLogUsers().Add(context.Background(), user))
	return user
}

func seedPost(t *testing.T, s store.Store, webLogID models.WebLogID, authorID models.WebLogUserID, title string, publishedOn *time.Time) models.Post {
	t.Helper()
	status := models.Draft
	if publishedOn != nil {
		status = models.Published
	}
	post := models.Post{
		ID:          models.NewPostID(),
		WebLogID:    webLogID,
		AuthorID:    authorID,
		Status:      status,
		Title:       title,
		Permalink:   models.Permalink("/" + models.NewPostID().String() + ".html"),
		PublishedOn: publishedOn,
		UpdatedOn:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Text:        "<p>" + title + "</p>",
	}
	require.NoError(t, s.Posts().Add(context.Background(), post))
	return post
}

func utc(year int, month time.Month, day int) *time.Time {
	ts := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	return &ts
}

func testWebLogRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)

	found, err := s.WebLogs().FindByID(ctx, webLog.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, webLog.Name, found.Name)
	assert.Equal(t, webLog.URLBase, found.URLBase)

	byHost, err := s.WebLogs().FindByHost(ctx, webLog.URLBase)
	require.NoError(t, err)
	require.NotNil(t, byHost)
	assert.Equal(t, webLog.ID, byHost.ID)

	all, err := s.WebLogs().All(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, all)
}

func testWebLogSettingsLeaveRSSAlone(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)

	// Give the log some feed and redirect state first.
	webLog.RSS.FeedName = "custom.xml"
	require.NoError(t, s.WebLogs().UpdateRSSOptions(ctx, webLog))
	webLog.RedirectRules = []models.RedirectRule{{From: "/old", To: "/new"}}
	require.NoError(t, s.WebLogs().UpdateRedirectRules(ctx, webLog))

	renamed := webLog
	renamed.Name = "Renamed Log"
	renamed.RSS = models.RSSOptions{}
	renamed.RedirectRules = nil
	require.NoError(t, s.WebLogs().UpdateSettings(ctx, renamed))

	found, err := s.WebLogs().FindByID(ctx, webLog.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Renamed Log", found.Name)
	assert.Equal(t, "custom.xml", found.RSS.FeedName, "settings update must not touch RSS options")
	require.Len(t, found.RedirectRules, 1, "settings update must not touch redirect rules")
	assert.Equal(t, "/old", found.RedirectRules[0].From)
}

func testTenantIsolation(t *testing.T, s store.Store) {
	ctx := context.Background()
	mine := seedWebLog(t, s)
	theirs := seedWebLog(t, s)
	author := seedUser(t, s, mine.ID)
	post := seedPost(t, s, mine.ID, author.ID, "Mine", utc(2024, 3, 1))

	// Reads against the wrong tenant come back empty, not as errors.
	found, err := s.Posts().FindByID(ctx, post.ID, theirs.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	byLink, err := s.Posts().FindByPermalink(ctx, post.Permalink, theirs.ID)
	require.NoError(t, err)
	assert.Nil(t, byLink)

	// Mutations against the wrong tenant are no-ops.
	deleted, err := s.Posts().Delete(ctx, post.ID, theirs.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	hijacked := post
	hijacked.WebLogID = theirs.ID
	hijacked.Title = "Hijacked"
	require.NoError(t, s.Posts().Update(ctx, hijacked))

	still, err := s.Posts().FindByID(ctx, post.ID, mine.ID)
	require.NoError(t, err)
	require.NotNil(t, still)
	assert.Equal(t, "Mine", still.Title)
}

func testNotFoundIsNil(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)

	page, err := s.Pages().FindByID(ctx, models.NewPageID(), webLog.ID)
	require.NoError(t, err)
	assert.Nil(t, page)

	post, err := s.Posts().FindByPermalink(ctx, "/nope.html", webLog.ID)
	require.NoError(t, err)
	assert.Nil(t, post)

	cat, err := s.Categories().FindByID(ctx, models.NewCategoryID(), webLog.ID)
	require.NoError(t, err)
	assert.Nil(t, cat)

	theme, err := s.Themes().FindByID(ctx, models.ThemeID("missing"))
	require.NoError(t, err)
	assert.Nil(t, theme)

	deleted, err := s.TagMaps().Delete(ctx, models.NewTagMapID(), webLog.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func testPageRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)
	author := seedUser(t, s, webLog.ID)

	page := models.Page{
		ID:           models.NewPageID(),
		WebLogID:     webLog.ID,
		AuthorID:     author.ID,
		Title:        "About",
		Permalink:    "/about.html",
		PublishedOn:  time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
		UpdatedOn:    time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC),
		IsInPageList: true,
		Text:         "<p>about</p>",
		Metadata:     []models.MetaItem{{Name: "subtitle", Value: "who we are"}},
		PriorPermalinks: []models.Permalink{"/about-us.html"},
		Revisions: []models.Revision{
			{AsOf: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), Text: "<p>about</p>"},
		},
	}
	require.NoError(t, s.Pages().Add(ctx, page))

	// FindByID carries metadata but not history.
	found, err := s.Pages().FindByID(ctx, page.ID, webLog.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "About", found.Title)
	require.Len(t, found.Metadata, 1)
	assert.Empty(t, found.PriorPermalinks)
	assert.Empty(t, found.Revisions)

	full, err := s.Pages().FindFullByID(ctx, page.ID, webLog.ID)
	require.NoError(t, err)
	require.NotNil(t, full)
	assert.Equal(t, []models.Permalink{"/about-us.html"}, full.PriorPermalinks)
	require.Len(t, full.Revisions, 1)

	n, err := s.Pages().CountAll(ctx, webLog.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	listed, err := s.Pages().CountListed(ctx, webLog.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, listed)
}

func testPageChildSync(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)
	author := seedUser(t, s, webLog.ID)

	rev1 := models.Revision{AsOf: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), Text: "v1"}
	page := models.Page{
		ID:          models.NewPageID(),
		WebLogID:    webLog.ID,
		AuthorID:    author.ID,
		Title:       "Contact",
		Permalink:   "/contact.html",
		PublishedOn: rev1.AsOf,
		UpdatedOn:   rev1.AsOf,
		Text:        "v1",
		Metadata:    []models.MetaItem{{Name: "phone", Value: "555-0100"}, {Name: "email", Value: "a@example.com"}},
		Revisions:   []models.Revision{rev1},
	}
	require.NoError(t, s.Pages().Add(ctx, page))

	rev2 := models.Revision{AsOf: time.Date(2024, 2, 5, 9, 0, 0, 0, time.UTC), Text: "v2"}
	page.Text = "v2"
	page.Metadata = []models.MetaItem{{Name: "phone", Value: "555-0199"}, {Name: "email", Value: "a@example.com"}}
	page.Revisions = []models.Revision{rev1, rev2}
	require.NoError(t, s.Pages().Update(ctx, page))

	full, err := s.Pages().FindFullByID(ctx, page.ID, webLog.ID)
	require.NoError(t, err)
	require.NotNil(t, full)
	assert.ElementsMatch(t, page.Metadata, full.Metadata)
	assert.ElementsMatch(t, []models.Revision{rev1, rev2}, full.Revisions)
	assert.Equal(t, "v2", full.Text)
}

func testPagePermalinkHistory(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)
	author := seedUser(t, s, webLog.ID)

	page := models.Page{
		ID:          models.NewPageID(),
		WebLogID:    webLog.ID,
		AuthorID:    author.ID,
		Title:       "Moved",
		Permalink:   "/new-home.html",
		PublishedOn: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedOn:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Text:        "x",
	}
	require.NoError(t, s.Pages().Add(ctx, page))

	ok, err := s.Pages().UpdatePriorPermalinks(ctx, page.ID, webLog.ID,
		[]models.Permalink{"/old-home.html", "/older-home.html"})
	require.NoError(t, err)
	assert.True(t, ok)

	current, err := s.Pages().FindCurrentPermalink(ctx,
		[]models.Permalink{"/older-home.html"}, webLog.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, models.Permalink("/new-home.html"), *current)

	none, err := s.Pages().FindCurrentPermalink(ctx,
		[]models.Permalink{"/never-existed.html"}, webLog.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	ok, err = s.Pages().UpdatePriorPermalinks(ctx, models.NewPageID(), webLog.ID,
		[]models.Permalink{"/x.html"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func testPageListOrdering(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)
	author := seedUser(t, s, webLog.ID)

	titles := []string{"zebra", "Apple", "mango"}
	for _, title := range titles {
		page := models.Page{
			ID:           models.NewPageID(),
			WebLogID:     webLog.ID,
			AuthorID:     author.ID,
			Title:        title,
			Permalink:    models.Permalink("/" + title + ".html"),
			PublishedOn:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			UpdatedOn:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			IsInPageList: true,
			Text:         title,
		}
		require.NoError(t, s.Pages().Add(ctx, page))
	}

	all, err := s.Pages().All(ctx, webLog.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Apple", all[0].Title)
	assert.Equal(t, "mango", all[1].Title)
	assert.Equal(t, "zebra", all[2].Title)
	assert.Empty(t, all[0].Text, "list finders omit page text")

	listed, err := s.Pages().FindListed(ctx, webLog.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 3)
}

func testPagePagination(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)
	author := seedUser(t, s, webLog.ID)

	for i := 0; i < store.PageListPageSize+3; i++ {
		page := models.Page{
			ID:          models.NewPageID(),
			WebLogID:    webLog.ID,
			AuthorID:    author.ID,
			Title:       fmt.Sprintf("Page %03d", i),
			Permalink:   models.Permalink(fmt.Sprintf("/p%03d.html", i)),
			PublishedOn: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			UpdatedOn:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Text:        "x",
		}
		require.NoError(t, s.Pages().Add(ctx, page))
	}

	first, err := s.Pages().FindPageOfPages(ctx, webLog.ID, 1)
	require.NoError(t, err)
	assert.Len(t, first, store.PageListPageSize+1, "one extra row signals more pages")
	assert.Equal(t, "Page 000", first[0].Title)

	second, err := s.Pages().FindPageOfPages(ctx, webLog.ID, 2)
	require.NoError(t, err)
	assert.Len(t, second, 3)
	assert.Equal(t, fmt.Sprintf("Page %03d", store.PageListPageSize), second[0].Title)
}

func testPostStatusCounts(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)
	author := seedUser(t, s, webLog.ID)

	seedPost(t, s, webLog.ID, author.ID, "Draft one", nil)
	seedPost(t, s, webLog.ID, author.ID, "Published one", utc(2024, 3, 1))
	seedPost(t, s, webLog.ID, author.ID, "Published two", utc(2024, 3, 2))

	drafts, err := s.Posts().CountByStatus(ctx, models.Draft, webLog.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, drafts)

	published, err := s.Posts().CountByStatus(ctx, models.Published, webLog.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, published)
}

func testPostPagination(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)
	author := seedUser(t, s, webLog.ID)

	for day := 1; day <= 5; day++ {
		seedPost(t, s, webLog.ID, author.ID, fmt.Sprintf("Post %d", day), utc(2024, 4, day))
	}
	seedPost(t, s, webLog.ID, author.ID, "Draft", nil)

	page1, err := s.Posts().FindPageOfPublishedPosts(ctx, webLog.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, page1, 3, "two requested plus the extra row")
	assert.Equal(t, "Post 5", page1[0].Title)
	assert.Equal(t, "Post 4", page1[1].Title)

	page3, err := s.Posts().FindPageOfPublishedPosts(ctx, webLog.ID, 3, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, "Post 1", page3[0].Title)

	// The admin list includes the draft, ahead of everything.
	adminPage, err := s.Posts().FindPageOfPosts(ctx, webLog.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, adminPage, 6)
	assert.Equal(t, "Draft", adminPage[0].Title)
	assert.Equal(t, "Post 5", adminPage[1].Title)
}

func testPostTaggedAndCategorized(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)
	author := seedUser(t, s, webLog.ID)

	parent := models.Category{ID: models.NewCategoryID(), WebLogID: webLog.ID, Name: "Tech", Slug: "tech"}
	child := models.Category{ID: models.NewCategoryID(), WebLogID: webLog.ID, Name: "Go", Slug: "go", ParentID: &parent.ID}
	require.NoError(t, s.Categories().Add(ctx, parent))
	require.NoError(t, s.Categories().Add(ctx, child))

	tagged := seedPost(t, s, webLog.ID, author.ID, "Tagged", utc(2024, 6, 1))
	tagged.Tags = []string{"go", "databases"}
	tagged.CategoryIDs = []models.CategoryID{child.ID}
	require.NoError(t, s.Posts().Update(ctx, tagged))

	seedPost(t, s, webLog.ID, author.ID, "Plain", utc(2024, 6, 2))

	byTag, err := s.Posts().FindPageOfTaggedPosts(ctx, webLog.ID, "go", 1, 10)
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "Tagged", byTag[0].Title)

	byCat, err := s.Posts().FindPageOfCategorizedPosts(ctx, webLog.ID,
		[]models.CategoryID{child.ID}, 1, 10)
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, "Tagged", byCat[0].Title)

	none, err := s.Posts().FindPageOfTaggedPosts(ctx, webLog.ID, "rust", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testPostSurrounding(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)
	author := seedUser(t, s, webLog.ID)

	reviews := models.Category{ID: models.NewCategoryID(), WebLogID: webLog.ID, Name: "Reviews", Slug: "reviews"}
	require.NoError(t, s.Categories().Add(ctx, reviews))

	first := seedPost(t, s, webLog.ID, author.ID, "First", utc(2024, 7, 1))
	first.Tags = []string{"intro"}
	first.CategoryIDs = []models.CategoryID{reviews.ID}
	require.NoError(t, s.Posts().Update(ctx, first))

	middle := seedPost(t, s, webLog.ID, author.ID, "Middle", utc(2024, 7, 10))

	last := seedPost(t, s, webLog.ID, author.ID, "Last", utc(2024, 7, 20))
	last.Tags = []string{"wrap-up"}
	require.NoError(t, s.Posts().Update(ctx, last))

	older, newer, err := s.Posts().FindSurroundingPosts(ctx, webLog.ID, *middle.PublishedOn)
	require.NoError(t, err)
	require.NotNil(t, older)
	require.NotNil(t, newer)
	assert.Equal(t, "First", older.Title)
	assert.Equal(t, "Last", newer.Title)

	// Neighbors carry their child collections like any other finder result.
	assert.Equal(t, []string{"intro"}, older.Tags)
	assert.Equal(t, []models.CategoryID{reviews.ID}, older.CategoryIDs)
	assert.Equal(t, []string{"wrap-up"}, newer.Tags)

	older, newer, err = s.Posts().FindSurroundingPosts(ctx, webLog.ID, utc(2024, 6, 1).UTC())
	require.NoError(t, err)
	assert.Nil(t, older)
	require.NotNil(t, newer)
	assert.Equal(t, "First", newer.Title)
}

func testPostZonedPublishTimes(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)
	author := seedUser(t, s, webLog.ID)

	// The same pair of instants written with different offsets must still
	// come back in chronological order, whatever the backend stores.
	tokyo := time.FixedZone("UTC+9", 9*60*60)
	earlier := time.Date(2024, 3, 2, 2, 0, 0, 0, tokyo) // 2024-03-01T17:00:00Z
	later := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)

	seedPost(t, s, webLog.ID, author.ID, "Earlier", &earlier)
	seedPost(t, s, webLog.ID, author.ID, "Later", &later)

	page, err := s.Posts().FindPageOfPublishedPosts(ctx, webLog.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Later", page[0].Title)
	assert.Equal(t, "Earlier", page[1].Title)

	older, newer, err := s.Posts().FindSurroundingPosts(ctx, webLog.ID, later)
	require.NoError(t, err)
	require.NotNil(t, older)
	assert.Nil(t, newer)
	assert.Equal(t, "Earlier", older.Title)

	older, newer, err = s.Posts().FindSurroundingPosts(ctx, webLog.ID, earlier)
	require.NoError(t, err)
	assert.Nil(t, older)
	require.NotNil(t, newer)
	assert.Equal(t, "Later", newer.Title)
}

func testCategoryDeleteReparents(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)
	author := seedUser(t, s, webLog.ID)

	top := models.Category{ID: models.NewCategoryID(), WebLogID: webLog.ID, Name: "Top", Slug: "top"}
	mid := models.Category{ID: models.NewCategoryID(), WebLogID: webLog.ID, Name: "Mid", Slug: "mid", ParentID: &top.ID}
	leaf := models.Category{ID: models.NewCategoryID(), WebLogID: webLog.ID, Name: "Leaf", Slug: "leaf", ParentID: &mid.ID}
	for _, cat := range []models.Category{top, mid, leaf} {
		require.NoError(t, s.Categories().Add(ctx, cat))
	}

	post := seedPost(t, s, webLog.ID, author.ID, "Categorized", utc(2024, 8, 1))
	post.CategoryIDs = []models.CategoryID{mid.ID, leaf.ID}
	require.NoError(t, s.Posts().Update(ctx, post))

	deleted, err := s.Categories().Delete(ctx, mid.ID, webLog.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// The leaf moved up to the deleted category's parent.
	foundLeaf, err := s.Categories().FindByID(ctx, leaf.ID, webLog.ID)
	require.NoError(t, err)
	require.NotNil(t, foundLeaf)
	require.NotNil(t, foundLeaf.ParentID)
	assert.Equal(t, top.ID, *foundLeaf.ParentID)

	// The post lost only the deleted assignment.
	foundPost, err := s.Posts().FindByID(ctx, post.ID, webLog.ID)
	require.NoError(t, err)
	require.NotNil(t, foundPost)
	assert.Equal(t, []models.CategoryID{leaf.ID}, foundPost.CategoryIDs)

	counts := map[string]int64{}
	counts["all"], err = s.Categories().CountAll(ctx, webLog.ID)
	require.NoError(t, err)
	counts["top"], err = s.Categories().CountTopLevel(ctx, webLog.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts["all"])
	assert.EqualValues(t, 1, counts["top"])
}

func testCategoryHierarchyView(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)
	author := seedUser(t, s, webLog.ID)

	animals := models.Category{ID: models.NewCategoryID(), WebLogID: webLog.ID, Name: "Animals", Slug: "animals"}
	dogs := models.Category{ID: models.NewCategoryID(), WebLogID: webLog.ID, Name: "Dogs", Slug: "dogs", ParentID: &animals.ID}
	require.NoError(t, s.Categories().Add(ctx, animals))
	require.NoError(t, s.Categories().Add(ctx, dogs))

	post := seedPost(t, s, webLog.ID, author.ID, "Dog post", utc(2024, 9, 1))
	post.CategoryIDs = []models.CategoryID{dogs.ID}
	require.NoError(t, s.Posts().Update(ctx, post))

	draft := seedPost(t, s, webLog.ID, author.ID, "Dog draft", nil)
	draft.CategoryIDs = []models.CategoryID{dogs.ID}
	require.NoError(t, s.Posts().Update(ctx, draft))

	rows, err := s.Categories().FindAllForView(ctx, webLog.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "animals", rows[0].Slug)
	assert.Equal(t, "animals/dogs", rows[1].Slug)
	assert.Equal(t, []string{"Animals"}, rows[1].ParentNames)
	assert.Equal(t, 1, rows[0].PostCount, "parent counts descendant posts, published only")
	assert.Equal(t, 1, rows[1].PostCount)
}

func testTagMapLookups(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)

	sharp := models.TagMap{ID: models.NewTagMapID(), WebLogID: webLog.ID, Tag: "f#", URLValue: "f-sharp"}
	golang := models.TagMap{ID: models.NewTagMapID(), WebLogID: webLog.ID, Tag: "go", URLValue: "golang"}
	require.NoError(t, s.TagMaps().Save(ctx, sharp))
	require.NoError(t, s.TagMaps().Save(ctx, golang))

	byURL, err := s.TagMaps().FindByURLValue(ctx, "f-sharp", webLog.ID)
	require.NoError(t, err)
	require.NotNil(t, byURL)
	assert.Equal(t, "f#", byURL.Tag)

	all, err := s.TagMaps().FindByWebLog(ctx, webLog.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "f#", all[0].Tag, "mappings come back ordered by tag")

	some, err := s.TagMaps().FindMappingForTags(ctx, []string{"go", "rust"}, webLog.ID)
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "golang", some[0].URLValue)

	// Save is an upsert.
	golang.URLValue = "go-lang"
	require.NoError(t, s.TagMaps().Save(ctx, golang))
	found, err := s.TagMaps().FindByID(ctx, golang.ID, webLog.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "go-lang", found.URLValue)
}

func testUserDeleteBlockedByContent(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)
	author := seedUser(t, s, webLog.ID)
	idle := seedUser(t, s, webLog.ID)
	seedPost(t, s, webLog.ID, author.ID, "Authored", utc(2024, 10, 1))

	deleted, err := s.WebLogUsers().Delete(ctx, author.ID, webLog.ID)
	assert.False(t, deleted)
	require.Error(t, err)
	assert.True(t, store.IsConstraint(err))

	deleted, err = s.WebLogUsers().Delete(ctx, idle.ID, webLog.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	names, err := s.WebLogUsers().FindNames(ctx, webLog.ID, []models.WebLogUserID{author.ID})
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, "Test Author", names[0].Name)
}

func testUserLastSeen(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)
	other := seedWebLog(t, s)
	user := seedUser(t, s, webLog.ID)

	// The wrong tenant is a no-op.
	require.NoError(t, s.WebLogUsers().SetLastSeen(ctx, user.ID, other.ID))
	found, err := s.WebLogUsers().FindByID(ctx, user.ID, webLog.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Nil(t, found.LastSeenOn)

	require.NoError(t, s.WebLogUsers().SetLastSeen(ctx, user.ID, webLog.ID))
	found, err = s.WebLogUsers().FindByID(ctx, user.ID, webLog.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.NotNil(t, found.LastSeenOn)
	assert.WithinDuration(t, time.Now(), *found.LastSeenOn, time.Minute)
}

func testThemeLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()

	theme := models.Theme{
		ID:      models.ThemeID("paper"),
		Name:    "Paper",
		Version: "1.2.0",
		Templates: []models.ThemeTemplate{
			{Name: "layout", Text: "{{ content }}"},
			{Name: "single-post", Text: "{{ post.text }}"},
		},
	}
	require.NoError(t, s.Themes().Save(ctx, theme))

	exists, err := s.Themes().Exists(ctx, theme.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	full, err := s.Themes().FindByID(ctx, theme.ID)
	require.NoError(t, err)
	require.NotNil(t, full)
	require.Len(t, full.Templates, 2)
	assert.NotEmpty(t, full.Templates[0].Text)

	bare, err := s.Themes().FindByIDWithoutText(ctx, theme.ID)
	require.NoError(t, err)
	require.NotNil(t, bare)
	require.Len(t, bare.Templates, 2)
	assert.Empty(t, bare.Templates[0].Text)

	asset := models.ThemeAsset{
		ID:        models.ThemeAssetID{ThemeID: theme.ID, Path: "css/site.css"},
		UpdatedOn: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Data:      []byte("body { margin: 0 }"),
	}
	require.NoError(t, s.ThemeAssets().Save(ctx, asset))

	assets, err := s.ThemeAssets().FindByTheme(ctx, theme.ID)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Empty(t, assets[0].Data, "listing omits file data")

	withData, err := s.ThemeAssets().FindByThemeWithData(ctx, theme.ID)
	require.NoError(t, err)
	require.Len(t, withData, 1)
	assert.Equal(t, asset.Data, withData[0].Data)

	deleted, err := s.Themes().Delete(ctx, theme.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	orphans, err := s.ThemeAssets().FindByTheme(ctx, theme.ID)
	require.NoError(t, err)
	assert.Empty(t, orphans, "theme delete takes its assets with it")
}

func testUploadLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	webLog := seedWebLog(t, s)

	upload := models.Upload{
		ID:        models.NewUploadID(),
		WebLogID:  webLog.ID,
		Path:      "2024/08/photo.jpg",
		UpdatedOn: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		Data:      []byte{0xFF, 0xD8, 0xFF, 0xE0},
	}
	require.NoError(t, s.Uploads().Add(ctx, upload))

	found, err := s.Uploads().FindByPath(ctx, upload.Path, webLog.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, upload.Data, found.Data)

	list, err := s.Uploads().FindByWebLog(ctx, webLog.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Data, "listing omits file data")

	wrongTenant, err := s.Uploads().FindByPath(ctx, upload.Path, models.NewWebLogID())
	require.NoError(t, err)
	assert.Nil(t, wrongTenant)

	deleted, err := s.Uploads().Delete(ctx, upload.ID, webLog.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func testWebLogCascadeDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	doomed := seedWebLog(t, s)
	survivor := seedWebLog(t, s)

	doomedAuthor := seedUser(t, s, doomed.ID)
	survivorAuthor := seedUser(t, s, survivor.ID)
	seedPost(t, s, doomed.ID, doomedAuthor.ID, "Doomed post", utc(2024, 1, 1))
	keeper := seedPost(t, s, survivor.ID, survivorAuthor.ID, "Keeper", utc(2024, 1, 1))
	require.NoError(t, s.Categories().Add(ctx, models.Category{
		ID: models.NewCategoryID(), WebLogID: doomed.ID, Name: "Gone", Slug: "gone",
	}))

	require.NoError(t, s.WebLogs().Delete(ctx, doomed.ID))

	found, err := s.WebLogs().FindByID(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	n, err := s.Posts().CountByStatus(ctx, models.Published, doomed.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	cats, err := s.Categories().CountAll(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Zero(t, cats)
	users, err := s.WebLogUsers().FindByWebLog(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, users)

	still, err := s.Posts().FindByID(ctx, keeper.ID, survivor.ID)
	require.NoError(t, err)
	assert.NotNil(t, still, "the other tenant is untouched")
}

func testStartUpIsIdempotent(t *testing.T, s store.Store) {
	ctx := context.Background()
	// The factory already ran StartUp once; a second run must be harmless.
	require.NoError(t, s.StartUp(ctx))
	seedWebLog(t, s)
	require.NoError(t, s.StartUp(ctx))
}
