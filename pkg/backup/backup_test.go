package backup_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillcms/quillcms/pkg/backup"
	"github.com/quillcms/quillcms/pkg/models"
	"github.com/quillcms/quillcms/pkg/store"
	"github.com/quillcms/quillcms/pkg/store/sqlite"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "quillcms.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.StartUp(context.Background()))
	return s
}

// seed fills a store with one web log carrying a bit of everything an
// archive holds, including child collections and a binary payload.
func seed(t *testing.T, s store.Store) models.WebLog {
	t.Helper()
	ctx := context.Background()

	webLog := models.WebLog{
		ID:           models.NewWebLogID(),
		Name:         "Archived",
		Slug:         "archived",
		DefaultPage:  "posts",
		PostsPerPage: 10,
		ThemeID:      models.ThemeID("default"),
		URLBase:      "https://archived.example.com",
		TimeZone:     "Etc/UTC",
		Uploads:      models.UploadToDatabase,
	}
	require.NoError(t, s.WebLogs().Add(ctx, webLog))

	author := models.WebLogUser{
		ID:           models.NewWebLogUserID(),
		WebLogID:     webLog.ID,
		Email:        "author@example.com",
		FirstName:    "Arch",
		LastName:     "Ivist",
		PasswordHash: "x",
		AccessLevel:  models.Author,
		CreatedOn:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.WebLogUsers().Add(ctx, author))

	parent := models.Category{ID: models.NewCategoryID(), WebLogID: webLog.ID, Name: "Parent", Slug: "parent"}
	child := models.Category{ID: models.NewCategoryID(), WebLogID: webLog.ID, Name: "Child", Slug: "child", ParentID: &parent.ID}
	require.NoError(t, s.Categories().Add(ctx, parent))
	require.NoError(t, s.Categories().Add(ctx, child))

	require.NoError(t, s.TagMaps().Save(ctx, models.TagMap{
		ID: models.NewTagMapID(), WebLogID: webLog.ID, Tag: "c#", URLValue: "c-sharp",
	}))

	publishedOn := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Pages().Add(ctx, models.Page{
		ID:              models.NewPageID(),
		WebLogID:        webLog.ID,
		AuthorID:        author.ID,
		Title:           "About",
		Permalink:       "/about.html",
		PublishedOn:     publishedOn,
		UpdatedOn:       publishedOn,
		Text:            "<p>about</p>",
		Metadata:        []models.MetaItem{{Name: "subtitle", Value: "hello"}},
		PriorPermalinks: []models.Permalink{"/about-us.html"},
		Revisions:       []models.Revision{{AsOf: publishedOn, Text: "<p>about</p>"}},
	}))

	require.NoError(t, s.Posts().Add(ctx, models.Post{
		ID:          models.NewPostID(),
		WebLogID:    webLog.ID,
		AuthorID:    author.ID,
		Status:      models.Published,
		Title:       "Hello",
		Permalink:   "/hello.html",
		PublishedOn: &publishedOn,
		UpdatedOn:   publishedOn,
		Text:        "<p>hi</p>",
		CategoryIDs: []models.CategoryID{child.ID},
		Tags:        []string{"c#", "intro"},
	}))

	require.NoError(t, s.Uploads().Add(ctx, models.Upload{
		ID:        models.NewUploadID(),
		WebLogID:  webLog.ID,
		Path:      "2024/03/pic.png",
		UpdatedOn: publishedOn,
		Data:      []byte{0x89, 0x50, 0x4E, 0x47},
	}))

	return webLog
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := newStore(t)
	webLog := seed(t, source)

	var buf bytes.Buffer
	counts, err := backup.Write(ctx, source, webLog.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, &backup.Counts{
		Users: 1, Categories: 2, TagMaps: 1, Pages: 1, Posts: 1, Uploads: 1,
	}, counts)

	target := newStore(t)
	restoredID, err := backup.Read(ctx, target, bytes.NewReader(buf.Bytes()), backup.RestoreOptions{})
	require.NoError(t, err)
	assert.Equal(t, webLog.ID, restoredID, "identity is kept by default")

	restored, err := target.WebLogs().FindByID(ctx, webLog.ID)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, "Archived", restored.Name)

	pages, err := target.Pages().FindFullByWebLog(ctx, webLog.ID)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, []models.Permalink{"/about-us.html"}, pages[0].PriorPermalinks)
	require.Len(t, pages[0].Revisions, 1)
	require.Len(t, pages[0].Metadata, 1)

	posts, err := target.Posts().FindFullByWebLog(ctx, webLog.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.ElementsMatch(t, []string{"c#", "intro"}, posts[0].Tags)
	require.Len(t, posts[0].CategoryIDs, 1)

	uploads, err := target.Uploads().FindByWebLogWithData(ctx, webLog.ID)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, uploads[0].Data)
}

func TestRestoreWithFreshIdentity(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	webLog := seed(t, s)

	var buf bytes.Buffer
	_, err := backup.Write(ctx, s, webLog.ID, &buf)
	require.NoError(t, err)

	// Restoring next to the source needs every identifier replaced.
	cloneID, err := backup.Read(ctx, s, bytes.NewReader(buf.Bytes()), backup.RestoreOptions{NewIdentity: true})
	require.NoError(t, err)
	require.NotEqual(t, webLog.ID, cloneID)

	all, err := s.WebLogs().All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// References inside the clone point at clone-side records.
	clonedCats, err := s.Categories().FindByWebLog(ctx, cloneID)
	require.NoError(t, err)
	require.Len(t, clonedCats, 2)
	byName := map[string]models.Category{}
	for _, cat := range clonedCats {
		byName[cat.Name] = cat
	}
	require.NotNil(t, byName["Child"].ParentID)
	assert.Equal(t, byName["Parent"].ID, *byName["Child"].ParentID)

	clonedPosts, err := s.Posts().FindFullByWebLog(ctx, cloneID)
	require.NoError(t, err)
	require.Len(t, clonedPosts, 1)
	require.Len(t, clonedPosts[0].CategoryIDs, 1)
	assert.Equal(t, byName["Child"].ID, clonedPosts[0].CategoryIDs[0])

	clonedUsers, err := s.WebLogUsers().FindByWebLog(ctx, cloneID)
	require.NoError(t, err)
	require.Len(t, clonedUsers, 1)
	assert.Equal(t, clonedUsers[0].ID, clonedPosts[0].AuthorID)
}

func TestDumpAndLoadFiles(t *testing.T) {
	ctx := context.Background()
	source := newStore(t)
	webLog := seed(t, source)

	archivePath := filepath.Join(t.TempDir(), "archived.qcms")
	require.NoError(t, backup.Dump(ctx, source, webLog.ID, archivePath))

	manifest, err := backup.ReadManifest(archivePath)
	require.NoError(t, err)
	assert.Equal(t, webLog.ID, manifest.WebLogID)
	assert.Equal(t, 1, manifest.Counts.Posts)
	assert.NotEmpty(t, manifest.SHA256)

	target := newStore(t)
	restoredID, err := backup.Load(ctx, target, archivePath, backup.RestoreOptions{})
	require.NoError(t, err)
	assert.Equal(t, webLog.ID, restoredID)
}

func TestReadRejectsForeignData(t *testing.T) {
	s := newStore(t)
	_, err := backup.Read(context.Background(), s, bytes.NewReader([]byte("NOTADUMP....")), backup.RestoreOptions{})
	require.ErrorIs(t, err, backup.ErrNotAnArchive)
}

func TestWriteUnknownWebLog(t *testing.T) {
	s := newStore(t)
	var buf bytes.Buffer
	_, err := backup.Write(context.Background(), s, models.NewWebLogID(), &buf)
	require.Error(t, err)
}
