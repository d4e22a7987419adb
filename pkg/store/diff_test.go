package store

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quillcms/quillcms/pkg/models"
)

func TestDiffDisjointSets(t *testing.T) {
	res := DiffTags([]string{"go", "rust"}, []string{"zig", "ocaml"})
	assert.ElementsMatch(t, []string{"go", "rust"}, res.ToDelete)
	assert.ElementsMatch(t, []string{"zig", "ocaml"}, res.ToAdd)
	assert.False(t, res.Unchanged())
}

func TestDiffIdenticalSets(t *testing.T) {
	tags := []string{"go", "databases", "testing"}
	res := DiffTags(tags, []string{"testing", "go", "databases"})
	assert.True(t, res.Unchanged(), "order must not matter")
}

func TestDiffEmptyInputs(t *testing.T) {
	assert.True(t, DiffTags(nil, nil).Unchanged())

	res := DiffTags(nil, []string{"go"})
	assert.Empty(t, res.ToDelete)
	assert.Equal(t, []string{"go"}, res.ToAdd)

	res = DiffTags([]string{"go"}, nil)
	assert.Equal(t, []string{"go"}, res.ToDelete)
	assert.Empty(t, res.ToAdd)
}

func TestDiffPartialOverlap(t *testing.T) {
	res := DiffTags([]string{"a", "b", "c"}, []string{"b", "c", "d"})
	assert.Equal(t, []string{"a"}, res.ToDelete)
	assert.Equal(t, []string{"d"}, res.ToAdd)
}

func TestDiffDuplicateKeysCollapse(t *testing.T) {
	res := DiffTags([]string{"a", "a", "b"}, []string{"b", "b"})
	assert.Equal(t, []string{"a"}, res.ToDelete)
	assert.Empty(t, res.ToAdd)
}

func TestDiffMetaItemsValueEdit(t *testing.T) {
	oldItems := []models.MetaItem{{Name: "episode", Value: "12"}}
	newItems := []models.MetaItem{{Name: "episode", Value: "13"}}

	// Same name but different value is a different item: delete + add.
	res := DiffMetaItems(oldItems, newItems)
	assert.Equal(t, oldItems, res.ToDelete)
	assert.Equal(t, newItems, res.ToAdd)
}

func TestDiffMetaItemsSameNameDistinctValues(t *testing.T) {
	items := []models.MetaItem{
		{Name: "guest", Value: "Ada"},
		{Name: "guest", Value: "Grace"},
	}
	res := DiffMetaItems(items, items)
	assert.True(t, res.Unchanged())
}

func TestDiffRevisionsKeyedByTimeAndText(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	oldRevs := []models.Revision{
		{AsOf: asOf, Text: "first draft"},
		{AsOf: asOf.Add(time.Hour), Text: "second draft"},
	}
	newRevs := []models.Revision{
		{AsOf: asOf, Text: "first draft"},
		{AsOf: asOf.Add(time.Hour), Text: "second draft, fixed typo"},
	}

	res := DiffRevisions(oldRevs, newRevs)
	assert.Equal(t, []models.Revision{oldRevs[1]}, res.ToDelete)
	assert.Equal(t, []models.Revision{newRevs[1]}, res.ToAdd)
}

func TestDiffPermalinks(t *testing.T) {
	oldLinks := []models.Permalink{"/2023/old-title.html", "/2023/older-title.html"}
	newLinks := []models.Permalink{"/2023/old-title.html", "/2024/new-title.html"}

	res := DiffPermalinks(oldLinks, newLinks)
	assert.Equal(t, []models.Permalink{"/2023/older-title.html"}, res.ToDelete)
	assert.Equal(t, []models.Permalink{"/2024/new-title.html"}, res.ToAdd)
}

func TestDiffCategoryIDs(t *testing.T) {
	keep := models.NewCategoryID()
	drop := models.NewCategoryID()
	add := models.NewCategoryID()

	res := DiffCategoryIDs(
		[]models.CategoryID{keep, drop},
		[]models.CategoryID{keep, add},
	)
	assert.Equal(t, []models.CategoryID{drop}, res.ToDelete)
	assert.Equal(t, []models.CategoryID{add}, res.ToAdd)
}

func TestDiffLargeSets(t *testing.T) {
	var oldTags, newTags []string
	for i := 0; i < 500; i++ {
		oldTags = append(oldTags, string(rune('a'+i%26))+string(rune('0'+i%10)))
	}
	newTags = append(newTags, oldTags[100:]...)
	newTags = append(newTags, "brand-new")

	res := DiffTags(oldTags, newTags)
	sort.Strings(res.ToAdd)
	assert.Equal(t, []string{"brand-new"}, res.ToAdd)
	for _, d := range res.ToDelete {
		assert.NotContains(t, newTags, d)
	}
}
