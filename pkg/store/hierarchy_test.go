package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillcms/quillcms/pkg/models"
)

func newCat(name, slug string, parent *models.CategoryID) models.Category {
	return models.Category{
		ID:       models.NewCategoryID(),
		WebLogID: models.NewWebLogID(),
		Name:     name,
		Slug:     slug,
		ParentID: parent,
	}
}

func TestBuildDisplayCategoriesEmptyForest(t *testing.T) {
	rows, err := BuildDisplayCategories(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBuildDisplayCategoriesPreOrder(t *testing.T) {
	// Forest:
	//   Animals
	//     Cats
	//     Dogs
	//       Terriers
	//   Plants
	animals := newCat("Animals", "animals", nil)
	cats := newCat("Cats", "cats", &animals.ID)
	dogs := newCat("Dogs", "dogs", &animals.ID)
	terriers := newCat("Terriers", "terriers", &dogs.ID)
	plants := newCat("Plants", "plants", nil)

	rows, err := BuildDisplayCategories(
		[]models.Category{plants, terriers, dogs, cats, animals}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	names := make([]string, len(rows))
	slugs := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
		slugs[i] = r.Slug
	}
	assert.Equal(t, []string{"Animals", "Cats", "Dogs", "Terriers", "Plants"}, names)
	assert.Equal(t, []string{
		"animals", "animals/cats", "animals/dogs", "animals/dogs/terriers", "plants",
	}, slugs)

	assert.Empty(t, rows[0].ParentNames)
	assert.Equal(t, []string{"Animals"}, rows[1].ParentNames)
	assert.Equal(t, []string{"Animals", "Dogs"}, rows[3].ParentNames)
}

func TestBuildDisplayCategoriesSiblingOrderCaseInsensitive(t *testing.T) {
	rows, err := BuildDisplayCategories([]models.Category{
		newCat("zebra", "zebra", nil),
		newCat("Apple", "apple", nil),
		newCat("mango", "mango", nil),
	}, nil)
	require.NoError(t, err)

	var names []string
	for _, r := range rows {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Apple", "mango", "zebra"}, names)
}

func TestBuildDisplayCategoriesMissingParentBecomesRoot(t *testing.T) {
	ghost := models.NewCategoryID()
	orphan := newCat("Orphan", "orphan", &ghost)

	rows, err := BuildDisplayCategories([]models.Category{orphan}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "orphan", rows[0].Slug)
	assert.Empty(t, rows[0].ParentNames)
}

func TestBuildDisplayCategoriesCycleDoesNotHang(t *testing.T) {
	a := newCat("A", "a", nil)
	b := newCat("B", "b", nil)
	a.ParentID = &b.ID
	b.ParentID = &a.ID

	rows, err := BuildDisplayCategories([]models.Category{a, b}, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "both cycle members must still be listed")
}

func TestBuildDisplayCategoriesSubtreeCounts(t *testing.T) {
	parent := newCat("Parent", "parent", nil)
	child := newCat("Child", "child", &parent.ID)
	grandchild := newCat("Grandchild", "grandchild", &child.ID)
	other := newCat("Other", "other", nil)

	counts := map[models.CategoryID]int{
		parent.ID:     2,
		child.ID:      3,
		grandchild.ID: 1,
		other.ID:      0,
	}
	rows, err := BuildDisplayCategories(
		[]models.Category{parent, child, grandchild, other},
		func(ids []models.CategoryID) (int, error) {
			// A distinct-post count is not additive across categories, but
			// a sum over disjoint fixtures stands in for one here.
			n := 0
			for _, id := range ids {
				n += counts[id]
			}
			return n, nil
		})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	byName := map[string]DisplayCategory{}
	for _, r := range rows {
		byName[r.Name] = r
	}
	assert.Equal(t, 6, byName["Parent"].PostCount, "parent counts its whole subtree")
	assert.Equal(t, 4, byName["Child"].PostCount)
	assert.Equal(t, 1, byName["Grandchild"].PostCount)
	assert.Equal(t, 0, byName["Other"].PostCount)
}

func TestSubtreeIDsGuardsCycles(t *testing.T) {
	a := newCat("A", "a", nil)
	b := newCat("B", "b", &a.ID)
	children := map[models.CategoryID][]models.Category{
		a.ID: {b},
		b.ID: {a},
	}
	ids := subtreeIDs(a.ID, children)
	assert.ElementsMatch(t, []models.CategoryID{a.ID, b.ID}, ids)
}
