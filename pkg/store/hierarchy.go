package store

import (
	"sort"
	"strings"

	"github.com/quillcms/quillcms/pkg/models"
)

// DisplayCategory is a category flattened for display: hierarchy is encoded
// in the slug path and the ancestor name list rather than in nesting.
type DisplayCategory struct {
	ID models.CategoryID `json:"id"`
	// Slug is the full path: the slugs of every ancestor and the category
	// itself, joined with "/".
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	// ParentNames holds the names of the ancestors, outermost first.
	ParentNames []string `json:"parent_names,omitempty"`
	// PostCount is the number of distinct published posts assigned to the
	// category or any of its descendants.
	PostCount int `json:"post_count"`
}

// BuildDisplayCategories flattens a category forest into pre-order display
// rows. Siblings (and roots) are ordered by name, case-insensitively, with
// ties broken by ID so the order is stable. countPosts maps a set of category
// IDs (a node plus its whole subtree) to the number of distinct published
// posts assigned to any of them; passing nil skips counting.
//
// A category whose parent chain loops, or whose parent is missing, is treated
// as a root rather than dropped, so corrupt data degrades instead of hanging.
func BuildDisplayCategories(cats []models.Category, countPosts func(ids []models.CategoryID) (int, error)) ([]DisplayCategory, error) {
	children := make(map[models.CategoryID][]models.Category)
	byID := make(map[models.CategoryID]models.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	var roots []models.Category
	for _, c := range cats {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		if _, ok := byID[*c.ParentID]; !ok {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}
	sortCategories(roots)
	for _, kids := range children {
		sortCategories(kids)
	}

	visited := make(map[models.CategoryID]bool, len(cats))
	var rows []DisplayCategory

	var walk func(c models.Category, slugPath string, names []string)
	walk = func(c models.Category, slugPath string, names []string) {
		if visited[c.ID] {
			return
		}
		visited[c.ID] = true

		slug := c.Slug
		if slugPath != "" {
			slug = slugPath + "/" + c.Slug
		}
		rows = append(rows, DisplayCategory{
			ID:          c.ID,
			Slug:        slug,
			Name:        c.Name,
			Description: c.Description,
			ParentNames: append([]string(nil), names...),
		})
		for _, kid := range children[c.ID] {
			walk(kid, slug, append(names, c.Name))
		}
	}
	for _, r := range roots {
		walk(r, "", nil)
	}

	// Anything never reached was part of a cycle with no way in; surface
	// each member as a root row so no category silently disappears.
	for _, c := range cats {
		if !visited[c.ID] {
			walk(c, "", nil)
		}
	}

	if countPosts != nil {
		for i := range rows {
			ids := subtreeIDs(rows[i].ID, children)
			n, err := countPosts(ids)
			if err != nil {
				return nil, err
			}
			rows[i].PostCount = n
		}
	}
	return rows, nil
}

// subtreeIDs collects a category's ID plus every descendant's, guarding
// against cycles.
func subtreeIDs(root models.CategoryID, children map[models.CategoryID][]models.Category) []models.CategoryID {
	seen := map[models.CategoryID]bool{root: true}
	ids := []models.CategoryID{root}
	for i := 0; i < len(ids); i++ {
		for _, kid := range children[ids[i]] {
			if !seen[kid.ID] {
				seen[kid.ID] = true
				ids = append(ids, kid.ID)
			}
		}
	}
	return ids
}

func sortCategories(cats []models.Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		a, b := strings.ToLower(cats[i].Name), strings.ToLower(cats[j].Name)
		if a != b {
			return a < b
		}
		return cats[i].ID.String() < cats[j].ID.String()
	})
}
