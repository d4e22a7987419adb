package store

import "github.com/quillcms/quillcms/pkg/models"

// DiffResult is the write plan produced by Diff: the old items to remove and
// the new items to insert. Items present in both sets appear in neither slice
// and generate no writes.
type DiffResult[T any] struct {
	ToDelete []T
	ToAdd    []T
}

// Unchanged reports whether applying the plan would write nothing.
func (r DiffResult[T]) Unchanged() bool {
	return len(r.ToDelete) == 0 && len(r.ToAdd) == 0
}

// Diff compares the stored state of a child collection with its desired state
// and plans the minimal set of deletes and inserts. Identity is the key the
// projection derives from an item; an item whose key appears in both inputs
// is considered unchanged even if other fields differ, so projections must
// fold every meaningful field into the key. Duplicate keys within one input
// collapse to a single item; ordering of the outputs is unspecified.
func Diff[T any, K comparable](oldItems, newItems []T, key func(T) K) DiffResult[T] {
	oldKeys := make(map[K]T, len(oldItems))
	for _, it := range oldItems {
		oldKeys[key(it)] = it
	}
	newKeys := make(map[K]T, len(newItems))
	for _, it := range newItems {
		newKeys[key(it)] = it
	}

	var res DiffResult[T]
	for k, it := range oldKeys {
		if _, ok := newKeys[k]; !ok {
			res.ToDelete = append(res.ToDelete, it)
		}
	}
	for k, it := range newKeys {
		if _, ok := oldKeys[k]; !ok {
			res.ToAdd = append(res.ToAdd, it)
		}
	}
	return res
}

// DiffMetaItems plans the sync of a metadata collection. Name and value
// together are the identity; editing a value deletes and re-adds the item.
func DiffMetaItems(oldItems, newItems []models.MetaItem) DiffResult[models.MetaItem] {
	return Diff(oldItems, newItems, func(m models.MetaItem) [2]string {
		return [2]string{m.Name, m.Value}
	})
}

// DiffPermalinks plans the sync of a prior-permalink collection.
func DiffPermalinks(oldItems, newItems []models.Permalink) DiffResult[models.Permalink] {
	return Diff(oldItems, newItems, func(p models.Permalink) models.Permalink { return p })
}

// DiffRevisions plans the sync of a revision collection. Timestamp and text
// together are the identity, so rewording an old revision replaces it.
func DiffRevisions(oldItems, newItems []models.Revision) DiffResult[models.Revision] {
	type revKey struct {
		asOf int64
		text string
	}
	return Diff(oldItems, newItems, func(r models.Revision) revKey {
		return revKey{asOf: r.AsOf.UnixNano(), text: r.Text}
	})
}

// DiffCategoryIDs plans the sync of a post's category assignments.
func DiffCategoryIDs(oldItems, newItems []models.CategoryID) DiffResult[models.CategoryID] {
	return Diff(oldItems, newItems, func(id models.CategoryID) models.CategoryID { return id })
}

// DiffTags plans the sync of a post's tag list.
func DiffTags(oldItems, newItems []string) DiffResult[string] {
	return Diff(oldItems, newItems, func(t string) string { return t })
}
