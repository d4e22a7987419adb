package backup

import "github.com/quillcms/quillcms/pkg/models"

// remapper translates archive identifiers to the ones the restored content
// will carry. With fresh identity enabled, every ID is replaced the first time
// it appears and the same replacement is handed out on every later sighting,
// so references resolve no matter which side of the reference the stream
// delivers first.
type remapper struct {
	fresh      bool
	webLogs    map[models.WebLogID]models.WebLogID
	users      map[models.WebLogUserID]models.WebLogUserID
	categories map[models.CategoryID]models.CategoryID
	pages      map[models.PageID]models.PageID
	posts      map[models.PostID]models.PostID
	tagMaps    map[models.TagMapID]models.TagMapID
	uploads    map[models.UploadID]models.UploadID
}

func newRemapper(fresh bool) *remapper {
	return &remapper{
		fresh:      fresh,
		webLogs:    map[models.WebLogID]models.WebLogID{},
		users:      map[models.WebLogUserID]models.WebLogUserID{},
		categories: map[models.CategoryID]models.CategoryID{},
		pages:      map[models.PageID]models.PageID{},
		posts:      map[models.PostID]models.PostID{},
		tagMaps:    map[models.TagMapID]models.TagMapID{},
		uploads:    map[models.UploadID]models.UploadID{},
	}
}

func remapID[K comparable](fresh bool, seen map[K]K, old K, generate func() K) K {
	if !fresh {
		return old
	}
	if mapped, ok := seen[old]; ok {
		return mapped
	}
	mapped := generate()
	seen[old] = mapped
	return mapped
}

func (r *remapper) webLog(id models.WebLogID) models.WebLogID {
	return remapID(r.fresh, r.webLogs, id, models.NewWebLogID)
}

func (r *remapper) user(id models.WebLogUserID) models.WebLogUserID {
	return remapID(r.fresh, r.users, id, models.NewWebLogUserID)
}

func (r *remapper) category(id models.CategoryID) models.CategoryID {
	return remapID(r.fresh, r.categories, id, models.NewCategoryID)
}

func (r *remapper) page(id models.PageID) models.PageID {
	return remapID(r.fresh, r.pages, id, models.NewPageID)
}

func (r *remapper) post(id models.PostID) models.PostID {
	return remapID(r.fresh, r.posts, id, models.NewPostID)
}

func (r *remapper) tagMap(id models.TagMapID) models.TagMapID {
	return remapID(r.fresh, r.tagMaps, id, models.NewTagMapID)
}

func (r *remapper) upload(id models.UploadID) models.UploadID {
	return remapID(r.fresh, r.uploads, id, models.NewUploadID)
}
