package sqlite

import "github.com/quillcms/quillcms/pkg/models"

// Stored timestamps are ordered and compared as raw JSON strings, which is
// only chronological when every string shares the same offset. The write path
// therefore converts all time fields to UTC before serialization; a caller
// handing in zoned times would otherwise invert the published order.

func revisionsUTC(revs []models.Revision) []models.Revision {
	if len(revs) == 0 {
		return revs
	}
	out := make([]models.Revision, len(revs))
	for i, r := range revs {
		r.AsOf = r.AsOf.UTC()
		out[i] = r
	}
	return out
}

func pageUTC(p models.Page) models.Page {
	p.PublishedOn = p.PublishedOn.UTC()
	p.UpdatedOn = p.UpdatedOn.UTC()
	p.Revisions = revisionsUTC(p.Revisions)
	return p
}

func postUTC(p models.Post) models.Post {
	if p.PublishedOn != nil {
		utc := p.PublishedOn.UTC()
		p.PublishedOn = &utc
	}
	p.UpdatedOn = p.UpdatedOn.UTC()
	p.Revisions = revisionsUTC(p.Revisions)
	return p
}

func userUTC(u models.WebLogUser) models.WebLogUser {
	u.CreatedOn = u.CreatedOn.UTC()
	if u.LastSeenOn != nil {
		utc := u.LastSeenOn.UTC()
		u.LastSeenOn = &utc
	}
	return u
}
