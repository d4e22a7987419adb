// Package backup reads and writes per-weblog archive files. An archive holds
// the web log record and everything it owns (users, categories, tag mappings,
// pages, posts, uploads) as a magic header followed by a CBOR stream, with a
// JSON manifest written alongside for integrity checks.
//
// Archives are backend-neutral: a dump taken from one store implementation
// restores into any other, and a restore can re-home the content under fresh
// identifiers so the same archive can be loaded next to its source.
package backup

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/quillcms/quillcms/pkg/models"
	"github.com/quillcms/quillcms/pkg/store"
)

// ArchiveFormat is the magic header identifying a quillcms archive and its
// format version.
const ArchiveFormat = "QCMSBAK1"

// ErrNotAnArchive is returned when the input does not start with the magic
// header.
var ErrNotAnArchive = errors.New("not a quillcms archive")

type chunkKind string

const (
	kindWebLog     chunkKind = "web_log"
	kindUsers      chunkKind = "users"
	kindCategories chunkKind = "categories"
	kindTagMaps    chunkKind = "tag_maps"
	kindPages      chunkKind = "pages"
	kindPosts      chunkKind = "posts"
	kindUploads    chunkKind = "uploads"
	kindEnd        chunkKind = "end"
)

// chunk is one message in the archive stream. Exactly one payload field is
// set, matching Kind; batches never exceed the store's restore batch sizes so
// a restore can feed each chunk straight into the contract.
type chunk struct {
	Kind       chunkKind            `json:"kind"`
	WebLog     *models.WebLog       `json:"web_log,omitempty"`
	Users      []models.WebLogUser  `json:"users,omitempty"`
	Categories []models.Category    `json:"categories,omitempty"`
	TagMaps    []models.TagMap      `json:"tag_maps,omitempty"`
	Pages      []models.Page        `json:"pages,omitempty"`
	Posts      []models.Post        `json:"posts,omitempty"`
	Uploads    []models.Upload      `json:"uploads,omitempty"`
}

// Counts records how many of each entity an archive carries.
type Counts struct {
	Users      int `json:"users"`
	Categories int `json:"categories"`
	TagMaps    int `json:"tag_maps"`
	Pages      int `json:"pages"`
	Posts      int `json:"posts"`
	Uploads    int `json:"uploads"`
}

// Write dumps the web log and everything it owns to w. The caller picks the
// destination; Dump wraps this for files and adds the manifest.
func Write(ctx context.Context, s store.Store, webLogID models.WebLogID, w io.Writer) (*Counts, error) {
	webLog, err := s.WebLogs().FindByID(ctx, webLogID)
	if err != nil {
		return nil, fmt.Errorf("loading web log: %w", err)
	}
	if webLog == nil {
		return nil, fmt.Errorf("web log %s does not exist", webLogID)
	}

	if _, err := w.Write([]byte(ArchiveFormat)); err != nil {
		return nil, fmt.Errorf("writing magic header: %w", err)
	}
	enc := surrealcbor.NewEncoder(w)

	if err := enc.Encode(chunk{Kind: kindWebLog, WebLog: webLog}); err != nil {
		return nil, fmt.Errorf("encoding web log: %w", err)
	}

	var counts Counts

	users, err := s.WebLogUsers().FindByWebLog(ctx, webLogID)
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	counts.Users = len(users)
	if err := encodeBatches(enc, users, store.RestoreBatchSize, func(batch []models.WebLogUser) chunk {
		return chunk{Kind: kindUsers, Users: batch}
	}); err != nil {
		return nil, err
	}

	cats, err := s.Categories().FindByWebLog(ctx, webLogID)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	counts.Categories = len(cats)
	if err := encodeBatches(enc, cats, store.RestoreBatchSize, func(batch []models.Category) chunk {
		return chunk{Kind: kindCategories, Categories: batch}
	}); err != nil {
		return nil, err
	}

	tagMaps, err := s.TagMaps().FindByWebLog(ctx, webLogID)
	if err != nil {
		return nil, fmt.Errorf("loading tag mappings: %w", err)
	}
	counts.TagMaps = len(tagMaps)
	if err := encodeBatches(enc, tagMaps, store.RestoreBatchSize, func(batch []models.TagMap) chunk {
		return chunk{Kind: kindTagMaps, TagMaps: batch}
	}); err != nil {
		return nil, err
	}

	pages, err := s.Pages().FindFullByWebLog(ctx, webLogID)
	if err != nil {
		return nil, fmt.Errorf("loading pages: %w", err)
	}
	counts.Pages = len(pages)
	if err := encodeBatches(enc, pages, store.RestoreBatchSize, func(batch []models.Page) chunk {
		return chunk{Kind: kindPages, Pages: batch}
	}); err != nil {
		return nil, err
	}

	posts, err := s.Posts().FindFullByWebLog(ctx, webLogID)
	if err != nil {
		return nil, fmt.Errorf("loading posts: %w", err)
	}
	counts.Posts = len(posts)
	if err := encodeBatches(enc, posts, store.RestoreBatchSize, func(batch []models.Post) chunk {
		return chunk{Kind: kindPosts, Posts: batch}
	}); err != nil {
		return nil, err
	}

	uploads, err := s.Uploads().FindByWebLogWithData(ctx, webLogID)
	if err != nil {
		return nil, fmt.Errorf("loading uploads: %w", err)
	}
	counts.Uploads = len(uploads)
	if err := encodeBatches(enc, uploads, store.RestoreBinaryBatchSize, func(batch []models.Upload) chunk {
		return chunk{Kind: kindUploads, Uploads: batch}
	}); err != nil {
		return nil, err
	}

	if err := enc.Encode(chunk{Kind: kindEnd}); err != nil {
		return nil, fmt.Errorf("encoding end marker: %w", err)
	}
	return &counts, nil
}

func encodeBatches[T any](enc *surrealcbor.Encoder, items []T, batchSize int, build func([]T) chunk) error {
	for start := 0; start < len(items); start += batchSize {
		end := min(start+batchSize, len(items))
		if err := enc.Encode(build(items[start:end])); err != nil {
			return fmt.Errorf("encoding archive chunk: %w", err)
		}
	}
	return nil
}

// RestoreOptions controls how an archive is loaded.
type RestoreOptions struct {
	// NewIdentity re-homes the content under fresh identifiers: a new
	// WebLogID and new IDs for every contained entity, with references
	// between them rewritten to match. Use this to restore an archive next
	// to its source.
	NewIdentity bool
}

// Read loads an archive from r into the store, returning the ID the restored
// web log ended up with.
func Read(ctx context.Context, s store.Store, r io.Reader, opts RestoreOptions) (models.WebLogID, error) {
	var zero models.WebLogID

	magic := make([]byte, len(ArchiveFormat))
	if _, err := io.ReadFull(r, magic); err != nil {
		return zero, fmt.Errorf("reading magic header: %w", err)
	}
	if string(magic) != ArchiveFormat {
		return zero, ErrNotAnArchive
	}

	dec := surrealcbor.NewDecoder(r)
	remap := newRemapper(opts.NewIdentity)

	var webLogID models.WebLogID
	sawWebLog := false
	for {
		var c chunk
		if err := dec.Decode(&c); err != nil {
			if errors.Is(err, io.EOF) {
				return zero, errors.New("archive ended without end marker")
			}
			return zero, fmt.Errorf("decoding archive chunk: %w", err)
		}
		if c.Kind == kindEnd {
			break
		}
		if c.Kind != kindWebLog && !sawWebLog {
			return zero, errors.New("archive does not start with a web log record")
		}

		switch c.Kind {
		case kindWebLog:
			if c.WebLog == nil {
				return zero, errors.New("archive carries an empty web log record")
			}
			webLog := *c.WebLog
			webLog.ID = remap.webLog(webLog.ID)
			webLogID = webLog.ID
			sawWebLog = true
			if err := s.WebLogs().Add(ctx, webLog); err != nil {
				return zero, fmt.Errorf("restoring web log: %w", err)
			}
		case kindUsers:
			for i := range c.Users {
				c.Users[i].ID = remap.user(c.Users[i].ID)
				c.Users[i].WebLogID = webLogID
			}
			if err := s.WebLogUsers().Restore(ctx, c.Users); err != nil {
				return zero, fmt.Errorf("restoring users: %w", err)
			}
		case kindCategories:
			for i := range c.Categories {
				c.Categories[i].ID = remap.category(c.Categories[i].ID)
				c.Categories[i].WebLogID = webLogID
				if c.Categories[i].ParentID != nil {
					parent := remap.category(*c.Categories[i].ParentID)
					c.Categories[i].ParentID = &parent
				}
			}
			if err := s.Categories().Restore(ctx, c.Categories); err != nil {
				return zero, fmt.Errorf("restoring categories: %w", err)
			}
		case kindTagMaps:
			for i := range c.TagMaps {
				c.TagMaps[i].ID = remap.tagMap(c.TagMaps[i].ID)
				c.TagMaps[i].WebLogID = webLogID
			}
			if err := s.TagMaps().Restore(ctx, c.TagMaps); err != nil {
				return zero, fmt.Errorf("restoring tag mappings: %w", err)
			}
		case kindPages:
			for i := range c.Pages {
				c.Pages[i].ID = remap.page(c.Pages[i].ID)
				c.Pages[i].WebLogID = webLogID
				c.Pages[i].AuthorID = remap.user(c.Pages[i].AuthorID)
			}
			if err := s.Pages().Restore(ctx, c.Pages); err != nil {
				return zero, fmt.Errorf("restoring pages: %w", err)
			}
		case kindPosts:
			for i := range c.Posts {
				c.Posts[i].ID = remap.post(c.Posts[i].ID)
				c.Posts[i].WebLogID = webLogID
				c.Posts[i].AuthorID = remap.user(c.Posts[i].AuthorID)
				for j := range c.Posts[i].CategoryIDs {
					c.Posts[i].CategoryIDs[j] = remap.category(c.Posts[i].CategoryIDs[j])
				}
			}
			if err := s.Posts().Restore(ctx, c.Posts); err != nil {
				return zero, fmt.Errorf("restoring posts: %w", err)
			}
		case kindUploads:
			for i := range c.Uploads {
				c.Uploads[i].ID = remap.upload(c.Uploads[i].ID)
				c.Uploads[i].WebLogID = webLogID
			}
			if err := s.Uploads().Restore(ctx, c.Uploads); err != nil {
				return zero, fmt.Errorf("restoring uploads: %w", err)
			}
		default:
			return zero, fmt.Errorf("unknown archive chunk kind %q", c.Kind)
		}
	}
	if !sawWebLog {
		return zero, errors.New("archive carries no web log record")
	}
	return webLogID, nil
}

// Dump writes the archive to filePath and a manifest alongside it.
func Dump(ctx context.Context, s store.Store, webLogID models.WebLogID, filePath string) error {
	createdAt := time.Now().UTC()

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("creating archive file: %w", err)
	}
	defer file.Close()

	hash := sha256.New()
	counts, err := Write(ctx, s, webLogID, io.MultiWriter(file, hash))
	if err != nil {
		return err
	}

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("inspecting archive file: %w", err)
	}
	return WriteManifest(filePath, &Manifest{
		Filename:  filepath.Base(filePath),
		CreatedAt: createdAt,
		Size:      info.Size(),
		WebLogID:  webLogID,
		Counts:    *counts,
		SHA256:    fmt.Sprintf("%x", hash.Sum(nil)),
	})
}

// Load verifies the archive at filePath against its manifest and restores it.
func Load(ctx context.Context, s store.Store, filePath string, opts RestoreOptions) (models.WebLogID, error) {
	var zero models.WebLogID

	manifest, err := ReadManifest(filePath)
	if err != nil {
		return zero, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return zero, fmt.Errorf("reading archive file: %w", err)
	}
	if sum := fmt.Sprintf("%x", sha256.Sum256(data)); manifest.SHA256 != "" && sum != manifest.SHA256 {
		return zero, fmt.Errorf("archive checksum mismatch: manifest says %s, file is %s", manifest.SHA256, sum)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return zero, fmt.Errorf("opening archive file: %w", err)
	}
	defer file.Close()
	return Read(ctx, s, file, opts)
}
