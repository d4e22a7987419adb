package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/quillcms/quillcms/pkg/models"
)

// Manifest describes an archive file. It lives next to the archive as
// <archive>.manifest.json and lets tooling inspect and verify a dump without
// decoding the CBOR stream.
type Manifest struct {
	Filename  string          `json:"filename"`
	CreatedAt time.Time       `json:"created_at"`
	Size      int64           `json:"size"`
	WebLogID  models.WebLogID `json:"web_log_id"`
	Counts    Counts          `json:"counts"`
	SHA256    string          `json:"sha256,omitempty"`
}

func manifestPath(archivePath string) string {
	return archivePath + ".manifest.json"
}

// WriteManifest writes the manifest file next to the archive.
func WriteManifest(archivePath string, manifest *Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing manifest: %w", err)
	}
	return os.WriteFile(manifestPath(archivePath), data, 0600)
}

// ReadManifest reads the manifest for the archive at archivePath. Manifests
// are mandatory for file-based archives; a missing one is an error.
func ReadManifest(archivePath string) (*Manifest, error) {
	data, err := os.ReadFile(manifestPath(archivePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no manifest found for %s", archivePath)
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &manifest, nil
}
