package models

import "time"

// ThemeTemplate is one named template inside a theme bundle.
type ThemeTemplate struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Theme is a named, versioned bundle of templates. Themes are shared across
// web logs and are not tenant-scoped.
type Theme struct {
	ID        ThemeID         `json:"id"`
	Name      string          `json:"name"`
	Version   string          `json:"version"`
	Templates []ThemeTemplate `json:"templates,omitempty"`
}

// ThemeAsset is a file distributed with a theme (stylesheet, script, image).
type ThemeAsset struct {
	ID        ThemeAssetID `json:"id"`
	UpdatedOn time.Time    `json:"updated_on"`
	Data      []byte       `json:"data,omitempty"`
}

// Upload is a file uploaded to a web log.
type Upload struct {
	ID        UploadID  `json:"id"`
	WebLogID  WebLogID  `json:"web_log_id"`
	Path      Permalink `json:"path"`
	UpdatedOn time.Time `json:"updated_on"`
	Data      []byte    `json:"data,omitempty"`
}
