package models

import "time"

// AccessLevel is what a user is allowed to do within their web log. Levels
// are ordered; HasAccess answers "at least this level".
type AccessLevel string

const (
	// Author users can create and publish their own content.
	Author AccessLevel = "author"
	// Editor users can edit and publish anyone's content.
	Editor AccessLevel = "editor"
	// WebLogAdmin users can also manage the web log's settings.
	WebLogAdmin AccessLevel = "web_log_admin"
	// Administrator users can manage the whole installation.
	Administrator AccessLevel = "administrator"
)

var accessLevelRank = map[AccessLevel]int{
	Author:        0,
	Editor:        1,
	WebLogAdmin:   2,
	Administrator: 3,
}

// HasAccess reports whether the level grants at least the required level.
func (a AccessLevel) HasAccess(required AccessLevel) bool {
	have, ok := accessLevelRank[a]
	if !ok {
		return false
	}
	want, ok := accessLevelRank[required]
	if !ok {
		return false
	}
	return have >= want
}

// WebLogUser is an account scoped to one web log. Email is unique within the
// web log. PasswordHash is opaque to the data layer; hashing is the
// application's concern.
type WebLogUser struct {
	ID            WebLogUserID `json:"id"`
	WebLogID      WebLogID     `json:"web_log_id"`
	Email         string       `json:"email"`
	FirstName     string       `json:"first_name"`
	LastName      string       `json:"last_name"`
	PreferredName string       `json:"preferred_name"`
	PasswordHash  string       `json:"password_hash"`
	URL           *string      `json:"url,omitempty"`
	AccessLevel   AccessLevel  `json:"access_level"`
	CreatedOn     time.Time    `json:"created_on"`
	LastSeenOn    *time.Time   `json:"last_seen_on,omitempty"`
}

// DisplayName is the name shown for the user: the preferred name when set,
// otherwise "First Last".
func (u WebLogUser) DisplayName() string {
	if u.PreferredName != "" {
		return u.PreferredName
	}
	return u.FirstName + " " + u.LastName
}
