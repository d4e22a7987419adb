package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWebLogID(t *testing.T) {
	id := NewWebLogID()

	parsed, err := ParseWebLogID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseWebLogID("not-a-uuid")
	assert.Error(t, err)
}

func TestIDRecordID(t *testing.T) {
	id := NewPostID()
	rid := id.RecordID()
	assert.Equal(t, "post", rid.Table)
	assert.Equal(t, id.String(), rid.ID)
}

func TestIDSQLRoundTrip(t *testing.T) {
	id := NewCategoryID()

	value, err := id.Value()
	require.NoError(t, err)

	var scanned CategoryID
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, id, scanned)

	var fromNull CategoryID
	require.NoError(t, fromNull.Scan(nil))
	assert.True(t, fromNull.IsZero())

	zeroValue, err := CategoryID{}.Value()
	require.NoError(t, err)
	assert.Nil(t, zeroValue, "zero IDs store as NULL")
}

func TestIDJSONInsideDocument(t *testing.T) {
	type doc struct {
		ID       PageID   `json:"id"`
		WebLogID WebLogID `json:"web_log_id"`
	}
	original := doc{ID: NewPageID(), WebLogID: NewWebLogID()}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded doc
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestIDCBORAcceptsBothForms(t *testing.T) {
	id := NewUploadID()

	// The tagged RecordID form the document backend produces.
	tagged, err := id.MarshalCBOR()
	require.NoError(t, err)
	var fromTag UploadID
	require.NoError(t, fromTag.UnmarshalCBOR(tagged))
	assert.Equal(t, id, fromTag)

	// A record ID tagged for another table must be refused.
	var wrongTable PostID
	assert.Error(t, wrongTable.UnmarshalCBOR(tagged))
}

func TestParseThemeAssetID(t *testing.T) {
	id, err := ParseThemeAssetID("paper/css/site.css")
	require.NoError(t, err)
	assert.Equal(t, ThemeID("paper"), id.ThemeID)
	assert.Equal(t, "css/site.css", id.Path, "only the first separator splits")
	assert.Equal(t, "paper/css/site.css", id.String())

	for _, bad := range []string{"", "paper", "paper/", "/site.css"} {
		_, err := ParseThemeAssetID(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestThemeAssetIDJSON(t *testing.T) {
	id := ThemeAssetID{ThemeID: "paper", Path: "js/app.js"}

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.JSONEq(t, `"paper/js/app.js"`, string(data))

	var decoded ThemeAssetID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded)
}
