package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	user := WebLogUser{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", user.DisplayName())

	user.PreferredName = "Countess"
	assert.Equal(t, "Countess", user.DisplayName())
}

func TestHasAccess(t *testing.T) {
	assert.True(t, Editor.HasAccess(Author))
	assert.True(t, Editor.HasAccess(Editor))
	assert.False(t, Editor.HasAccess(WebLogAdmin))
	assert.True(t, Administrator.HasAccess(WebLogAdmin))

	// Unknown levels grant and satisfy nothing.
	assert.False(t, AccessLevel("superuser").HasAccess(Author))
	assert.False(t, Administrator.HasAccess(AccessLevel("superuser")))
}
