package password_test

import (
	"strings"
	"testing"

	"github.com/mdouchement/echoppe/internal/password"
	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	encoded, err := password.Generate("password42")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "pbkdf2:sha256:"))

	parts := strings.Split(encoded, "$")
	assert.Len(t, parts, 3)
	assert.Len(t, parts[1], 8)

	// Salts are random so two hashes of the same password must differ.
	encoded2, err := password.Generate("password42")
	assert.NoError(t, err)
	assert.NotEqual(t, encoded, encoded2)
}

func TestCompare(t *testing.T) {
	encoded, err := password.Generate("password42")
	assert.NoError(t, err)

	assert.NoError(t, password.Compare(encoded, "password42"))
	assert.Equal(t, password.ErrMismatchedHashAndPassword, password.Compare(encoded, "password43"))
}

func TestCompareMalformed(t *testing.T) {
	assert.Error(t, password.Compare("not-an-encoded-hash", "password42"))
	assert.Error(t, password.Compare("bcrypt:12$saltsalt$deadbeef", "password42"))
	assert.Error(t, password.Compare("pbkdf2:sha256:x$saltsalt$deadbeef", "password42"))
	assert.Error(t, password.Compare("pbkdf2:sha256:1000$saltsalt$zzzz", "password42"))
}
