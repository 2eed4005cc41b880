package gravatar_test

import (
	"testing"

	"github.com/mdouchement/echoppe/pkg/gravatar"
	"github.com/stretchr/testify/assert"
)

func TestURL(t *testing.T) {
	// md5("george.abitbol@nowhere.lan")
	assert.Equal(t,
		"https://www.gravatar.com/avatar/8aba66af0e9db85382370b28348b5a8b?s=100&d=retro&r=g",
		gravatar.URL("george.abitbol@nowhere.lan"))
}

func TestURLNormalizesEmail(t *testing.T) {
	assert.Equal(t, gravatar.URL("george.abitbol@nowhere.lan"), gravatar.URL("  George.Abitbol@Nowhere.LAN "))
	assert.NotEqual(t, gravatar.URL("a@nowhere.lan"), gravatar.URL("b@nowhere.lan"))
}
