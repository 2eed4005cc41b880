// Package gravatar builds avatar URLs for the gravatar.com service.
package gravatar

import (
	"crypto/md5"
	"fmt"
	"strings"
)

const (
	size     = 100
	rating   = "g"
	fallback = "retro"
)

// URL returns the avatar URL of the given email.
// Any input produces a valid URL, unknown emails resolve to a generated avatar.
func URL(email string) string {
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=%s&r=%s", hash, size, fallback, rating)
}
