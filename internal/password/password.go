// Package password implements the salted PBKDF2-SHA256 scheme used to store
// user passwords. The encoded form is self-describing and compatible with
// the historical records of the application:
//
//	pbkdf2:sha256:<iterations>$<salt>$<hex digest>
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	iterations = 600_000
	saltLength = 8
	keyLength  = 32
)

// ErrMismatchedHashAndPassword is returned when a password does not match its hash.
var ErrMismatchedHashAndPassword = errors.New("password: hashed password is not the hash of the given password")

// Generate derives a salted hash of the given clear password.
func Generate(clear string) (string, error) {
	salt, err := salt(saltLength)
	if err != nil {
		return "", errors.Wrap(err, "could not generate salt")
	}

	digest := pbkdf2.Key([]byte(clear), []byte(salt), iterations, keyLength, sha256.New)
	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", iterations, salt, hex.EncodeToString(digest)), nil
}

// Compare checks, in constant time, that the given clear password matches the encoded hash.
// It returns ErrMismatchedHashAndPassword on mismatch.
func Compare(encoded, clear string) error {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 {
		return errors.New("password: malformed encoded hash")
	}

	header := strings.Split(parts[0], ":")
	if len(header) != 3 || header[0] != "pbkdf2" || header[1] != "sha256" {
		return errors.New("password: unsupported hashing scheme")
	}

	n, err := strconv.Atoi(header[2])
	if err != nil || n <= 0 {
		return errors.New("password: malformed iteration count")
	}

	digest, err := hex.DecodeString(parts[2])
	if err != nil {
		return errors.New("password: malformed digest")
	}

	candidate := pbkdf2.Key([]byte(clear), []byte(parts[1]), n, len(digest), sha256.New)
	if subtle.ConstantTimeCompare(candidate, digest) != 1 {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

// salt generates a random alphanumeric salt of the given length.
func salt(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	max := big.NewInt(int64(len(charset)))
	salt := make([]byte, length)
	for i := range salt {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		salt[i] = charset[int(n.Int64())]
	}
	return string(salt), nil
}
