// Package cryptox hashes and verifies account passwords.
//
// Two schemes are supported: bcrypt (default, what existing accounts use) and
// argon2id. Hashes are self-describing strings, so a Compare on one hasher
// rejects hashes produced by the other instead of panicking.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hasher names accepted by NewHasher.
const (
	HasherBcrypt = "bcrypt"
	HasherArgon2 = "argon2"
)

var ErrEmptyPassword = errors.New("empty password")

// PasswordHasher turns a plaintext password into a storable hash and checks
// candidates against it in constant time.
type PasswordHasher interface {
	Hash(password []byte) (string, error)
	Compare(hash string, password []byte) bool
}

// NewHasher returns the hasher registered under name.
func NewHasher(name string) (PasswordHasher, error) {
	switch name {
	case "", HasherBcrypt:
		return BcryptHasher{Cost: 10}, nil
	case HasherArgon2:
		return DefaultArgon2Hasher(), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

// BcryptHasher uses golang.org/x/crypto/bcrypt. Cost 10 matches the accounts
// created by the original web app.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password []byte) (string, error) {
	if len(password) == 0 {
		return "", ErrEmptyPassword
	}
	b, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Compare(hash string, password []byte) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), password) == nil
}

// Argon2Hasher derives an argon2id key. Encoded as "argon2id$<salt>$<key>"
// with raw standard base64.
type Argon2Hasher struct {
	Time       uint32
	MemoryKiB  uint32
	Threads    uint8
	KeyLength  uint32
	SaltLength int
}

func DefaultArgon2Hasher() Argon2Hasher {
	return Argon2Hasher{Time: 1, MemoryKiB: 64 * 1024, Threads: 4, KeyLength: 32, SaltLength: 16}
}

const argon2Prefix = "argon2id"

func (h Argon2Hasher) Hash(password []byte) (string, error) {
	if len(password) == 0 {
		return "", ErrEmptyPassword
	}
	salt := common.GenerateRandByteArray(h.SaltLength)
	key := argon2.IDKey(password, salt, h.Time, h.MemoryKiB, h.Threads, h.KeyLength)
	enc := base64.RawStdEncoding
	return strings.Join([]string{argon2Prefix, enc.EncodeToString(salt), enc.EncodeToString(key)}, "$"), nil
}

func (h Argon2Hasher) Compare(hash string, password []byte) bool {
	parts := strings.Split(hash, "$")
	if len(parts) != 3 || parts[0] != argon2Prefix {
		return false
	}
	enc := base64.RawStdEncoding
	salt, err := enc.DecodeString(parts[1])
	if err != nil {
		return false
	}
	want, err := enc.DecodeString(parts[2])
	if err != nil {
		return false
	}
	got := argon2.IDKey(password, salt, h.Time, h.MemoryKiB, h.Threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}
