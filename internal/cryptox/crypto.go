// Package cryptox holds the password-hashing primitives used for account
// credentials.
package cryptox

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltSize = 16
	keySize  = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var errBadEncoding = errors.New("stored credential is not hex encoded")

// DeriveKey stretches password with salt using Argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, keySize)
}

// HashPassword derives a key from password with a fresh random salt.
// Both values are returned hex encoded, ready to be stored in a profile.
func HashPassword(password string) (hash string, salt string) {
	s := common.GenerateRandByteArray(saltSize)
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	return hex.EncodeToString(DeriveKey(pw, s)), hex.EncodeToString(s)
}

// VerifyPassword reports whether candidate matches the stored hash and salt.
// The comparison runs in constant time.
func VerifyPassword(candidate, hash, salt string) (bool, error) {
	want, err := hex.DecodeString(hash)
	if err != nil {
		return false, errBadEncoding
	}
	s, err := hex.DecodeString(salt)
	if err != nil {
		return false, errBadEncoding
	}

	pw := []byte(candidate)
	defer common.WipeByteArray(pw)

	got := DeriveKey(pw, s)
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// OwnerID derives the stable owner identifier from an account email.
// The email is trimmed and lower-cased first so "Ann@X.org " and "ann@x.org"
// map to the same owner.
func OwnerID(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}
