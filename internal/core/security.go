// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const saltLength = 16

var ErrInvalidHash = errors.New("invalid password hash")

// argonParams are the cost settings encoded in a stored argon2id hash.
type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var currentParams = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

func (p argonParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

func (p argonParams) encode(salt, key []byte) string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory,
		p.time,
		p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

// HashPassword returns an encoded argon2id hash with a fresh random salt.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	return currentParams.encode(salt, currentParams.derive(password, salt)), nil
}

// VerifyPassword accepts argon2id hashes and the bcrypt hashes imported
// with accounts from the previous console.
func VerifyPassword(password, encodedHash string) (bool, error) {
	if isBcryptHash(encodedHash) {
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, fmt.Errorf("compare bcrypt hash: %w", err)
		}
	}

	params, salt, key, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(key, params.derive(password, salt)) == 1, nil
}

// VerifyPasswordWithRehash also returns a replacement hash when the stored
// one is bcrypt or uses outdated argon2id costs. The replacement is empty
// when nothing needs to change or the password did not match.
func VerifyPasswordWithRehash(
	password, encodedHash string,
) (bool, string, error) {
	valid, err := VerifyPassword(password, encodedHash)
	if err != nil || !valid {
		return false, "", err
	}

	if !needsRehash(encodedHash) {
		return true, "", nil
	}

	newHash, err := HashPassword(password)
	if err != nil {
		//nolint:nilerr // the login itself succeeded; the upgrade waits for next time
		return true, "", nil
	}
	return true, newHash, nil
}

var dummyHash = sync.OnceValue(func() string {
	hash, err := HashPassword("login-timing-equalizer")
	if err != nil {
		panic(fmt.Sprintf("security: generate dummy hash: %v", err))
	}
	return hash
})

// VerifyPasswordTimingSafe always burns one hash computation, so a missing
// account (nil or empty encodedHash) costs the same as a wrong password.
func VerifyPasswordTimingSafe(
	password string,
	encodedHash *string,
) (bool, string, error) {
	if encodedHash == nil || *encodedHash == "" {
		_, _ = VerifyPassword(password, dummyHash()) //nolint:errcheck // result is discarded
		return false, "", nil
	}

	return VerifyPasswordWithRehash(password, *encodedHash)
}

func decodeHash(encodedHash string) (argonParams, []byte, []byte, error) {
	var params argonParams

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return params, nil, nil, fmt.Errorf("%w: malformed", ErrInvalidHash)
	}

	if parts[1] != "argon2id" {
		return params, nil, nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, fmt.Errorf("%w: version: %w", ErrInvalidHash, err)
	}
	if version != argon2.Version {
		return params, nil, nil, fmt.Errorf("%w: incompatible version %d", ErrInvalidHash, version)
	}

	if _, err := fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&params.memory,
		&params.time,
		&params.threads,
	); err != nil {
		return params, nil, nil, fmt.Errorf("%w: params: %w", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, fmt.Errorf("%w: salt: %w", ErrInvalidHash, err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, fmt.Errorf("%w: key: %w", ErrInvalidHash, err)
	}

	//nolint:gosec // G115: argon2id keys are 32 bytes
	params.keyLen = uint32(len(key))

	return params, salt, key, nil
}

func needsRehash(encodedHash string) bool {
	if isBcryptHash(encodedHash) {
		return true
	}

	params, _, _, err := decodeHash(encodedHash)
	return err != nil || params != currentParams
}

func isBcryptHash(encodedHash string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(encodedHash, prefix) {
			return true
		}
	}
	return false
}
