package hasher

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	algorithm  = "pbkdf2_sha256"
	saltLength = 16
	keyLength  = 32

	// DefaultIterations is deliberately low compared to interactive password
	// hashing: the input is a 128-bit random secret, not a guessable
	// password, so the cost only has to make bulk hashing of a leaked token
	// table expensive.
	DefaultIterations = 1000
)

var _ Hasher = (*PBKDF2Hasher)(nil)

// PBKDF2Hasher encodes secrets as "pbkdf2_sha256$<iterations>$<salt>$<hash>".
type PBKDF2Hasher struct {
	iterations int
}

// NewPBKDF2Hasher returns a hasher configured for the given iteration count.
// Non-positive counts fall back to DefaultIterations.
func NewPBKDF2Hasher(iterations int) *PBKDF2Hasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &PBKDF2Hasher{iterations: iterations}
}

func (h *PBKDF2Hasher) Hash(secret []byte) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "[PBKDF2Hasher.Hash] rand.Read")
	}
	encodedSalt := base64.RawURLEncoding.EncodeToString(salt)
	key := pbkdf2.Key(secret, []byte(encodedSalt), h.iterations, keyLength, sha256.New)
	encodedKey := base64.StdEncoding.EncodeToString(key)
	return fmt.Sprintf("%s$%d$%s$%s", algorithm, h.iterations, encodedSalt, encodedKey), nil
}

// Verify recomputes the hash under the parameters embedded in encoded and
// compares in constant time. Any structurally invalid encoding verifies
// false rather than erroring, so callers cannot skip the comparison.
func (h *PBKDF2Hasher) Verify(secret []byte, encoded string) bool {
	iterations, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false
	}
	computed := pbkdf2.Key(secret, []byte(salt), iterations, len(key), sha256.New)
	return subtle.ConstantTimeCompare(computed, key) == 1
}

// NeedsRehash reports whether encoded was produced with a different iteration
// count than the hasher is currently configured with. Unparseable encodings
// also need rehashing.
func (h *PBKDF2Hasher) NeedsRehash(encoded string) bool {
	iterations, _, _, err := decodeHash(encoded)
	if err != nil {
		return true
	}
	return iterations != h.iterations
}

func decodeHash(encoded string) (iterations int, salt string, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 || parts[0] != algorithm {
		return 0, "", nil, errors.New("[decodeHash] unrecognised hash encoding")
	}
	iterations, err = strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return 0, "", nil, errors.New("[decodeHash] invalid iteration count")
	}
	key, err = base64.StdEncoding.DecodeString(parts[3])
	if err != nil || len(key) == 0 {
		return 0, "", nil, errors.New("[decodeHash] invalid key encoding")
	}
	return iterations, parts[2], key, nil
}
