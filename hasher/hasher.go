// Package hasher defines the password-hashing boundary that protects the
// secret half of a bearer token. Implementations must be safe for concurrent
// use; verification is CPU-bound by design.
package hasher

// Hasher hashes token secrets for storage and verifies presented secrets
// against stored encodings. NeedsRehash reports whether a stored encoding was
// produced under outdated parameters and should be re-encoded on next use.
type Hasher interface {
	Hash(secret []byte) (string, error)
	Verify(secret []byte, encoded string) bool
	NeedsRehash(encoded string) bool
}
