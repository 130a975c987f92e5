// fingerprint.go - Content fingerprinting for duplicate-upload detection

package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint is a SHA-256 hex digest of raw upload bytes. It is compared
// for equality only and never persisted beyond the active session.
type Fingerprint string

// Of computes the fingerprint of raw content. Empty input still produces
// a valid fingerprint.
func Of(raw []byte) Fingerprint {
	sum := sha256.Sum256(raw)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// ShouldExtract reports whether a fresh extraction is needed. It returns
// false only when both fingerprints are defined and equal (the same file
// was resubmitted); in every other case, including a first upload with no
// previous fingerprint, it returns true.
func ShouldExtract(next, previous Fingerprint) bool {
	if next == "" || previous == "" {
		return true
	}
	return next != previous
}
