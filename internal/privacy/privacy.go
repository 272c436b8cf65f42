// Package privacy produces non-reversible client IP fingerprints for scan
// deduplication. The salt rotates with the UTC calendar day, so the same
// IP cannot be correlated across days without the secret.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DefaultSecret is used when no operator secret is configured. Deployments
// sharing it also share the (degraded) unlinkability guarantee; callers
// should warn when falling back to it.
const DefaultSecret = "default-secret"

const hashLen = 16

// Hasher derives daily-rotating IP fingerprints.
type Hasher struct {
	secret string
	now    func() time.Time
}

// NewHasher builds a hasher. An empty secret falls back to DefaultSecret.
func NewHasher(secret string) *Hasher {
	if secret == "" {
		secret = DefaultSecret
	}
	return &Hasher{secret: secret, now: time.Now}
}

// UsingDefaultSecret reports whether the hasher runs on the built-in secret.
func (h *Hasher) UsingDefaultSecret() bool {
	return h.secret == DefaultSecret
}

// HashIP returns a 16-character lowercase hex fingerprint of ip, stable
// within one UTC day and unlinkable across days.
func (h *Hasher) HashIP(ip string) string {
	day := h.now().UTC().Format("2006-01-02")
	salt := h.secret + ":" + day

	sum := sha256.Sum256([]byte(ip + ":" + salt))
	return hex.EncodeToString(sum[:])[:hashLen]
}
