package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DownloadSigner issues and verifies short-lived tokens that authorize
// downloading a stored export file for one shop. Tokens are HMAC-signed
// so they can be handed to the browser without a server-side record.
type DownloadSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewDownloadSigner constructs a signer. A non-positive ttl falls back
// to 24 hours.
func NewDownloadSigner(secret string, ttl time.Duration) *DownloadSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DownloadSigner{secret: []byte(secret), ttl: ttl}
}

// Sign returns a token granting access to the named file within the
// given shop, and the moment it expires.
func (s *DownloadSigner) Sign(shopID, name string) (string, time.Time, error) {
	if shopID == "" || name == "" {
		return "", time.Time{}, fmt.Errorf("shop id and file name required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("download signing secret missing")
	}

	expiresAt := time.Now().Add(s.ttl)
	encodedName := base64.RawURLEncoding.EncodeToString([]byte(name))
	payload := shopID + "|" + strconv.FormatInt(expiresAt.Unix(), 10) + "|" + encodedName
	token := payload + "|" + s.signature(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(token)), expiresAt, nil
}

// Verify checks a token's signature and expiry and returns the shop and
// file name it was issued for.
func (s *DownloadSigner) Verify(token string) (shopID, name string, err error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", "", fmt.Errorf("malformed download token")
	}
	parts := strings.Split(string(raw), "|")
	if len(parts) != 4 {
		return "", "", fmt.Errorf("malformed download token")
	}

	payload := strings.Join(parts[:3], "|")
	if !hmac.Equal([]byte(s.signature(payload)), []byte(parts[3])) {
		return "", "", fmt.Errorf("invalid download token signature")
	}

	expUnix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", "", fmt.Errorf("malformed download token")
	}
	if time.Now().After(time.Unix(expUnix, 0)) {
		return "", "", fmt.Errorf("download token expired")
	}

	decoded, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", "", fmt.Errorf("malformed download token")
	}
	return parts[0], string(decoded), nil
}

func (s *DownloadSigner) signature(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
