package privacy

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedHasher(secret string, at time.Time) *Hasher {
	h := NewHasher(secret)
	h.now = func() time.Time { return at }
	return h
}

func TestHashIPFormat(t *testing.T) {
	h := fixedHasher("s3cret", time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	out := h.HashIP("203.0.113.7")
	require.Len(t, out, 16)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}$`), out)
}

func TestHashIPDeterministicWithinDay(t *testing.T) {
	morning := fixedHasher("s3cret", time.Date(2024, 6, 1, 0, 5, 0, 0, time.UTC))
	evening := fixedHasher("s3cret", time.Date(2024, 6, 1, 23, 55, 0, 0, time.UTC))
	assert.Equal(t, morning.HashIP("203.0.113.7"), evening.HashIP("203.0.113.7"))
}

func TestHashIPRotatesAcrossDays(t *testing.T) {
	day1 := fixedHasher("s3cret", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	day2 := fixedHasher("s3cret", time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC))
	assert.NotEqual(t, day1.HashIP("203.0.113.7"), day2.HashIP("203.0.113.7"))
}

func TestHashIPRotationUsesUTCDay(t *testing.T) {
	// 2024-06-01 23:30 UTC and its +02:00 local rendering are the same UTC day.
	loc := time.FixedZone("CEST", 2*60*60)
	utc := fixedHasher("s3cret", time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC))
	local := fixedHasher("s3cret", time.Date(2024, 6, 2, 1, 30, 0, 0, loc))
	assert.Equal(t, utc.HashIP("203.0.113.7"), local.HashIP("203.0.113.7"))
}

func TestHashIPDistinctInputs(t *testing.T) {
	h := fixedHasher("s3cret", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	seen := map[string]string{}
	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "192.0.2.1", "2001:db8::1", "unknown"} {
		out := h.HashIP(ip)
		prev, dup := seen[out]
		require.False(t, dup, "collision between %s and %s", ip, prev)
		seen[out] = ip
	}
}

func TestHashIPSecretChangesOutput(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := fixedHasher("secret-a", at)
	b := fixedHasher("secret-b", at)
	assert.NotEqual(t, a.HashIP("203.0.113.7"), b.HashIP("203.0.113.7"))
}

func TestEmptySecretFallsBackToDefault(t *testing.T) {
	h := NewHasher("")
	assert.True(t, h.UsingDefaultSecret())
	h2 := NewHasher("configured")
	assert.False(t, h2.UsingDefaultSecret())
}
