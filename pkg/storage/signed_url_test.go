package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDownloadSignerRoundTrip(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)

	token, expiresAt, err := signer.Sign("shop-1", "exports/shop-1/scans-2026-03-14.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, expiresAt.After(time.Now()))

	shopID, name, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "shop-1", shopID)
	require.Equal(t, "exports/shop-1/scans-2026-03-14.csv", name)
}

func TestDownloadSignerExpired(t *testing.T) {
	signer := NewDownloadSigner("secret", 10*time.Millisecond)

	token, _, err := signer.Sign("shop-1", "exports/shop-1/scans.csv")
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	_, _, err = signer.Verify(token)
	require.ErrorContains(t, err, "expired")
}

func TestDownloadSignerTamperedToken(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)

	token, _, err := signer.Sign("shop-1", "exports/shop-1/scans.csv")
	require.NoError(t, err)

	_, _, err = NewDownloadSigner("other-secret", time.Hour).Verify(token)
	require.Error(t, err)

	_, _, err = signer.Verify(token[:len(token)-2])
	require.Error(t, err)
}
