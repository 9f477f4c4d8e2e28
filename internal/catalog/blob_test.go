package catalog

import (
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURL(t *testing.T) {
	signer := NewBlobSigner("https://blobs.example.com/songs/", []byte("test-key"))

	raw := signer.SignedURL("/artists/track.mp3", time.Hour)
	assert.True(t, strings.HasPrefix(raw, "https://blobs.example.com/songs/artists/track.mp3?se="))

	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	se := parsed.Query().Get("se")
	sig := parsed.Query().Get("sig")
	require.NotEmpty(t, se)
	require.NotEmpty(t, sig)

	expires, err := strconv.ParseInt(se, 10, 64)
	require.NoError(t, err)
	assert.Greater(t, expires, time.Now().Unix())

	assert.True(t, signer.Verify("artists/track.mp3", expires, sig))
}

func TestVerify(t *testing.T) {
	signer := NewBlobSigner("https://blobs.example.com/songs", []byte("test-key"))

	expires := time.Now().Add(time.Hour).Unix()
	sig := signer.sign("artists/track.mp3", expires)

	t.Run("Valid", func(t *testing.T) {
		assert.True(t, signer.Verify("artists/track.mp3", expires, sig))
	})

	t.Run("LeadingSlashNormalized", func(t *testing.T) {
		assert.True(t, signer.Verify("/artists/track.mp3", expires, sig))
	})

	t.Run("TamperedPath", func(t *testing.T) {
		assert.False(t, signer.Verify("artists/other.mp3", expires, sig))
	})

	t.Run("TamperedSignature", func(t *testing.T) {
		assert.False(t, signer.Verify("artists/track.mp3", expires, sig+"00"))
	})

	t.Run("Expired", func(t *testing.T) {
		past := time.Now().Add(-time.Minute).Unix()
		oldSig := signer.sign("artists/track.mp3", past)
		assert.False(t, signer.Verify("artists/track.mp3", past, oldSig))
	})

	t.Run("WrongKey", func(t *testing.T) {
		other := NewBlobSigner("https://blobs.example.com/songs", []byte("other-key"))
		assert.False(t, other.Verify("artists/track.mp3", expires, sig))
	})
}
