package tokens

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, accessTTL time.Duration) *Codec {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return NewCodec(key, &key.PublicKey, "jobhub-test", accessTTL, 24*time.Hour)
}

func TestCodec_IssueRead_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, 15*time.Minute)

	for _, kind := range []Kind{KindAccess, KindRefresh} {
		kind := kind
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			raw, err := codec.Issue(kind, 42, true)
			require.NoError(t, err)
			require.NotEmpty(t, raw)

			claims, ok := codec.Read(raw)
			require.True(t, ok)
			assert.Equal(t, uint(42), claims.UserID)
			assert.True(t, claims.IsSuperuser)
			assert.Equal(t, "42", claims.Subject)
			assert.Equal(t, "jobhub-test", claims.Issuer)
			assert.NotEmpty(t, claims.ID)
			require.NotNil(t, claims.ExpiresAt)
			assert.WithinDuration(t, time.Now().Add(codec.TTL(kind)), claims.ExpiresAt.Time, 5*time.Second)
		})
	}
}

func TestCodec_Read_UniqueJTIPerIssuance(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, 15*time.Minute)

	first, err := codec.Issue(KindAccess, 1, false)
	require.NoError(t, err)
	second, err := codec.Issue(KindAccess, 1, false)
	require.NoError(t, err)

	c1, ok := codec.Read(first)
	require.True(t, ok)
	c2, ok := codec.Read(second)
	require.True(t, ok)
	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestCodec_Read_Expired(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, -time.Minute)

	raw, err := codec.Issue(KindAccess, 7, false)
	require.NoError(t, err)

	claims, ok := codec.Read(raw)
	assert.False(t, ok)
	assert.Nil(t, claims)
}

func TestCodec_Read_WrongKey(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, 15*time.Minute)
	other := newTestCodec(t, 15*time.Minute)

	raw, err := codec.Issue(KindAccess, 7, false)
	require.NoError(t, err)

	_, ok := other.Read(raw)
	assert.False(t, ok)
}

func TestCodec_Read_WrongIssuer(t *testing.T) {
	t.Parallel()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	issuing := NewCodec(key, &key.PublicKey, "someone-else", 15*time.Minute, 24*time.Hour)
	verifying := NewCodec(key, &key.PublicKey, "jobhub-test", 15*time.Minute, 24*time.Hour)

	raw, err := issuing.Issue(KindAccess, 7, false)
	require.NoError(t, err)

	_, ok := verifying.Read(raw)
	assert.False(t, ok)
}

func TestCodec_Read_Garbage(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, 15*time.Minute)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, ok := codec.Read(raw)
		assert.False(t, ok)
	}
}
