package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func TestRoundTrip(t *testing.T) {
	a, err := New(testKey())
	require.NoError(t, err)

	ct, err := a.EncryptToString("portal-password")
	require.NoError(t, err)
	assert.NotContains(t, ct, "portal-password")

	pt, err := a.DecryptString(ct)
	require.NoError(t, err)
	assert.Equal(t, "portal-password", pt)
}

func TestEncryptIsNondeterministic(t *testing.T) {
	a, err := New(testKey())
	require.NoError(t, err)

	c1, err := a.EncryptToString("same input")
	require.NoError(t, err)
	c2, err := a.EncryptToString("same input")
	require.NoError(t, err)
	assert.NotEqual(t, c1, c2)
}

func TestDecryptRejectsTamper(t *testing.T) {
	a, err := New(testKey())
	require.NoError(t, err)

	ct, err := a.EncryptToString("secret")
	require.NoError(t, err)

	tampered := []byte(ct)
	if tampered[0] == 'A' {
		tampered[0] = 'B'
	} else {
		tampered[0] = 'A'
	}
	_, err = a.DecryptString(string(tampered))
	assert.Error(t, err)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	a, err := New(testKey())
	require.NoError(t, err)
	b, err := New([]byte("fedcba9876543210fedcba9876543210"))
	require.NoError(t, err)

	ct, err := a.EncryptToString("secret")
	require.NoError(t, err)
	_, err = b.DecryptString(ct)
	assert.Error(t, err)
}

func TestDecryptRejectsTruncated(t *testing.T) {
	a, err := New(testKey())
	require.NoError(t, err)
	_, err = a.DecryptString("AAAA")
	assert.Error(t, err)
}

func TestNewRejectsBadKeySize(t *testing.T) {
	_, err := New([]byte("short"))
	assert.Error(t, err)
}
