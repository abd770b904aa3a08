// internal/utils/crypto_test.go
package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundtrip(t *testing.T) {
	sealed, err := SealCredentials("test-seal-key", "user:pass\nrecovery: code-123")
	require.NoError(t, err)

	plaintext, err := OpenCredentials("test-seal-key", sealed)
	require.NoError(t, err)
	assert.Equal(t, "user:pass\nrecovery: code-123", plaintext)
}

func TestSealProducesDistinctCiphertexts(t *testing.T) {
	first, err := SealCredentials("test-seal-key", "secret")
	require.NoError(t, err)
	second, err := SealCredentials("test-seal-key", "secret")
	require.NoError(t, err)

	// Random nonces: identical plaintexts must not seal identically.
	assert.NotEqual(t, first, second)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	sealed, err := SealCredentials("test-seal-key", "secret")
	require.NoError(t, err)

	_, err = OpenCredentials("wrong-key", sealed)
	assert.Error(t, err)
}

func TestOpenRejectsTruncatedCiphertext(t *testing.T) {
	sealed, err := SealCredentials("test-seal-key", "secret")
	require.NoError(t, err)

	_, err = OpenCredentials("test-seal-key", sealed[:4])
	assert.Error(t, err)
}

func TestSealRequiresKey(t *testing.T) {
	_, err := SealCredentials("", "secret")
	assert.Error(t, err)
}

func TestGeneratePayoutReference(t *testing.T) {
	ref, err := GeneratePayoutReference()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, "payout_"))
	assert.Len(t, ref, len("payout_")+24)

	other, err := GeneratePayoutReference()
	require.NoError(t, err)
	assert.NotEqual(t, ref, other)
}
