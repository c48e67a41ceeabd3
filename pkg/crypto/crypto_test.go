package crypto_test

import (
	"bytes"
	"testing"

	"github.com/nais/sitedeploy/pkg/crypto"
	"github.com/stretchr/testify/assert"
)

var key = bytes.Repeat([]byte{0x42}, crypto.KeyLength)

func TestEncryptDecrypt(t *testing.T) {
	sealed, err := crypto.Encrypt([]byte("nfp_secret"), key)
	assert.NoError(t, err)
	assert.NotContains(t, string(sealed), "nfp_secret")

	opened, err := crypto.Decrypt(sealed, key)
	assert.NoError(t, err)
	assert.Equal(t, "nfp_secret", string(opened))
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	a, err := crypto.Encrypt([]byte("same"), key)
	assert.NoError(t, err)
	b, err := crypto.Encrypt([]byte("same"), key)
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptErrors(t *testing.T) {
	_, err := crypto.Decrypt([]byte("short"), key)
	assert.ErrorIs(t, err, crypto.ErrCiphertextShort)

	_, err = crypto.Encrypt([]byte("data"), []byte("too short"))
	assert.ErrorIs(t, err, crypto.ErrKeyLength)

	sealed, err := crypto.Encrypt([]byte("data"), key)
	assert.NoError(t, err)
	otherKey := bytes.Repeat([]byte{0x24}, crypto.KeyLength)
	_, err = crypto.Decrypt(sealed, otherKey)
	assert.Error(t, err)
}
