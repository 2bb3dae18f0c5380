package crypto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cipherkeeper/internal/errs"
)

func TestWrapUnwrapKey(t *testing.T) {
	owner, err := GenerateKeyPair()
	require.NoError(t, err)
	reader, err := GenerateKeyPair()
	require.NoError(t, err)
	accessKey, err := RandomKey()
	require.NoError(t, err)

	eak, err := WrapKey(accessKey, reader.Public, owner.Private)
	require.NoError(t, err)
	require.NoError(t, ValidateWrappedKey(eak))

	got, err := UnwrapKey(eak, owner.Public, reader.Private)
	require.NoError(t, err)
	assert.Equal(t, *accessKey, *got)

	// самому себе
	selfEAK, err := WrapKey(accessKey, owner.Public, owner.Private)
	require.NoError(t, err)
	got, err = UnwrapKey(selfEAK, owner.Public, owner.Private)
	require.NoError(t, err)
	assert.Equal(t, *accessKey, *got)
}

func TestUnwrapKey_WrongReader(t *testing.T) {
	owner, err := GenerateKeyPair()
	require.NoError(t, err)
	reader, err := GenerateKeyPair()
	require.NoError(t, err)
	stranger, err := GenerateKeyPair()
	require.NoError(t, err)
	accessKey, err := RandomKey()
	require.NoError(t, err)

	eak, err := WrapKey(accessKey, reader.Public, owner.Private)
	require.NoError(t, err)

	_, err = UnwrapKey(eak, owner.Public, stranger.Private)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrDecryption))
}

func TestValidateWrappedKey(t *testing.T) {
	tests := []struct {
		name string
		eak  string
	}{
		{"no separator", "abcd"},
		{"three segments", "abcd.abcd.abcd"},
		{"short nonce", "abcd.abcd"},
		{"bad base64", "a.abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWrappedKey(tt.eak)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrFormat))
		})
	}
}

func TestParseKey(t *testing.T) {
	pair, err := GenerateKeyPair()
	require.NoError(t, err)

	parsed, err := ParseKey(EncodeKey(pair.Public))
	require.NoError(t, err)
	assert.Equal(t, *pair.Public, *parsed)

	_, err = ParseKey(EncodeBase64URL([]byte("short")))
	assert.True(t, errors.Is(err, errs.ErrFormat))
}
