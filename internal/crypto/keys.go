package crypto

import (
	"crypto/rand"
	"fmt"
	"strings"

	"golang.org/x/crypto/nacl/box"

	"cipherkeeper/internal/errs"
)

// Обернутый ключ доступа (EAK): b64u(ciphertext).b64u(nonce)
const eakSegments = 2

// KeyPair - ключевая пара клиента (Curve25519).
type KeyPair struct {
	Public  *[KeySize]byte
	Private *[KeySize]byte
}

// GenerateKeyPair создает новую ключевую пару
func GenerateKeyPair() (KeyPair, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate key pair: %w", err)
	}
	return KeyPair{Public: pub, Private: priv}, nil
}

// ParseKey декодирует 32-байтный ключ из base64url.
func ParseKey(s string) (*[KeySize]byte, error) {
	raw, err := DecodeBase64URL(s)
	if err != nil {
		return nil, err
	}
	if len(raw) != KeySize {
		return nil, errs.Format("key", "must be %d bytes, got %d", KeySize, len(raw))
	}
	key := new([KeySize]byte)
	copy(key[:], raw)
	return key, nil
}

// EncodeKey - обратная операция к ParseKey.
func EncodeKey(key *[KeySize]byte) string {
	return EncodeBase64URL(key[:])
}

// WrapKey шифрует ключ доступа для читателя: открытый ключ читателя и
// закрытый ключ того, кто выдает доступ.
func WrapKey(accessKey, readerPublic, authorizerPrivate *[KeySize]byte) (string, error) {
	nonce, err := RandomNonce()
	if err != nil {
		return "", err
	}
	sealed := box.Seal(nil, accessKey[:], nonce, readerPublic, authorizerPrivate)
	return EncodeBase64URL(sealed) + segmentSep + EncodeBase64URL(nonce[:]), nil
}

// UnwrapKey раскрывает ключ доступа закрытым ключом читателя.
func UnwrapKey(eak string, authorizerPublic, readerPrivate *[KeySize]byte) (*[KeySize]byte, error) {
	sealed, nonce, err := splitWrappedKey(eak)
	if err != nil {
		return nil, err
	}

	raw, ok := box.Open(nil, sealed, nonce, authorizerPublic, readerPrivate)
	if !ok || len(raw) != KeySize {
		return nil, fmt.Errorf("%w: access key", errs.ErrDecryption)
	}
	key := new([KeySize]byte)
	copy(key[:], raw)
	return key, nil
}

// ValidateWrappedKey проверяет только формат, без расшифровки.
func ValidateWrappedKey(eak string) error {
	_, _, err := splitWrappedKey(eak)
	return err
}

func splitWrappedKey(eak string) ([]byte, *[NonceSize]byte, error) {
	parts := strings.Split(eak, segmentSep)
	if len(parts) != eakSegments {
		return nil, nil, errs.Format("access key", "expected %d segments, got %d", eakSegments, len(parts))
	}
	sealed, err := DecodeBase64URL(parts[0])
	if err != nil {
		return nil, nil, err
	}
	nonce, err := decodeNonce("access key", parts[1])
	if err != nil {
		return nil, nil, err
	}
	return sealed, nonce, nil
}
