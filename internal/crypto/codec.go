// Package crypto реализует конвертное шифрование полей записей
// и обмен ключами доступа между клиентами.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"cipherkeeper/internal/errs"
)

const (
	// KeySize и NonceSize заданы nacl/secretbox и nacl/box.
	KeySize   = 32
	NonceSize = 24
)

var rawURL = base64.RawURLEncoding.Strict()

// EncodeBase64URL кодирует данные в base64url без выравнивания.
func EncodeBase64URL(data []byte) string {
	return rawURL.EncodeToString(data)
}

// DecodeBase64URL декодирует base64url строго: лишние биты в последнем
// символе и переводы строк считаются ошибкой формата. Выравнивание "="
// допускается только полное.
func DecodeBase64URL(s string) ([]byte, error) {
	if strings.ContainsAny(s, "\r\n") {
		return nil, errs.Format("base64url", "line break in input")
	}

	trimmed := strings.TrimRight(s, "=")
	if pad := len(s) - len(trimmed); pad > 0 && (pad > 2 || len(s)%4 != 0) {
		return nil, errs.Format("base64url", "invalid padding")
	}

	data, err := rawURL.DecodeString(trimmed)
	if err != nil {
		return nil, errs.Format("base64url", "%v", err)
	}
	return data, nil
}

// GenerateRandomBytes генерирует криптографически безопасные случайные байты
func GenerateRandomBytes(size int) ([]byte, error) {
	bytes := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return bytes, nil
}

// RandomKey возвращает новый симметричный ключ.
func RandomKey() (*[KeySize]byte, error) {
	key := new([KeySize]byte)
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// RandomNonce возвращает новый nonce.
func RandomNonce() (*[NonceSize]byte, error) {
	nonce := new([NonceSize]byte)
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return nonce, nil
}

// Wipe затирает ключ в памяти
func Wipe(key *[KeySize]byte) {
	if key == nil {
		return
	}
	for i := range key {
		key[i] = 0
	}
}

func decodeNonce(structure, s string) (*[NonceSize]byte, error) {
	raw, err := DecodeBase64URL(s)
	if err != nil {
		return nil, err
	}
	if len(raw) != NonceSize {
		return nil, errs.Format(structure, "nonce must be %d bytes, got %d", NonceSize, len(raw))
	}
	nonce := new([NonceSize]byte)
	copy(nonce[:], raw)
	return nonce, nil
}
