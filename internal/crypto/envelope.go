package crypto

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"

	"cipherkeeper/internal/domain/record"
	"cipherkeeper/internal/errs"
)

// Значение поля в зашифрованном виде:
//
//	b64u(wrapped_data_key).b64u(data_key_nonce).b64u(field_ciphertext).b64u(field_nonce)
const (
	envelopeSegments = 4
	segmentSep       = "."
)

// EncryptField шифрует одно значение на новом ключе данных и оборачивает
// ключ данных ключом доступа.
func EncryptField(accessKey *[KeySize]byte, plaintext string) (string, error) {
	dataKey, err := RandomKey()
	if err != nil {
		return "", err
	}
	defer Wipe(dataKey)

	dataKeyNonce, err := RandomNonce()
	if err != nil {
		return "", err
	}
	fieldNonce, err := RandomNonce()
	if err != nil {
		return "", err
	}

	fieldCiphertext := secretbox.Seal(nil, []byte(plaintext), fieldNonce, dataKey)
	wrappedDataKey := secretbox.Seal(nil, dataKey[:], dataKeyNonce, accessKey)

	return strings.Join([]string{
		EncodeBase64URL(wrappedDataKey),
		EncodeBase64URL(dataKeyNonce[:]),
		EncodeBase64URL(fieldCiphertext),
		EncodeBase64URL(fieldNonce[:]),
	}, segmentSep), nil
}

// DecryptField раскрывает значение поля. Ошибка аутентификации на любом из
// двух уровней возвращается как errs.ErrDecryption без частичных данных.
func DecryptField(accessKey *[KeySize]byte, wire string) (string, error) {
	parts := strings.Split(wire, segmentSep)
	if len(parts) != envelopeSegments {
		return "", errs.Format("field", "expected %d segments, got %d", envelopeSegments, len(parts))
	}

	wrappedDataKey, err := DecodeBase64URL(parts[0])
	if err != nil {
		return "", err
	}
	dataKeyNonce, err := decodeNonce("field", parts[1])
	if err != nil {
		return "", err
	}
	fieldCiphertext, err := DecodeBase64URL(parts[2])
	if err != nil {
		return "", err
	}
	fieldNonce, err := decodeNonce("field", parts[3])
	if err != nil {
		return "", err
	}

	rawKey, ok := secretbox.Open(nil, wrappedDataKey, dataKeyNonce, accessKey)
	if !ok || len(rawKey) != KeySize {
		return "", fmt.Errorf("%w: data key", errs.ErrDecryption)
	}
	dataKey := new([KeySize]byte)
	copy(dataKey[:], rawKey)
	defer Wipe(dataKey)

	plaintext, ok := secretbox.Open(nil, fieldCiphertext, fieldNonce, dataKey)
	if !ok {
		return "", fmt.Errorf("%w: field value", errs.ErrDecryption)
	}
	return string(plaintext), nil
}

// EncryptRecord возвращает запись, в которой каждое поле зашифровано
// независимо. Метаданные и порядок полей не меняются.
func EncryptRecord(rec record.Record, accessKey *[KeySize]byte) (record.Record, error) {
	return rec.MapData(func(name, value string) (string, error) {
		wire, err := EncryptField(accessKey, value)
		if err != nil {
			return "", fmt.Errorf("encrypt field %q: %w", name, err)
		}
		return wire, nil
	})
}

// DecryptRecord обратна EncryptRecord.
func DecryptRecord(rec record.Record, accessKey *[KeySize]byte) (record.Record, error) {
	return rec.MapData(func(name, value string) (string, error) {
		plain, err := DecryptField(accessKey, value)
		if err != nil {
			return "", fmt.Errorf("decrypt field %q: %w", name, err)
		}
		return plain, nil
	})
}
