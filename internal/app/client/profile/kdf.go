package profile

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"

	"cipherkeeper/internal/crypto"
)

// KDF - алгоритм получения ключа профиля из пароля
type KDF string

const (
	KDFArgon2id KDF = "argon2id"
	KDFPBKDF2   KDF = "pbkdf2-sha256"
)

const (
	saltLength = 16

	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4

	pbkdf2Iterations = 600000
)

// kdfParams хранятся рядом с профилем, чтобы ключ можно было получить
// заново после смены значений по умолчанию.
type kdfParams struct {
	Algorithm  KDF    `json:"algorithm"`
	Salt       string `json:"salt"`
	Time       uint32 `json:"time,omitempty"`
	Memory     uint32 `json:"memory,omitempty"`
	Threads    uint8  `json:"threads,omitempty"`
	Iterations int    `json:"iterations,omitempty"`
}

func newParams(kdf KDF) (kdfParams, error) {
	salt, err := crypto.GenerateRandomBytes(saltLength)
	if err != nil {
		return kdfParams{}, err
	}

	p := kdfParams{Algorithm: kdf, Salt: crypto.EncodeBase64URL(salt)}
	switch kdf {
	case KDFArgon2id:
		p.Time, p.Memory, p.Threads = argon2Time, argon2Memory, argon2Threads
	case KDFPBKDF2:
		p.Iterations = pbkdf2Iterations
	default:
		return kdfParams{}, fmt.Errorf("unknown kdf %q", kdf)
	}
	return p, nil
}

func parseParams(raw string) (kdfParams, error) {
	var p kdfParams
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return kdfParams{}, fmt.Errorf("decode kdf params: %w", err)
	}
	return p, nil
}

func (p kdfParams) String() string {
	data, _ := json.Marshal(p)
	return string(data)
}

// derive получает ключ профиля. Вызывающий стирает ключ после использования.
func (p kdfParams) derive(passphrase []byte) (*[crypto.KeySize]byte, error) {
	salt, err := crypto.DecodeBase64URL(p.Salt)
	if err != nil {
		return nil, fmt.Errorf("kdf salt: %w", err)
	}

	var raw []byte
	switch p.Algorithm {
	case KDFArgon2id:
		raw = argon2.IDKey(passphrase, salt, p.Time, p.Memory, p.Threads, crypto.KeySize)
	case KDFPBKDF2:
		raw = pbkdf2.Key(passphrase, salt, p.Iterations, crypto.KeySize, sha256.New)
	default:
		return nil, fmt.Errorf("unknown kdf %q", p.Algorithm)
	}

	key := new([crypto.KeySize]byte)
	copy(key[:], raw)
	clear(raw)
	return key, nil
}
