package client

import (
	"fmt"
	"net/mail"
	"strings"

	"cipherkeeper/internal/crypto"
)

const MaxEmailLen = 254

// Validator - интерфейс для валидации данных регистрации
type Validator interface {
	ValidateEmail(email string) error
	ValidatePublicKey(publicKey string) error
}

type RegistrationValidator struct{}

// NewRegistrationValidator создает новый валидатор
func NewRegistrationValidator() *RegistrationValidator {
	return &RegistrationValidator{}
}

// ValidateEmail валидирует адрес
func (v *RegistrationValidator) ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must be at most %d characters", MaxEmailLen)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email %q is not a bare address", email)
	}
	return nil
}

// ValidatePublicKey проверяет, что ключ - 32 байта в base64url
func (v *RegistrationValidator) ValidatePublicKey(publicKey string) error {
	if _, err := crypto.ParseKey(publicKey); err != nil {
		return fmt.Errorf("public key: %w", err)
	}
	return nil
}

// IsEmail отличает адрес от идентификатора клиента.
func IsEmail(s string) bool {
	return strings.Contains(s, "@")
}
