package client

import (
	"time"

	"github.com/google/uuid"
)

// Client - зарегистрированный участник обмена. Сервер хранит только
// открытый ключ и хэш API-секрета.
type Client struct {
	ID         uuid.UUID
	Email      string
	PublicKey  string // base64url, Curve25519
	APIKeyID   string
	SecretHash string // bcrypt
	CreatedAt  time.Time
}

// Info - публичные сведения о клиенте
type Info struct {
	ClientID  uuid.UUID `json:"client_id"`
	Email     string    `json:"email"`
	PublicKey string    `json:"public_key"`
}

// Credentials выдаются один раз при регистрации
type Credentials struct {
	ClientID  uuid.UUID `json:"client_id"`
	APIKeyID  string    `json:"api_key_id"`
	APISecret string    `json:"api_secret"`
}

func (c Client) Info() Info {
	return Info{ClientID: c.ID, Email: c.Email, PublicKey: c.PublicKey}
}
