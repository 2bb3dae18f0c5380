package accesskey

import "github.com/google/uuid"

// Scope - область ключа доступа для конкретного читателя
type Scope struct {
	WriterID uuid.UUID `json:"writer_id"`
	UserID   uuid.UUID `json:"user_id"`
	ReaderID uuid.UUID `json:"reader_id"`
	Type     string    `json:"type"`
}

// AccessKey - ключ доступа, зашифрованный для читателя (EAK).
// Сервер не может его раскрыть.
type AccessKey struct {
	Scope
	EAK                 string    `json:"eak"`
	AuthorizerID        uuid.UUID `json:"authorizer_id"`
	AuthorizerPublicKey string    `json:"authorizer_public_key"`
}
