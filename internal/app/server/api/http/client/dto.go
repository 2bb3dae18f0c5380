package client

import (
	"time"

	"cipherkeeper/internal/domain/client"
)

type registerInput struct {
	Body struct {
		Email     string `json:"email" doc:"Адрес клиента" minLength:"3"`
		PublicKey string `json:"public_key" doc:"Открытый ключ Curve25519, base64url" minLength:"43" maxLength:"43"`
	}
}

type registerOutput struct {
	Body client.Credentials
}

type infoInput struct {
	ID string `path:"id" doc:"Идентификатор клиента или email"`
}

type infoOutput struct {
	Body client.Info
}

type tokenInput struct {
	Body struct {
		APIKeyID  string `json:"api_key_id" minLength:"1"`
		APISecret string `json:"api_secret" minLength:"1"`
	}
}

type tokenOutput struct {
	Body struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
}
