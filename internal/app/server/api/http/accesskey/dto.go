package accesskey

import (
	"cipherkeeper/internal/app/server/api/http/apierr"
	"cipherkeeper/internal/domain/accesskey"
)

type scopeInput struct {
	apierr.ScopePath
}

type getOutput struct {
	Body accesskey.AccessKey
}

type putAccessKeyInput struct {
	apierr.ScopePath
	Body struct {
		EAK string `json:"eak" doc:"Ключ доступа, зашифрованный для читателя" minLength:"3"`
	}
}

type accessKeyStatusOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}
