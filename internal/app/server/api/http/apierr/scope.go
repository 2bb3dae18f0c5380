package apierr

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
)

// ScopePath - параметры пути /{writer}/{user}/{reader}/{type}
type ScopePath struct {
	Writer string `path:"writer" format:"uuid" doc:"Автор записей"`
	User   string `path:"user" format:"uuid" doc:"Субъект записей"`
	Reader string `path:"reader" format:"uuid" doc:"Читатель"`
	Type   string `path:"type" doc:"Тип записей"`
}

// IDs разбирает идентификаторы пути
func (p ScopePath) IDs() (writer, user, reader uuid.UUID, err error) {
	if writer, err = uuid.Parse(p.Writer); err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, huma.Error422UnprocessableEntity("invalid writer id")
	}
	if user, err = uuid.Parse(p.User); err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, huma.Error422UnprocessableEntity("invalid user id")
	}
	if reader, err = uuid.Parse(p.Reader); err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, huma.Error422UnprocessableEntity("invalid reader id")
	}
	return writer, user, reader, nil
}
