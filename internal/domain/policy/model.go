package policy

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionAllow Action = "allow"
	ActionDeny  Action = "deny"
)

// Validate проверяет допустимость действия
func (a Action) Validate() error {
	switch a {
	case ActionAllow, ActionDeny:
		return nil
	}
	return fmt.Errorf("неверное действие политики: %s", a)
}

// Policy разрешает или запрещает читателю доступ к записям (writer, user, type).
// Для одной области действует последняя запись.
type Policy struct {
	WriterID  uuid.UUID `json:"writer_id"`
	UserID    uuid.UUID `json:"user_id"`
	ReaderID  uuid.UUID `json:"reader_id"`
	Type      string    `json:"type"`
	Action    Action    `json:"action"`
	UpdatedAt time.Time `json:"updated_at"`
}
