// Package errs содержит общую таксономию ошибок клиента и сервера.
package errs

import (
	"errors"
	"fmt"
)

// Ошибки, которые возвращает хранилище.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("version conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrTransport    = errors.New("transport failure")
)

// Локальные ошибки формата и криптографии.
var (
	ErrFormat     = errors.New("malformed data")
	ErrDecryption = errors.New("decryption failed")
)

// Format оборачивает ErrFormat с именем структуры, в которой найдена ошибка.
func Format(structure, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrFormat, structure, fmt.Sprintf(format, args...))
}
