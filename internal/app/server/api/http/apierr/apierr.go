// Package apierr переводит ошибки доменного слоя в ответы huma.
package apierr

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"cipherkeeper/internal/errs"
)

// From возвращает huma-ошибку с кодом, соответствующим sentinel-ошибке.
// Внутренние ошибки наружу не раскрываются.
func From(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errs.ErrNotFound):
		return huma.Error404NotFound("not found")
	case errors.Is(err, errs.ErrConflict):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, errs.ErrForbidden):
		return huma.Error403Forbidden("forbidden")
	case errors.Is(err, errs.ErrUnauthorized):
		return huma.Error401Unauthorized("unauthorized")
	case errors.Is(err, errs.ErrInvalidInput), errors.Is(err, errs.ErrFormat):
		return huma.Error422UnprocessableEntity(err.Error())
	}
	return huma.Error500InternalServerError("internal error")
}
