package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cipherkeeper/internal/errs"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("record: %w", errs.ErrNotFound), http.StatusNotFound},
		{"conflict", errs.ErrConflict, http.StatusConflict},
		{"forbidden", errs.ErrForbidden, http.StatusForbidden},
		{"unauthorized", errs.ErrUnauthorized, http.StatusUnauthorized},
		{"invalid", errs.ErrInvalidInput, http.StatusUnprocessableEntity},
		{"format", errs.Format("meta", "missing key %q", "type"), http.StatusUnprocessableEntity},
		{"other", errors.New("pool closed"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var se huma.StatusError
			require.ErrorAs(t, From(tt.err), &se)
			assert.Equal(t, tt.status, se.GetStatus())
		})
	}

	assert.NoError(t, From(nil))
}
