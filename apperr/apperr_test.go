package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("loading transaction: %w", NotFound("transaction not found"))

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindAuthorization, KindOf(Forbidden("access denied")))
}

func TestInternalHidesCause(t *testing.T) {
	err := Internal(errors.New("dial tcp 127.0.0.1:3306: connection refused"))

	assert.Equal(t, "internal server error", Message(err))
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, "internal server error", Message(errors.New("raw")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:     http.StatusBadRequest,
		KindAuthentication: http.StatusUnauthorized,
		KindAuthorization:  http.StatusForbidden,
		KindNotFound:       http.StatusNotFound,
		KindConflict:       http.StatusConflict,
		KindInternal:       http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind))
	}
}
