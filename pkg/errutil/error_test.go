package errutil

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaseErrorRoundTrip(t *testing.T) {
	cause := errors.New("row not found")
	err := NotFound("task not found", WithErr(cause))

	var base BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, StatusNotFound, base.Code)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "task not found")
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[CoreStatus]int{
		StatusBadRequest:       http.StatusBadRequest,
		StatusNotFound:         http.StatusNotFound,
		StatusConflict:         http.StatusConflict,
		StatusValidationFailed: http.StatusBadRequest,
		StatusRender:           http.StatusBadRequest,
		StatusGeneration:       http.StatusBadGateway,
		StatusNotCancellable:   http.StatusConflict,
		StatusInternal:         http.StatusInternalServerError,
	}

	for code, want := range cases {
		require.Equal(t, want, code.HTTPStatus(), "status %s", code)
	}
}
