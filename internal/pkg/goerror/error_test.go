package goerror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "InvalidFormat", err: NewInvalidFormat("Username and password required"), want: http.StatusBadRequest},
		{name: "InvalidInput", err: NewBusiness("Invalid OTP", CodeInvalidInput), want: http.StatusBadRequest},
		{name: "Conflict", err: NewBusiness("Username already exists", CodeConflict), want: http.StatusBadRequest},
		{name: "Unauthorized", err: NewBusiness("Invalid credentials", CodeUnauthorized), want: http.StatusUnauthorized},
		{name: "Internal", err: NewBusiness("Failed to send OTP", CodeInternal), want: http.StatusInternalServerError},
		{name: "Server", err: NewServer(errors.New("db down")), want: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gerr *Error
			require.ErrorAs(t, tc.err, &gerr)
			assert.Equal(t, tc.want, gerr.StatusCode())
		})
	}
}

func TestNewServerMessage(t *testing.T) {
	var gerr *Error
	require.ErrorAs(t, NewServer(errors.New("pool exhausted")), &gerr)

	assert.Equal(t, "Server error", gerr.Msg())
	assert.EqualError(t, gerr, "pool exhausted")
}

func TestNewInvalidFormat(t *testing.T) {
	var gerr *Error

	require.ErrorAs(t, NewInvalidFormat(), &gerr)
	assert.Equal(t, "Invalid request body", gerr.Msg())

	require.ErrorAs(t, NewInvalidFormat("OTP required"), &gerr)
	assert.Equal(t, "OTP required", gerr.Msg())
	assert.Equal(t, CodeInvalidFormat, gerr.Code())
}

func TestNewInvalidInputFields(t *testing.T) {
	var gerr *Error
	require.ErrorAs(t, NewInvalidInput(nil, "email", "must be a valid email"), &gerr)

	assert.Equal(t, "Validation error", gerr.Msg())
	assert.Equal(t, map[string]string{"email": "must be a valid email"}, gerr.Fields())
}

func TestUnwrap(t *testing.T) {
	underlying := errors.New("no rows")
	err := NewServer(underlying)

	assert.ErrorIs(t, err, underlying)
}
