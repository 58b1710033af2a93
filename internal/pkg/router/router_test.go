package router

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/hartonodwi/authgate/internal/pkg/config"
	"github.com/hartonodwi/authgate/internal/pkg/goerror"
	"github.com/hartonodwi/authgate/internal/pkg/instrument"
	"github.com/hartonodwi/authgate/internal/pkg/uid"
)

func newTestRouter(t *testing.T, configYAML string) *Router {
	t.Helper()

	if configYAML == "" {
		configYAML = "app:\n  tz: UTC\n"
	}
	cfg, err := config.NewViperFromBytes("yaml", []byte(configYAML))
	require.NoError(t, err)
	t.Cleanup(func() { cfg.Close() })

	return NewRouter(Config{
		Config:     cfg,
		UUID:       uid.NewUUID(),
		Instrument: instrument.NewNoop(),
	})
}

func do(t *testing.T, r *Router, method, path, body string) (int, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code, rec.Body.String()
}

func TestRouterWelcome(t *testing.T) {
	r := newTestRouter(t, "")

	code, body := do(t, r, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"message":"Welcome to Authgate API"}`, body)
}

func TestRouterNotFound(t *testing.T) {
	r := newTestRouter(t, "")

	code, body := do(t, r, http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"error":"endpoint not found"}`, body)
}

func TestRouterMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, "")
	r.POST("/thing", func(*Request) (any, error) { return nil, nil })

	code, body := do(t, r, http.MethodDelete, "/thing", "")

	assert.Equal(t, http.StatusMethodNotAllowed, code)
	assert.JSONEq(t, `{"error":"method not allowed"}`, body)
}

func TestRouterSuccessEncoding(t *testing.T) {
	t.Run("PayloadAsIs", func(t *testing.T) {
		r := newTestRouter(t, "")
		r.GET("/ok", func(*Request) (any, error) {
			return map[string]any{"success": true, "message": "done"}, nil
		})

		code, body := do(t, r, http.MethodGet, "/ok", "")

		assert.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{"success":true,"message":"done"}`, body)
	})

	t.Run("NilPayloadIsNoContent", func(t *testing.T) {
		r := newTestRouter(t, "")
		r.GET("/empty", func(*Request) (any, error) { return nil, nil })

		code, body := do(t, r, http.MethodGet, "/empty", "")

		assert.Equal(t, http.StatusNoContent, code)
		assert.Empty(t, body)
	})
}

func TestRouterErrorEncoding(t *testing.T) {
	t.Run("BusinessError", func(t *testing.T) {
		r := newTestRouter(t, "")
		r.GET("/err", func(*Request) (any, error) {
			return nil, goerror.NewBusiness("Invalid credentials", goerror.CodeUnauthorized)
		})

		code, body := do(t, r, http.MethodGet, "/err", "")

		assert.Equal(t, http.StatusUnauthorized, code)
		assert.JSONEq(t, `{"error":"Invalid credentials"}`, body)
	})

	t.Run("ValidationFields", func(t *testing.T) {
		r := newTestRouter(t, "")
		r.GET("/err", func(*Request) (any, error) {
			return nil, goerror.NewInvalidInput(nil, "email", "must be a valid email")
		})

		code, body := do(t, r, http.MethodGet, "/err", "")

		assert.Equal(t, http.StatusBadRequest, code)
		assert.JSONEq(t, `{"error":"Validation error","fields":{"email":"must be a valid email"}}`, body)
	})

	t.Run("PlainErrorBecomesServerError", func(t *testing.T) {
		r := newTestRouter(t, "")
		r.GET("/err", func(*Request) (any, error) {
			return nil, errors.New("boom")
		})

		code, body := do(t, r, http.MethodGet, "/err", "")

		assert.Equal(t, http.StatusInternalServerError, code)
		assert.JSONEq(t, `{"error":"Server error"}`, body)
	})

	t.Run("PanicBecomesServerError", func(t *testing.T) {
		r := newTestRouter(t, "")
		r.GET("/panic", func(*Request) (any, error) {
			panic("boom")
		})

		code, body := do(t, r, http.MethodGet, "/panic", "")

		assert.Equal(t, http.StatusInternalServerError, code)
		assert.JSONEq(t, `{"error":"Server error"}`, body)
	})
}

func TestRouterMaintenance(t *testing.T) {
	r := newTestRouter(t, `
app:
  maintenance:
    endpoints: "/register"
`)
	r.POST("/register", func(*Request) (any, error) {
		return map[string]bool{"success": true}, nil
	})

	code, body := do(t, r, http.MethodPost, "/register", `{}`)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.JSONEq(t, `{"error":"service is under maintenance"}`, body)
}
