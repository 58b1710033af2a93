package inbound

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/hartonodwi/authgate/internal/auth/entity"
	"github.com/hartonodwi/authgate/internal/auth/usecase"
	"github.com/hartonodwi/authgate/internal/pkg/config"
	"github.com/hartonodwi/authgate/internal/pkg/goerror"
	"github.com/hartonodwi/authgate/internal/pkg/instrument"
	"github.com/hartonodwi/authgate/internal/pkg/router"
	"github.com/hartonodwi/authgate/internal/pkg/uid"
)

type fakeUC struct {
	registerOut *usecase.RegisterOutput
	registerErr error
	loginOut    *usecase.LoginOutput
	loginErr    error
	sendOut     *usecase.OtpSendOutput
	sendErr     error
	verifyErr   error
}

func (f *fakeUC) Register(context.Context, usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	return f.registerOut, f.registerErr
}

func (f *fakeUC) Login(context.Context, usecase.LoginInput) (*usecase.LoginOutput, error) {
	return f.loginOut, f.loginErr
}

func (f *fakeUC) OtpSend(context.Context, usecase.OtpSendInput) (*usecase.OtpSendOutput, error) {
	return f.sendOut, f.sendErr
}

func (f *fakeUC) OtpVerify(context.Context, usecase.OtpVerifyInput) error {
	return f.verifyErr
}

func newTestServer(t *testing.T, uc *fakeUC) *httptest.Server {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  tz: UTC\n"))
	require.NoError(t, err)
	t.Cleanup(func() { cfg.Close() })

	r := router.NewRouter(router.Config{
		Config:     cfg,
		UUID:       uid.NewUUID(),
		Instrument: instrument.NewNoop(),
	})
	RegisterHTTPEndpoint(r, uc)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path, body string) (int, string) {
	t.Helper()

	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestHTTPRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := newTestServer(t, &fakeUC{registerOut: &usecase.RegisterOutput{Username: "alice"}})

		code, body := postJSON(t, srv, "/register",
			`{"username":"alice","email":"alice@example.com","password":"secret123"}`)

		assert.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{"success":true,"message":"Registration successful","username":"alice"}`, body)
	})

	t.Run("UnverifiedIdentifier", func(t *testing.T) {
		srv := newTestServer(t, &fakeUC{
			registerErr: goerror.NewBusiness("Please verify your email/phone first", goerror.CodeInvalidInput),
		})

		code, body := postJSON(t, srv, "/register",
			`{"username":"alice","email":"alice@example.com","password":"secret123"}`)

		assert.Equal(t, http.StatusBadRequest, code)
		assert.JSONEq(t, `{"error":"Please verify your email/phone first"}`, body)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		srv := newTestServer(t, &fakeUC{
			registerErr: goerror.NewBusiness("Username already exists", goerror.CodeConflict),
		})

		code, body := postJSON(t, srv, "/register",
			`{"username":"alice","email":"alice@example.com","password":"secret123"}`)

		assert.Equal(t, http.StatusBadRequest, code)
		assert.JSONEq(t, `{"error":"Username already exists"}`, body)
	})

	t.Run("UnknownFieldsIgnored", func(t *testing.T) {
		srv := newTestServer(t, &fakeUC{registerOut: &usecase.RegisterOutput{Username: "alice"}})

		code, body := postJSON(t, srv, "/register",
			`{"username":"alice","email":"alice@example.com","password":"secret123","remember_me":true}`)

		assert.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{"success":true,"message":"Registration successful","username":"alice"}`, body)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		srv := newTestServer(t, &fakeUC{})

		code, _ := postJSON(t, srv, "/register", `{"username":`)

		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestHTTPLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := newTestServer(t, &fakeUC{
			loginOut: &usecase.LoginOutput{ID: 42, Username: "alice", Email: "alice@example.com"},
		})

		code, body := postJSON(t, srv, "/login", `{"username":"alice","password":"secret123"}`)

		assert.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{
			"success": true,
			"message": "Login successful",
			"user": {"id":"42","username":"alice","email":"alice@example.com"}
		}`, body)
	})

	t.Run("InvalidCredentials", func(t *testing.T) {
		srv := newTestServer(t, &fakeUC{
			loginErr: goerror.NewBusiness("Invalid credentials", goerror.CodeUnauthorized),
		})

		code, body := postJSON(t, srv, "/login", `{"username":"alice","password":"wrong"}`)

		assert.Equal(t, http.StatusUnauthorized, code)
		assert.JSONEq(t, `{"error":"Invalid credentials"}`, body)
	})

	t.Run("MissingFields", func(t *testing.T) {
		srv := newTestServer(t, &fakeUC{
			loginErr: goerror.NewInvalidFormat("Username and password required"),
		})

		code, body := postJSON(t, srv, "/login", `{"username":"alice"}`)

		assert.Equal(t, http.StatusBadRequest, code)
		assert.JSONEq(t, `{"error":"Username and password required"}`, body)
	})
}

func TestHTTPOtpSend(t *testing.T) {
	t.Run("EmailChannel", func(t *testing.T) {
		srv := newTestServer(t, &fakeUC{
			sendOut: &usecase.OtpSendOutput{Channel: entity.ChannelEmail},
		})

		code, body := postJSON(t, srv, "/send-otp", `{"email":"alice@example.com"}`)

		assert.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{"success":true,"message":"OTP sent to your email"}`, body)
	})

	t.Run("PhoneChannel", func(t *testing.T) {
		srv := newTestServer(t, &fakeUC{
			sendOut: &usecase.OtpSendOutput{Channel: entity.ChannelPhone},
		})

		code, body := postJSON(t, srv, "/send-otp", `{"phone":"+15551234567"}`)

		assert.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{"success":true,"message":"OTP sent to your phone"}`, body)
	})

	t.Run("DevEcho", func(t *testing.T) {
		srv := newTestServer(t, &fakeUC{
			sendOut: &usecase.OtpSendOutput{Channel: entity.ChannelEmail, DevOTP: "123456"},
		})

		code, body := postJSON(t, srv, "/send-otp", `{"email":"alice@example.com"}`)

		assert.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{"success":true,"message":"OTP sent","devOTP":"123456"}`, body)
	})

	t.Run("DevOTPOmittedWhenEmpty", func(t *testing.T) {
		srv := newTestServer(t, &fakeUC{
			sendOut: &usecase.OtpSendOutput{Channel: entity.ChannelEmail},
		})

		_, body := postJSON(t, srv, "/send-otp", `{"email":"alice@example.com"}`)

		assert.NotContains(t, body, "devOTP")
	})

	t.Run("MissingIdentifier", func(t *testing.T) {
		srv := newTestServer(t, &fakeUC{
			sendErr: goerror.NewInvalidFormat("Email or phone required"),
		})

		code, body := postJSON(t, srv, "/send-otp", `{}`)

		assert.Equal(t, http.StatusBadRequest, code)
		assert.JSONEq(t, `{"error":"Email or phone required"}`, body)
	})

	t.Run("DispatchFailure", func(t *testing.T) {
		srv := newTestServer(t, &fakeUC{
			sendErr: goerror.NewBusiness("Failed to send OTP", goerror.CodeInternal),
		})

		code, body := postJSON(t, srv, "/send-otp", `{"email":"alice@example.com"}`)

		assert.Equal(t, http.StatusInternalServerError, code)
		assert.JSONEq(t, `{"error":"Failed to send OTP"}`, body)
	})
}

func TestHTTPOtpVerify(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := newTestServer(t, &fakeUC{})

		code, body := postJSON(t, srv, "/verify-otp", `{"email":"alice@example.com","otp":"123456"}`)

		assert.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{"success":true,"message":"OTP verified successfully"}`, body)
	})

	t.Run("Expired", func(t *testing.T) {
		srv := newTestServer(t, &fakeUC{
			verifyErr: goerror.NewBusiness("OTP expired. Please request a new one", goerror.CodeInvalidInput),
		})

		code, body := postJSON(t, srv, "/verify-otp", `{"email":"alice@example.com","otp":"123456"}`)

		assert.Equal(t, http.StatusBadRequest, code)
		assert.JSONEq(t, `{"error":"OTP expired. Please request a new one"}`, body)
	})

	t.Run("InvalidCode", func(t *testing.T) {
		srv := newTestServer(t, &fakeUC{
			verifyErr: goerror.NewBusiness("Invalid OTP", goerror.CodeInvalidInput),
		})

		code, body := postJSON(t, srv, "/verify-otp", `{"email":"alice@example.com","otp":"000000"}`)

		assert.Equal(t, http.StatusBadRequest, code)
		assert.JSONEq(t, `{"error":"Invalid OTP"}`, body)
	})
}

func TestHTTPHealth(t *testing.T) {
	srv := newTestServer(t, &fakeUC{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))
}
