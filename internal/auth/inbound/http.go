package inbound

import (
	"context"
	"net/http"

	"github.com/hartonodwi/authgate/internal/auth/usecase"
	"github.com/hartonodwi/authgate/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)

	OtpSend(ctx context.Context, in usecase.OtpSendInput) (*usecase.OtpSendOutput, error)
	OtpVerify(ctx context.Context, in usecase.OtpVerifyInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Registration & Login
	r.POST("/register", end.Register)
	r.POST("/login", end.Login)

	// OTP verification
	r.POST("/send-otp", end.OtpSend)
	r.POST("/verify-otp", end.OtpVerify)

	// Pages & liveness
	r.GETRaw("/dashboard", http.HandlerFunc(end.Dashboard))
	r.GET("/health", end.Health)
}
