package inbound

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/hartonodwi/authgate/internal/auth/entity"
	"github.com/hartonodwi/authgate/internal/auth/usecase"
	"github.com/hartonodwi/authgate/internal/pkg/router"
	"github.com/samber/lo"
)

// HTTPEndpoint exposes HTTP handlers for the registration and OTP workflows.
type HTTPEndpoint struct {
	uc uc
}

// Register creates a credential record for a previously verified identifier.
// @Summary Register user
// @Description Creates a username/password record. The email or phone must carry a verified OTP challenge.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration payload"
// @Success 200 {object} RegisterResponse "Registration result"
// @Failure 400 {object} router.errorResponse "Missing fields, unverified identifier, or duplicate username"
// @Failure 500 {object} router.errorResponse "Server error"
// @Router /register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{
		Success:  true,
		Message:  "Registration successful",
		Username: resp.Username,
	}, nil
}

// Login authenticates a username/password pair.
// @Summary Authenticate user
// @Description Validates credentials and returns the public user view.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} LoginResponse "Authentication result"
// @Failure 400 {object} router.errorResponse "Missing fields"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 500 {object} router.errorResponse "Server error"
// @Router /login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		Success: true,
		Message: "Login successful",
		User: UserView{
			ID:       strconv.FormatInt(resp.ID, 10),
			Username: resp.Username,
			Email:    resp.Email,
		},
	}, nil
}

// OtpSend issues a verification code to an email address or phone number.
// @Summary Send OTP
// @Description Issues a fresh 6-digit code for the identifier, overwriting any previous one.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body OtpSendRequest true "OTP request payload"
// @Success 200 {object} OtpSendResponse "Dispatch result"
// @Failure 400 {object} router.errorResponse "Email or phone required"
// @Failure 500 {object} router.errorResponse "Failed to send OTP"
// @Router /send-otp [post]
func (h *HTTPEndpoint) OtpSend(r *router.Request) (any, error) {
	var req OtpSendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.OtpSend(r.Context(), usecase.OtpSendInput{
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return nil, err
	}

	if resp.DevOTP != "" {
		return OtpSendResponse{Success: true, Message: "OTP sent", DevOTP: resp.DevOTP}, nil
	}

	return OtpSendResponse{
		Success: true,
		Message: lo.Ternary(resp.Channel == entity.ChannelEmail,
			"OTP sent to your email", "OTP sent to your phone"),
	}, nil
}

// OtpVerify checks a submitted code.
// @Summary Verify OTP
// @Description Marks the identifier's challenge verified when the code matches.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body OtpVerifyRequest true "OTP verification payload"
// @Success 200 {object} OtpVerifyResponse "Verification result"
// @Failure 400 {object} router.errorResponse "Missing, expired, or invalid OTP"
// @Failure 500 {object} router.errorResponse "Server error"
// @Router /verify-otp [post]
func (h *HTTPEndpoint) OtpVerify(r *router.Request) (any, error) {
	var req OtpVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.OtpVerify(r.Context(), usecase.OtpVerifyInput{
		Email: req.Email,
		Phone: req.Phone,
		OTP:   req.OTP,
	}); err != nil {
		return nil, err
	}

	return OtpVerifyResponse{Success: true, Message: "OTP verified successfully"}, nil
}

// Dashboard serves the static dashboard page. Session enforcement is the
// client's responsibility.
func (h *HTTPEndpoint) Dashboard(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join("public", "dashboard.html"))
}

// Health reports liveness.
func (h *HTTPEndpoint) Health(_ *router.Request) (any, error) {
	return HealthResponse{Status: "ok"}, nil
}
