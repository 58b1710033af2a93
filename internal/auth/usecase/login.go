package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hartonodwi/authgate/internal/pkg/goerror"
)

type LoginInput struct {
	Username string
	Password string
}

type LoginOutput struct {
	ID       int64
	Username string
	Email    string
}

// Login verifies a username/password pair.
//
// Unknown usernames and wrong passwords fail identically so the response
// never reveals which one it was. The lookup is case-insensitive; the stored
// casing is returned.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	if in.Username == "" || in.Password == "" {
		return nil, goerror.NewInvalidFormat("Username and password required")
	}

	user, err := s.repoDB.GetUserByUsername(ctx, in.Username)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "login for unknown username")
		return nil, goerror.NewBusiness("Invalid credentials", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by username", "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.bcrypt.Verify(user.Password, in.Password) {
		slog.WarnContext(ctx, "password mismatch", "user_id", user.ID)
		return nil, goerror.NewBusiness("Invalid credentials", goerror.CodeUnauthorized)
	}

	return &LoginOutput{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}
