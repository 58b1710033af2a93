package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hartonodwi/authgate/internal/pkg/goerror"
)

type OtpVerifyInput struct {
	Email string `validate:"omitempty,email"`
	Phone string `validate:"omitempty,e164"`
	OTP   string `validate:"omitempty,len=6,numeric"`
}

// OtpVerify checks a submitted code against the live challenge.
//
// A correct code marks the challenge verified but does not consume it; only a
// successful registration does. An expired challenge is deleted on sight.
func (s *Usecase) OtpVerify(ctx context.Context, in OtpVerifyInput) error {
	ctx, span := s.startSpan(ctx, "OtpVerify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	identifier, channel, err := resolveIdentifier(in.Email, in.Phone)
	if err != nil {
		return err
	}

	if in.OTP == "" {
		return goerror.NewInvalidFormat("OTP required")
	}

	return s.withIdentifierLock(ctx, identifier, func(ctx context.Context) error {
		chal, err := s.repoDB.GetChallenge(ctx, identifier)
		if errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "no challenge for identifier", "channel", channel.String())
			return goerror.NewBusiness("No OTP found. Please request a new one", goerror.CodeInvalidInput)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get challenge", "error", err)
			return goerror.NewServer(err)
		}

		if chal.Expired(s.clock.Now()) {
			if err := s.repoDB.DeleteChallenge(ctx, identifier); err != nil && !errors.Is(err, goerror.ErrNotFound) {
				slog.ErrorContext(ctx, "failed to repo delete expired challenge", "error", err)
				return goerror.NewServer(err)
			}
			return goerror.NewBusiness("OTP expired. Please request a new one", goerror.CodeInvalidInput)
		}

		if !s.hmac.Verify(chal.CodeHash, in.OTP) {
			slog.WarnContext(ctx, "otp code mismatch", "channel", channel.String())
			return goerror.NewBusiness("Invalid OTP", goerror.CodeInvalidInput)
		}

		if err := s.repoDB.MarkChallengeVerified(ctx, identifier); err != nil {
			slog.ErrorContext(ctx, "failed to repo mark challenge verified", "error", err)
			return goerror.NewServer(err)
		}

		return nil
	})
}
