package usecase

import (
	"context"
	"log/slog"

	"github.com/hartonodwi/authgate/internal/auth/entity"
	"github.com/hartonodwi/authgate/internal/pkg/goerror"
)

type OtpSendInput struct {
	Email string `validate:"omitempty,email"`
	Phone string `validate:"omitempty,e164"`
}

type OtpSendOutput struct {
	Channel entity.Channel
	// DevOTP carries the plaintext code when no delivery provider is
	// configured and the dev echo flag is on. Empty otherwise.
	DevOTP string
}

// OtpSend issues a fresh challenge for the identifier and dispatches the code.
//
// Re-issuing unconditionally overwrites any previous challenge, including a
// verified one. A dispatch failure leaves the stored challenge in place so the
// client can retry.
func (s *Usecase) OtpSend(ctx context.Context, in OtpSendInput) (*OtpSendOutput, error) {
	ctx, span := s.startSpan(ctx, "OtpSend")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	identifier, channel, err := resolveIdentifier(in.Email, in.Phone)
	if err != nil {
		return nil, err
	}

	out := &OtpSendOutput{Channel: channel}
	err = s.withIdentifierLock(ctx, identifier, func(ctx context.Context) error {
		code, err := s.codes.Generate()
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
			return goerror.NewServer(err)
		}

		codeHash, err := s.hmac.Hash(code)
		if err != nil {
			slog.ErrorContext(ctx, "failed to hash otp code", "error", err)
			return goerror.NewServer(err)
		}

		if err := s.repoDB.UpsertChallenge(ctx, entity.Challenge{
			Identifier: identifier,
			CodeHash:   string(codeHash),
			Status:     entity.ChallengeStatusPending,
			ExpiresAt:  s.clock.Now().Add(s.otpTTL()),
		}); err != nil {
			slog.ErrorContext(ctx, "failed to repo upsert challenge", "channel", channel.String(), "error", err)
			return goerror.NewServer(err)
		}

		if !s.dispatcher.Configured(channel) {
			if s.cfg.GetBool("modules.auth.otp_dev_echo") {
				slog.WarnContext(ctx, "no otp provider configured, echoing code to client", "channel", channel.String())
				out.DevOTP = code
				return nil
			}
			slog.ErrorContext(ctx, "no otp provider configured", "channel", channel.String())
			return goerror.NewBusiness("Failed to send OTP", goerror.CodeInternal)
		}

		var sendErr error
		switch channel {
		case entity.ChannelEmail:
			sendErr = s.dispatcher.SendEmailOTP(ctx, identifier, code)
		case entity.ChannelPhone:
			sendErr = s.dispatcher.SendSMSOTP(ctx, identifier, code)
		}
		if sendErr != nil {
			slog.ErrorContext(ctx, "failed to dispatch otp code", "channel", channel.String(), "error", sendErr)
			return goerror.NewBusiness("Failed to send OTP", goerror.CodeInternal)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
