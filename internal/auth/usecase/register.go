package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hartonodwi/authgate/internal/auth/entity"
	"github.com/hartonodwi/authgate/internal/pkg/goerror"
)

type RegisterInput struct {
	Username string `validate:"required,max=50"`
	Email    string `validate:"omitempty,email"`
	Phone    string `validate:"omitempty,e164"`
	Password string `validate:"omitempty,password"`
}

type RegisterOutput struct {
	Username string
}

// Register creates a credential record.
//
// With OTP gating on (the default), the identifier must carry a verified,
// unexpired challenge. Consuming the challenge and inserting the record happen
// in one transaction, so a duplicate username rolls the consume back and the
// verified challenge survives for a retry.
func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	if in.Username == "" || in.Password == "" {
		return nil, goerror.NewInvalidFormat("Username and password required")
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if !s.cfg.GetBool("modules.auth.require_otp") {
		return s.registerDirect(ctx, in)
	}

	identifier, channel, err := resolveIdentifier(in.Email, in.Phone)
	if err != nil {
		return nil, err
	}

	err = s.withIdentifierLock(ctx, identifier, func(ctx context.Context) error {
		chal, err := s.repoDB.GetChallenge(ctx, identifier)
		if errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "registration without challenge", "channel", channel.String())
			return goerror.NewBusiness("Please verify your email/phone first", goerror.CodeInvalidInput)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get challenge", "error", err)
			return goerror.NewServer(err)
		}

		// A verified challenge is revoked at its original expiry.
		if chal.Status != entity.ChallengeStatusVerified || chal.Expired(s.clock.Now()) {
			slog.WarnContext(ctx, "registration with unusable challenge",
				"channel", channel.String(), "status", chal.Status.String())
			return goerror.NewBusiness("Please verify your email/phone first", goerror.CodeInvalidInput)
		}

		return s.createUser(ctx, in, identifier)
	})
	if err != nil {
		return nil, err
	}

	return &RegisterOutput{Username: in.Username}, nil
}

func (s *Usecase) registerDirect(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	hashed, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	user := entity.NewUser{
		ID:       s.uid.Generate(),
		Username: in.Username,
		Email:    in.Email,
		Phone:    in.Phone,
	}
	if err := s.repoDB.NewUser(ctx, user, string(hashed)); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			return nil, goerror.NewBusiness("Username already exists", goerror.CodeConflict)
		}
		slog.ErrorContext(ctx, "failed to repo create user", "error", err)
		return nil, goerror.NewServer(err)
	}

	s.publishRegistered(ctx, user, in.Email)

	return &RegisterOutput{Username: in.Username}, nil
}

func (s *Usecase) createUser(ctx context.Context, in RegisterInput, identifier string) error {
	hashed, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return goerror.NewServer(err)
	}

	user := entity.NewUser{
		ID:       s.uid.Generate(),
		Username: in.Username,
		Email:    in.Email,
		Phone:    in.Phone,
	}
	if err := s.repoDB.NewRegistration(ctx, user, string(hashed), identifier); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			slog.WarnContext(ctx, "username already taken", "username", in.Username)
			return goerror.NewBusiness("Username already exists", goerror.CodeConflict)
		}
		slog.ErrorContext(ctx, "failed to repo create registration", "error", err)
		return goerror.NewServer(err)
	}

	s.publishRegistered(ctx, user, identifier)

	return nil
}

// publishRegistered is best effort; a broker outage never fails registration.
func (s *Usecase) publishRegistered(ctx context.Context, user entity.NewUser, identifier string) {
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishUserRegistered(ctx, UserRegisteredEvent{
			UserID:     user.ID,
			Username:   user.Username,
			Identifier: identifier,
		}); err != nil {
			slog.WarnContext(ctx, "failed to publish user registered event", "user_id", user.ID, "error", err)
		}
		return nil
	})
}
