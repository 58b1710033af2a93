package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hartonodwi/authgate/internal/auth/entity"
	"github.com/hartonodwi/authgate/internal/pkg/clock"
	"github.com/hartonodwi/authgate/internal/pkg/config"
	"github.com/hartonodwi/authgate/internal/pkg/goerror"
	"github.com/hartonodwi/authgate/internal/pkg/goroutine"
	"github.com/hartonodwi/authgate/internal/pkg/hash"
	"github.com/hartonodwi/authgate/internal/pkg/instrument"
	"github.com/hartonodwi/authgate/internal/pkg/lock"
	"github.com/hartonodwi/authgate/internal/pkg/otpcode"
	"github.com/hartonodwi/authgate/internal/pkg/uid"
	"github.com/hartonodwi/authgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// UserRegisteredEvent is published after a successful registration.
type UserRegisteredEvent struct {
	UserID     int64
	Username   string
	Identifier string
}

type repoMessaging interface {
	PublishUserRegistered(ctx context.Context, msg UserRegisteredEvent) error
}

type repoDB interface {
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)

	GetChallenge(ctx context.Context, identifier string) (*entity.Challenge, error)
	UpsertChallenge(ctx context.Context, in entity.Challenge) error
	MarkChallengeVerified(ctx context.Context, identifier string) error
	DeleteChallenge(ctx context.Context, identifier string) error
	DeleteExpiredChallenges(ctx context.Context, now time.Time) (int64, error)

	NewRegistration(ctx context.Context, user entity.NewUser, hash, identifier string) error
	NewUser(ctx context.Context, user entity.NewUser, hash string) error
}

// dispatcher delivers verification codes out of band.
type dispatcher interface {
	SendEmailOTP(ctx context.Context, email, code string) error
	SendSMSOTP(ctx context.Context, phone, code string) error
	Configured(ch entity.Channel) bool
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	dispatcher    dispatcher
	locker        lock.Locker
	validator     validator.Validator
	cfg           config.Config
	bcrypt        hash.Hash
	hmac          hash.Hash
	codes         otpcode.Generator
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Dispatcher    dispatcher
	Locker        lock.Locker
	Validator     validator.Validator
	Config        config.Config
	Bcrypt        hash.Hash
	HMAC          hash.Hash
	Codes         otpcode.Generator
	UID           uid.NumberID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		dispatcher:    dep.Dispatcher,
		locker:        dep.Locker,
		validator:     dep.Validator,
		cfg:           dep.Config,
		bcrypt:        dep.Bcrypt,
		hmac:          dep.HMAC,
		codes:         dep.Codes,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

// resolveIdentifier picks the challenge key from the request. Email wins when
// both are present. The value is used exactly as supplied.
func resolveIdentifier(email, phone string) (string, entity.Channel, error) {
	if email != "" {
		return email, entity.ChannelEmail, nil
	}
	if phone != "" {
		return phone, entity.ChannelPhone, nil
	}
	return "", entity.ChannelUnknown, goerror.NewInvalidFormat("Email or phone required")
}

func (s *Usecase) otpTTL() time.Duration {
	ttl := s.cfg.GetMinute("modules.auth.otp_ttl_minutes")
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return ttl
}

// withIdentifierLock serializes challenge mutations per identifier across
// processes so concurrent issue/verify calls cannot interleave.
func (s *Usecase) withIdentifierLock(ctx context.Context, identifier string, fn func(ctx context.Context) error) error {
	unlock, err := s.locker.Acquire(ctx, "otp:"+identifier)
	if err != nil {
		slog.ErrorContext(ctx, "failed to acquire identifier lock", "error", err)
		return goerror.NewServer(err)
	}
	defer func() {
		if uErr := unlock(ctx); uErr != nil {
			slog.WarnContext(ctx, "failed to release identifier lock", "error", uErr)
		}
	}()

	return fn(ctx)
}

// ReapExpiredChallenges deletes challenge rows past their expiry. Correctness
// never depends on it; reads enforce expiry on their own.
func (s *Usecase) ReapExpiredChallenges(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "ReapExpiredChallenges")
	defer span.End()

	deleted, err := s.repoDB.DeleteExpiredChallenges(ctx, s.clock.Now())
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to reap expired challenges", "error", err)
		return err
	}

	if deleted > 0 {
		slog.InfoContext(ctx, "reaped expired challenges", "count", deleted)
	}
	return nil
}
