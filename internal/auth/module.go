package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/hartonodwi/authgate/internal/auth/inbound"
	"github.com/hartonodwi/authgate/internal/auth/outbound/db"
	"github.com/hartonodwi/authgate/internal/auth/outbound/mq"
	"github.com/hartonodwi/authgate/internal/auth/outbound/notify"
	"github.com/hartonodwi/authgate/internal/auth/usecase"
	"github.com/hartonodwi/authgate/internal/pkg/clock"
	"github.com/hartonodwi/authgate/internal/pkg/config"
	"github.com/hartonodwi/authgate/internal/pkg/goroutine"
	"github.com/hartonodwi/authgate/internal/pkg/hash"
	"github.com/hartonodwi/authgate/internal/pkg/instrument"
	"github.com/hartonodwi/authgate/internal/pkg/lock"
	"github.com/hartonodwi/authgate/internal/pkg/mail"
	"github.com/hartonodwi/authgate/internal/pkg/messaging"
	"github.com/hartonodwi/authgate/internal/pkg/otpcode"
	"github.com/hartonodwi/authgate/internal/pkg/router"
	"github.com/hartonodwi/authgate/internal/pkg/uid"
	"github.com/hartonodwi/authgate/internal/pkg/validator"
)

type Dependency struct {
	Ctx        context.Context            `validate:"required"`
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Bcrypt     hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`

	// Mail and SMS are optional; a nil provider leaves that channel
	// unconfigured and the send flow falls back to the dev echo when enabled.
	Mail mail.Mail
	SMS  notify.SMSClient
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbAuth := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)
	dispatcher := notify.NewDispatcher(notify.Dependency{
		Mail:       dep.Mail,
		SMS:        dep.SMS,
		Instrument: dep.Instrument,
	})

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbAuth,
		RepoMessaging: repoMsg,
		Dispatcher:    dispatcher,
		Locker:        lock.NewRedisLock(dep.CacheConn),
		Validator:     dep.Validator,
		Config:        dep.Config,
		Bcrypt:        dep.Bcrypt,
		HMAC:          dep.HMAC,
		Codes:         otpcode.NewSixDigit(),
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	startReaper(dep, uc)

	return nil
}

// startReaper periodically deletes expired challenge rows. Reads enforce
// expiry on their own, so a stalled reaper only costs storage.
func startReaper(dep Dependency, uc *usecase.Usecase) {
	interval := dep.Config.GetMinute("modules.auth.reaper_interval_minutes")
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	dep.Goroutine.Go(dep.Ctx, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := uc.ReapExpiredChallenges(ctx); err != nil {
					slog.WarnContext(ctx, "challenge reaper run failed", "error", err)
				}
			}
		}
	})
}
