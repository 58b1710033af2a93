package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/hartonodwi/authgate/internal/auth/outbound/notify"
	"github.com/hartonodwi/authgate/internal/pkg/clock"
	"github.com/hartonodwi/authgate/internal/pkg/config"
	"github.com/hartonodwi/authgate/internal/pkg/goroutine"
	"github.com/hartonodwi/authgate/internal/pkg/hash"
	"github.com/hartonodwi/authgate/internal/pkg/instrument"
	"github.com/hartonodwi/authgate/internal/pkg/mail"
	"github.com/hartonodwi/authgate/internal/pkg/messaging"
	"github.com/hartonodwi/authgate/internal/pkg/router"
	"github.com/hartonodwi/authgate/internal/pkg/uid"
	"github.com/hartonodwi/authgate/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	bcrypt    hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	mail      mail.Mail
	sms       notify.SMSClient
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initDatabase()
	app.initCache()
	app.initNotifyProviders()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
