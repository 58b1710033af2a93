package app

import (
	"log/slog"
	"os"

	"github.com/hartonodwi/authgate/internal/auth"
)

func (a *App) initModules() {
	if !a.config.GetBool("modules.auth.enabled") {
		return
	}

	if err := auth.New(auth.Dependency{
		Ctx:        a.ctx,
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		Bcrypt:     a.bcrypt,
		HMAC:       a.hmac,
		Clock:      a.clock,
		Validator:  a.validator,
		Router:     a.router,
		DBConn:     a.dbConn,
		CacheConn:  a.cacheConn,
		Messaging:  a.messaging,
		Goroutine:  a.goroutine,
		Mail:       a.mail,
		SMS:        a.sms,
	}); err != nil {
		slog.Error("failed to init module auth", "error", err)
		os.Exit(1)
	}
}
