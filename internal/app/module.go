package app

import (
	"log/slog"
	"os"

	"github.com/niagakita/passless/internal/auth"
)

func (a *App) initModules() {
	if err := auth.New(auth.Dependency{
		DBConn:     a.dbConn,
		CacheConn:  a.cacheConn,
		Goroutine:  a.goroutine,
		Router:     a.router,
		Sessions:   a.sessions,
		Mail:       a.mail,
		Messaging:  a.messaging,
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		Token:      a.token,
		HMAC:       a.hmac,
		Clock:      a.clock,
		Validator:  a.validator,
	}); err != nil {
		slog.Error("failed to init module auth", "error", err)
		os.Exit(1)
	}
}
