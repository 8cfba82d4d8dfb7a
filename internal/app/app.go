package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/niagakita/passless/internal/pkg/clock"
	"github.com/niagakita/passless/internal/pkg/config"
	"github.com/niagakita/passless/internal/pkg/goroutine"
	"github.com/niagakita/passless/internal/pkg/hash"
	"github.com/niagakita/passless/internal/pkg/instrument"
	"github.com/niagakita/passless/internal/pkg/mail"
	"github.com/niagakita/passless/internal/pkg/messaging"
	"github.com/niagakita/passless/internal/pkg/router"
	"github.com/niagakita/passless/internal/pkg/session"
	"github.com/niagakita/passless/internal/pkg/uid"
	"github.com/niagakita/passless/internal/pkg/validator"
	"github.com/redis/go-redis/v9"
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
	uid       uid.NumberID
	uuid      uid.StringID
	token     uid.StringID
	sessions  *session.Registry

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	mail      mail.Mail
	messaging messaging.Publisher

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
	app.initMigrations()
	app.initCache()
	app.initMail()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
