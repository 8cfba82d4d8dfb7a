package auth

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/niagakita/passless/internal/auth/inbound"
	"github.com/niagakita/passless/internal/auth/outbound/cache"
	"github.com/niagakita/passless/internal/auth/outbound/db"
	"github.com/niagakita/passless/internal/auth/outbound/notify"
	"github.com/niagakita/passless/internal/auth/usecase"
	"github.com/niagakita/passless/internal/pkg/clock"
	"github.com/niagakita/passless/internal/pkg/config"
	"github.com/niagakita/passless/internal/pkg/goroutine"
	"github.com/niagakita/passless/internal/pkg/hash"
	"github.com/niagakita/passless/internal/pkg/instrument"
	"github.com/niagakita/passless/internal/pkg/mail"
	"github.com/niagakita/passless/internal/pkg/messaging"
	"github.com/niagakita/passless/internal/pkg/otp"
	"github.com/niagakita/passless/internal/pkg/router"
	"github.com/niagakita/passless/internal/pkg/session"
	"github.com/niagakita/passless/internal/pkg/uid"
	"github.com/niagakita/passless/internal/pkg/validator"
	"github.com/redis/go-redis/v9"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Sessions   *session.Registry          `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Token      uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	settings := newSettings(dep.Config)

	codes, err := otp.NewNumericCode(settings.OTPLength)
	if err != nil {
		return err
	}

	dbAuth := db.NewDB(dep.DBConn, dep.Instrument)
	sessionCache := cache.NewCache(dep.CacheConn, settings.SessionCacheTTL, dep.Instrument)
	notifier := notify.NewNotifier(dep.Mail, dep.Messaging, dep.Instrument)

	uc, err := usecase.New(usecase.Dependency{
		RepoDB:     dbAuth,
		Cache:      sessionCache,
		Notifier:   notifier,
		Validator:  dep.Validator,
		HMAC:       dep.HMAC,
		Codes:      codes,
		UID:        dep.UID,
		Token:      dep.Token,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
		Goroutine:  dep.Goroutine,
		Settings:   settings,
	})
	if err != nil {
		return err
	}

	dep.Sessions.Bind(uc)
	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}

// newSettings snapshots the module tunables, falling back to the documented
// defaults when a key is absent.
func newSettings(cfg config.Config) usecase.Settings {
	s := usecase.Settings{
		OTPLength:       cfg.GetInt("modules.auth.otp_length"),
		OTPTTL:          cfg.GetMinute("modules.auth.otp_ttl_minutes"),
		MaxAttempts:     int16(cfg.GetInt("modules.auth.max_attempts")),
		RateLimitMax:    cfg.GetInt64("modules.auth.rate_limit_max"),
		RateLimitWindow: cfg.GetMinute("modules.auth.rate_limit_window_minutes"),
		SessionTTL:      cfg.GetHour("modules.auth.session_ttl_hours"),
		SessionSliding:  cfg.GetBool("modules.auth.session_sliding"),
		SessionCacheTTL: cfg.GetSecond("modules.auth.session_cache_ttl_seconds"),
	}

	if s.OTPLength <= 0 {
		s.OTPLength = otp.DefaultLength
	}
	if s.OTPTTL <= 0 {
		s.OTPTTL = 10 * time.Minute
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = 3
	}
	if s.RateLimitMax <= 0 {
		s.RateLimitMax = 3
	}
	if s.RateLimitWindow <= 0 {
		s.RateLimitWindow = time.Hour
	}
	if s.SessionTTL <= 0 {
		s.SessionTTL = 24 * time.Hour
	}
	if s.SessionCacheTTL <= 0 {
		s.SessionCacheTTL = 2 * time.Minute
	}

	return s
}
