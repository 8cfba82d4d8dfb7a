package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/niagakita/passless/internal/auth/entity"
	"github.com/niagakita/passless/internal/pkg/clock"
	"github.com/niagakita/passless/internal/pkg/goerror"
	"github.com/niagakita/passless/internal/pkg/goroutine"
	"github.com/niagakita/passless/internal/pkg/hash"
	"github.com/niagakita/passless/internal/pkg/instrument"
	"github.com/niagakita/passless/internal/pkg/otp"
	"github.com/niagakita/passless/internal/pkg/session"
	"github.com/niagakita/passless/internal/pkg/uid"
	"github.com/niagakita/passless/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	GetUserByIdentifier(ctx context.Context, channel entity.Channel, identifier string) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	CreateUser(ctx context.Context, user entity.User) error
	UpdateUserProfile(ctx context.Context, id int64, firstName, lastName string) error

	GetActiveOTP(ctx context.Context, userID int64) (*entity.OTPCode, error)
	CountOTPRequests(ctx context.Context, userID int64, since time.Time) (entity.RequestWindow, error)
	CreateOTP(ctx context.Context, code entity.OTPCode) error
	RecordFailedAttempt(ctx context.Context, otpID int64, maxAttempts int16) (int16, error)
	ConsumeOTP(ctx context.Context, otpID int64, maxAttempts int16) (bool, error)
	PurgeExpiredOTPs(ctx context.Context, before time.Time) (int64, error)

	CreateSession(ctx context.Context, sess entity.Session) error
	GetSessionUserByTokenHash(ctx context.Context, tokenHash string) (*entity.SessionUser, error)
	ExtendSession(ctx context.Context, sessionID int64, expiresAt time.Time) error
	DeactivateSession(ctx context.Context, tokenHash string) error
	DeactivateAllSessions(ctx context.Context, userID int64) (int64, error)
	ListActiveSessions(ctx context.Context, userID int64) ([]entity.Session, error)
}

type sessionCache interface {
	Get(ctx context.Context, tokenHash string) (*entity.SessionUser, error)
	Set(ctx context.Context, su entity.SessionUser) error
	Delete(ctx context.Context, tokenHash string) error
}

type notifier interface {
	SendCode(ctx context.Context, user *entity.User, channel entity.Channel, code string, ttl time.Duration) error
}

// Settings holds the tunables of the authentication flow, snapshotted from
// configuration at module construction.
type Settings struct {
	// OTPLength is the number of digits in a verification code.
	OTPLength int
	// OTPTTL is how long a code stays valid.
	OTPTTL time.Duration
	// MaxAttempts bounds wrong submissions per code.
	MaxAttempts int16
	// RateLimitMax bounds code requests per trailing RateLimitWindow.
	RateLimitMax int64
	// RateLimitWindow is the trailing window for request counting.
	RateLimitWindow time.Duration
	// SessionTTL is the lifetime of an issued session.
	SessionTTL time.Duration
	// SessionSliding extends the session on each validated request.
	SessionSliding bool
	// SessionCacheTTL bounds staleness of cached session lookups.
	SessionCacheTTL time.Duration
}

func (s Settings) validate() error {
	if s.OTPLength <= 0 {
		return fmt.Errorf("otp length must be positive, got %d", s.OTPLength)
	}
	if s.OTPTTL <= 0 {
		return fmt.Errorf("otp ttl must be positive, got %s", s.OTPTTL)
	}
	if s.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive, got %d", s.MaxAttempts)
	}
	if s.RateLimitMax <= 0 || s.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d per %s", s.RateLimitMax, s.RateLimitWindow)
	}
	if s.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", s.SessionTTL)
	}
	return nil
}

type Usecase struct {
	repoDB    repoDB
	cache     sessionCache
	notifier  notifier
	validator validator.Validator
	hmac      hash.Hash
	codes     otp.Generator
	uid       uid.NumberID
	token     uid.StringID
	clock     clock.Clocker
	ins       instrument.Instrumentation
	goroutine *goroutine.Manager
	settings  Settings
}

type Dependency struct {
	RepoDB     repoDB
	Cache      sessionCache
	Notifier   notifier
	Validator  validator.Validator
	HMAC       hash.Hash
	Codes      otp.Generator
	UID        uid.NumberID
	Token      uid.StringID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
	Goroutine  *goroutine.Manager
	Settings   Settings
}

func New(dep Dependency) (*Usecase, error) {
	if err := dep.Settings.validate(); err != nil {
		return nil, err
	}

	return &Usecase{
		repoDB:    dep.RepoDB,
		cache:     dep.Cache,
		notifier:  dep.Notifier,
		validator: dep.Validator,
		hmac:      dep.HMAC,
		codes:     dep.Codes,
		uid:       dep.UID,
		token:     dep.Token,
		clock:     dep.Clock,
		ins:       dep.Instrument,
		goroutine: dep.Goroutine,
		settings:  dep.Settings,
	}, nil
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

func (s *Usecase) authenticated(ctx context.Context) (*session.Principal, error) {
	p := session.GetAuth(ctx)
	if p == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}
	return p, nil
}

// resolveUser fetches the user behind an identifier, re-fetching once
// when a concurrent insert wins the unique-constraint race.
func (s *Usecase) resolveUser(ctx context.Context, channel entity.Channel, identifier string) (*entity.User, bool, error) {
	user, err := s.repoDB.GetUserByIdentifier(ctx, channel, identifier)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		return nil, false, err
	}

	user = &entity.User{ID: s.uid.Generate(), CreatedAt: s.clock.Now()}
	switch channel {
	case entity.ChannelMobile:
		user.Mobile = identifier
	case entity.ChannelEmail:
		user.Email = identifier
	default:
		return nil, false, goerror.NewInvalidInput(nil, "identifier", "identifier must be a mobile number or email")
	}

	err = s.repoDB.CreateUser(ctx, *user)
	if errors.Is(err, goerror.ErrConflict) {
		user, err = s.repoDB.GetUserByIdentifier(ctx, channel, identifier)
		if err != nil {
			return nil, false, err
		}
		return user, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return user, true, nil
}
