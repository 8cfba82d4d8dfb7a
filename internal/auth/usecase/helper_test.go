package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/niagakita/passless/internal/auth/entity"
	"github.com/niagakita/passless/internal/pkg/goerror"
	"github.com/niagakita/passless/internal/pkg/goroutine"
	"github.com/niagakita/passless/internal/pkg/hash"
	"github.com/niagakita/passless/internal/pkg/instrument"
	"github.com/niagakita/passless/internal/pkg/session"
	"github.com/niagakita/passless/internal/pkg/uid"
	"github.com/niagakita/passless/internal/pkg/validator"
)

var (
	testNow    = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	testSecret = "test-secret"
	testCode   = "042917"
	testToken  = strings.Repeat("4e", uid.OpaqueTokenBytes)
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type seqNumberID struct{ next int64 }

func (s *seqNumberID) Generate() int64 { s.next++; return s.next }

type staticToken struct{ token string }

func (s staticToken) Generate() string { return s.token }

type staticCode struct {
	code string
	err  error
}

func (s staticCode) Generate() (string, error) { return s.code, s.err }

// fakeRepo is a hook-based repoDB double. Hooks left nil fall back to a
// benign default so each test only wires the calls it cares about.
type fakeRepo struct {
	getUserByIdentifier func(channel entity.Channel, identifier string) (*entity.User, error)
	getUserByID         func(id int64) (*entity.User, error)
	createUser          func(user entity.User) error
	updateUserProfile   func(id int64, firstName, lastName string) error

	getActiveOTP        func(userID int64) (*entity.OTPCode, error)
	countOTPRequests    func(userID int64, since time.Time) (entity.RequestWindow, error)
	createOTP           func(code entity.OTPCode) error
	recordFailedAttempt func(otpID int64, maxAttempts int16) (int16, error)
	consumeOTP          func(otpID int64, maxAttempts int16) (bool, error)
	purgeExpiredOTPs    func(before time.Time) (int64, error)

	createSession             func(sess entity.Session) error
	getSessionUserByTokenHash func(tokenHash string) (*entity.SessionUser, error)
	extendSession             func(sessionID int64, expiresAt time.Time) error
	deactivateSession         func(tokenHash string) error
	deactivateAllSessions     func(userID int64) (int64, error)
	listActiveSessions        func(userID int64) ([]entity.Session, error)
}

func (f *fakeRepo) GetUserByIdentifier(_ context.Context, channel entity.Channel, identifier string) (*entity.User, error) {
	if f.getUserByIdentifier == nil {
		return nil, goerror.ErrNotFound
	}
	return f.getUserByIdentifier(channel, identifier)
}

func (f *fakeRepo) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	if f.getUserByID == nil {
		return nil, goerror.ErrNotFound
	}
	return f.getUserByID(id)
}

func (f *fakeRepo) CreateUser(_ context.Context, user entity.User) error {
	if f.createUser == nil {
		return nil
	}
	return f.createUser(user)
}

func (f *fakeRepo) UpdateUserProfile(_ context.Context, id int64, firstName, lastName string) error {
	if f.updateUserProfile == nil {
		return nil
	}
	return f.updateUserProfile(id, firstName, lastName)
}

func (f *fakeRepo) GetActiveOTP(_ context.Context, userID int64) (*entity.OTPCode, error) {
	if f.getActiveOTP == nil {
		return nil, goerror.ErrNotFound
	}
	return f.getActiveOTP(userID)
}

func (f *fakeRepo) CountOTPRequests(_ context.Context, userID int64, since time.Time) (entity.RequestWindow, error) {
	if f.countOTPRequests == nil {
		return entity.RequestWindow{}, nil
	}
	return f.countOTPRequests(userID, since)
}

func (f *fakeRepo) CreateOTP(_ context.Context, code entity.OTPCode) error {
	if f.createOTP == nil {
		return nil
	}
	return f.createOTP(code)
}

func (f *fakeRepo) RecordFailedAttempt(_ context.Context, otpID int64, maxAttempts int16) (int16, error) {
	if f.recordFailedAttempt == nil {
		return 1, nil
	}
	return f.recordFailedAttempt(otpID, maxAttempts)
}

func (f *fakeRepo) ConsumeOTP(_ context.Context, otpID int64, maxAttempts int16) (bool, error) {
	if f.consumeOTP == nil {
		return true, nil
	}
	return f.consumeOTP(otpID, maxAttempts)
}

// PurgeExpiredOTPs runs on a background goroutine. The nil default stays
// inert; tests that hook it must synchronize on their own, usually through a
// channel send inside the hook.
func (f *fakeRepo) PurgeExpiredOTPs(_ context.Context, before time.Time) (int64, error) {
	if f.purgeExpiredOTPs == nil {
		return 0, nil
	}
	return f.purgeExpiredOTPs(before)
}

func (f *fakeRepo) CreateSession(_ context.Context, sess entity.Session) error {
	if f.createSession == nil {
		return nil
	}
	return f.createSession(sess)
}

func (f *fakeRepo) GetSessionUserByTokenHash(_ context.Context, tokenHash string) (*entity.SessionUser, error) {
	if f.getSessionUserByTokenHash == nil {
		return nil, goerror.ErrNotFound
	}
	return f.getSessionUserByTokenHash(tokenHash)
}

func (f *fakeRepo) ExtendSession(_ context.Context, sessionID int64, expiresAt time.Time) error {
	if f.extendSession == nil {
		return nil
	}
	return f.extendSession(sessionID, expiresAt)
}

func (f *fakeRepo) DeactivateSession(_ context.Context, tokenHash string) error {
	if f.deactivateSession == nil {
		return nil
	}
	return f.deactivateSession(tokenHash)
}

func (f *fakeRepo) DeactivateAllSessions(_ context.Context, userID int64) (int64, error) {
	if f.deactivateAllSessions == nil {
		return 0, nil
	}
	return f.deactivateAllSessions(userID)
}

func (f *fakeRepo) ListActiveSessions(_ context.Context, userID int64) ([]entity.Session, error) {
	if f.listActiveSessions == nil {
		return nil, nil
	}
	return f.listActiveSessions(userID)
}

type fakeCache struct {
	get func(tokenHash string) (*entity.SessionUser, error)
	set func(su entity.SessionUser) error
	del func(tokenHash string) error
}

func (f *fakeCache) Get(_ context.Context, tokenHash string) (*entity.SessionUser, error) {
	if f.get == nil {
		return nil, nil
	}
	return f.get(tokenHash)
}

func (f *fakeCache) Set(_ context.Context, su entity.SessionUser) error {
	if f.set == nil {
		return nil
	}
	return f.set(su)
}

func (f *fakeCache) Delete(_ context.Context, tokenHash string) error {
	if f.del == nil {
		return nil
	}
	return f.del(tokenHash)
}

type fakeNotifier struct {
	sendCode func(user *entity.User, channel entity.Channel, code string, ttl time.Duration) error
}

func (f *fakeNotifier) SendCode(_ context.Context, user *entity.User, channel entity.Channel, code string, ttl time.Duration) error {
	if f.sendCode == nil {
		return nil
	}
	return f.sendCode(user, channel, code, ttl)
}

func testSettings() Settings {
	return Settings{
		OTPLength:       6,
		OTPTTL:          10 * time.Minute,
		MaxAttempts:     3,
		RateLimitMax:    3,
		RateLimitWindow: time.Hour,
		SessionTTL:      24 * time.Hour,
		SessionCacheTTL: 2 * time.Minute,
	}
}

func newTestUsecase(t *testing.T, mutate func(*Dependency)) (*Usecase, *fakeRepo, *fakeCache, *fakeNotifier) {
	t.Helper()

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo := &fakeRepo{}
	cache := &fakeCache{}
	notif := &fakeNotifier{}

	dep := Dependency{
		RepoDB:     repo,
		Cache:      cache,
		Notifier:   notif,
		Validator:  v10,
		HMAC:       hash.NewHMACSHA256(testSecret),
		Codes:      staticCode{code: testCode},
		UID:        &seqNumberID{},
		Token:      staticToken{token: testToken},
		Clock:      &fakeClock{now: testNow},
		Instrument: instrument.NewNoop(),
		Goroutine:  goroutine.NewManager(4),
		Settings:   testSettings(),
	}
	if mutate != nil {
		mutate(&dep)
	}

	uc, err := New(dep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return uc, repo, cache, notif
}

func authCtx(p session.Principal) context.Context {
	return session.SetAuth(context.Background(), p)
}

func asGoError(t *testing.T, err error) *goerror.Error {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *goerror.Error, got %T: %v", err, err)
	}
	return gerr
}

func hmacHex(t *testing.T, str string) string {
	t.Helper()

	h, err := hash.NewHMACSHA256(testSecret).Hash(str)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return string(h)
}
