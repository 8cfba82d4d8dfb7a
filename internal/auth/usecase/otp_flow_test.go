package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/niagakita/passless/internal/auth/entity"
	"github.com/niagakita/passless/internal/pkg/goerror"
)

// otpStore is a stateful repoDB double mirroring the persistence rules of
// the outbound layer: issuing a code supersedes every prior one in the same
// step, only the newest non-superseded row is active, request counting walks
// rows created since the window start, and purging drops rows by expiry.
// Flow tests spanning several requests run against it.
type otpStore struct {
	fakeRepo

	mu     sync.Mutex
	codes  []entity.OTPCode
	purged chan time.Time
}

func newOTPStore() *otpStore {
	s := &otpStore{purged: make(chan time.Time, 4)}
	s.getUserByIdentifier = func(entity.Channel, string) (*entity.User, error) {
		return &entity.User{ID: 7, Email: "bob@example.com", ProfileCompleted: true}, nil
	}
	return s
}

func (s *otpStore) CreateOTP(_ context.Context, code entity.OTPCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.codes {
		s.codes[i].Superseded = true
	}
	s.codes = append(s.codes, code)
	return nil
}

func (s *otpStore) GetActiveOTP(_ context.Context, userID int64) (*entity.OTPCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.codes) - 1; i >= 0; i-- {
		if s.codes[i].UserID == userID && !s.codes[i].Superseded {
			code := s.codes[i]
			return &code, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (s *otpStore) CountOTPRequests(_ context.Context, userID int64, since time.Time) (entity.RequestWindow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var window entity.RequestWindow
	for _, code := range s.codes {
		if code.UserID != userID || code.CreatedAt.Before(since) {
			continue
		}
		if window.Count == 0 || code.CreatedAt.Before(window.Oldest) {
			window.Oldest = code.CreatedAt
		}
		window.Count++
	}
	return window, nil
}

func (s *otpStore) RecordFailedAttempt(_ context.Context, otpID int64, maxAttempts int16) (int16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.codes {
		code := &s.codes[i]
		if code.ID == otpID && !code.Consumed && code.Attempts < maxAttempts {
			code.Attempts++
			return code.Attempts, nil
		}
	}
	return 0, goerror.ErrNotFound
}

func (s *otpStore) ConsumeOTP(_ context.Context, otpID int64, maxAttempts int16) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.codes {
		code := &s.codes[i]
		if code.ID == otpID && !code.Consumed && code.Attempts < maxAttempts {
			code.Consumed = true
			return true, nil
		}
	}
	return false, nil
}

func (s *otpStore) PurgeExpiredOTPs(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	kept := s.codes[:0:0]
	for _, code := range s.codes {
		if !code.ExpiresAt.Before(before) {
			kept = append(kept, code)
		}
	}
	n := int64(len(s.codes) - len(kept))
	s.codes = kept
	s.mu.Unlock()

	s.purged <- before
	return n, nil
}

func (s *otpStore) waitPurge(t *testing.T) time.Time {
	t.Helper()

	select {
	case before := <-s.purged:
		return before
	case <-time.After(2 * time.Second):
		t.Fatalf("expected purge to run")
		return time.Time{}
	}
}

func (s *otpStore) liveCodes() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var live int
	for _, code := range s.codes {
		if !code.Superseded {
			live++
		}
	}
	return live
}

func (s *otpStore) storedCodes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}

// rollingCode hands out codes from a list, repeating the last one.
type rollingCode struct{ codes []string }

func (r *rollingCode) Generate() (string, error) {
	code := r.codes[0]
	if len(r.codes) > 1 {
		r.codes = r.codes[1:]
	}
	return code, nil
}

func newStoreUsecase(t *testing.T, store *otpStore, clk *fakeClock, codes []string) *Usecase {
	t.Helper()

	uc, _, _, _ := newTestUsecase(t, func(dep *Dependency) {
		dep.RepoDB = store
		dep.Clock = clk
		if len(codes) > 0 {
			dep.Codes = &rollingCode{codes: codes}
		}
	})
	return uc
}

func TestIssueSupersedesPriorCode(t *testing.T) {
	store := newOTPStore()
	clk := &fakeClock{now: testNow}
	uc := newStoreUsecase(t, store, clk, []string{"534201", "918374"})

	if _, err := uc.Login(context.Background(), LoginInput{Identifier: "bob@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.Resend(context.Background(), ResendInput{Identifier: "bob@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if live := store.liveCodes(); live != 1 {
		t.Fatalf("expected one live code after resend, got %d", live)
	}
	active, err := store.GetActiveOTP(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active.CodeHash != hmacHex(t, "918374") {
		t.Fatalf("expected the fresh code to be active")
	}

	_, err = uc.Verify(context.Background(), VerifyInput{Identifier: "bob@example.com", Code: "534201"})
	if err == nil {
		t.Fatalf("expected the superseded code to stop verifying")
	}
	if got := asGoError(t, err).Code(); got != goerror.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %s", got)
	}
	store.waitPurge(t)

	out, err := uc.Verify(context.Background(), VerifyInput{Identifier: "bob@example.com", Code: "918374"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Token != testToken {
		t.Fatalf("expected token %q, got %q", testToken, out.Token)
	}
	store.waitPurge(t)
}

func TestVerifyPurgeKeepsRateWindowHistory(t *testing.T) {
	store := newOTPStore()
	clk := &fakeClock{now: testNow}
	uc := newStoreUsecase(t, store, clk, nil)

	for i := range 3 {
		if _, err := uc.Login(context.Background(), LoginInput{Identifier: "bob@example.com"}); err != nil {
			t.Fatalf("unexpected error on request %d: %v", i+1, err)
		}
	}

	_, err := uc.Login(context.Background(), LoginInput{Identifier: "bob@example.com"})
	if got := asGoError(t, err).Code(); got != goerror.CodeTooManyRequest {
		t.Fatalf("expected rate limit on 4th request, got %s", got)
	}

	clk.now = testNow.Add(21 * time.Minute)
	if _, err := uc.Verify(context.Background(), VerifyInput{Identifier: "bob@example.com", Code: testCode}); err == nil {
		t.Fatalf("expected expired code error")
	}
	if before := store.waitPurge(t); !before.Equal(clk.now.Add(-time.Hour)) {
		t.Fatalf("expected purge cutoff %s, got %s", clk.now.Add(-time.Hour), before)
	}
	if stored := store.storedCodes(); stored != 3 {
		t.Fatalf("expected the windowed rows to survive the purge, got %d", stored)
	}

	clk.now = testNow.Add(22 * time.Minute)
	_, err = uc.Login(context.Background(), LoginInput{Identifier: "bob@example.com"})
	gerr := asGoError(t, err)
	if gerr.Code() != goerror.CodeTooManyRequest {
		t.Fatalf("expected the request window to keep counting, got %s", gerr.Code())
	}
	if got := gerr.Fields()["retry_after_seconds"]; got != "2280" {
		t.Fatalf("expected retry after 2280s, got %s", got)
	}
}
