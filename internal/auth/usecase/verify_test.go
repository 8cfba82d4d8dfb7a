package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/niagakita/passless/internal/auth/entity"
	"github.com/niagakita/passless/internal/pkg/goerror"
)

// activeChallenge wires the repo with a user and a live code whose hash
// matches testCode.
func activeChallenge(t *testing.T, repo *fakeRepo) {
	t.Helper()

	repo.getUserByIdentifier = func(entity.Channel, string) (*entity.User, error) {
		return &entity.User{ID: 7, Email: "bob@example.com", ProfileCompleted: true}, nil
	}
	repo.getActiveOTP = func(int64) (*entity.OTPCode, error) {
		return &entity.OTPCode{
			ID:        21,
			UserID:    7,
			CodeHash:  hmacHex(t, testCode),
			CreatedAt: testNow.Add(-time.Minute),
			ExpiresAt: testNow.Add(9 * time.Minute),
		}, nil
	}
}

func TestVerifyRejectsMalformedCode(t *testing.T) {
	uc, _, _, _ := newTestUsecase(t, nil)

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		_, err := uc.Verify(context.Background(), VerifyInput{Identifier: "bob@example.com", Code: code})
		if err == nil {
			t.Fatalf("expected error for %q", code)
		}
		if got := asGoError(t, err).Code(); got != goerror.CodeInvalidInput {
			t.Fatalf("expected invalid input for %q, got %s", code, got)
		}
	}
}

func TestVerifyUnknownIdentifier(t *testing.T) {
	uc, _, _, _ := newTestUsecase(t, nil)

	_, err := uc.Verify(context.Background(), VerifyInput{Identifier: "ghost@example.com", Code: testCode})
	if err == nil {
		t.Fatalf("expected error")
	}

	gerr := asGoError(t, err)
	if gerr.Code() != goerror.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %s", gerr.Code())
	}
	if gerr.Msg() != "No active verification code, request a new one" {
		t.Fatalf("unexpected message %q", gerr.Msg())
	}
}

func TestVerifyNoActiveCode(t *testing.T) {
	uc, repo, _, _ := newTestUsecase(t, nil)

	repo.getUserByIdentifier = func(entity.Channel, string) (*entity.User, error) {
		return &entity.User{ID: 7, Email: "bob@example.com"}, nil
	}

	_, err := uc.Verify(context.Background(), VerifyInput{Identifier: "bob@example.com", Code: testCode})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := asGoError(t, err).Msg(); got != "No active verification code, request a new one" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestVerifyExpiredCode(t *testing.T) {
	uc, repo, _, _ := newTestUsecase(t, nil)

	activeChallenge(t, repo)
	repo.getActiveOTP = func(int64) (*entity.OTPCode, error) {
		return &entity.OTPCode{
			ID:        21,
			UserID:    7,
			CodeHash:  hmacHex(t, testCode),
			CreatedAt: testNow.Add(-11 * time.Minute),
			ExpiresAt: testNow.Add(-time.Minute),
		}, nil
	}
	// Expiry is checked before the code, so no attempt is burned.
	repo.recordFailedAttempt = func(int64, int16) (int16, error) {
		t.Errorf("unexpected RecordFailedAttempt call")
		return 0, nil
	}

	_, err := uc.Verify(context.Background(), VerifyInput{Identifier: "bob@example.com", Code: testCode})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := asGoError(t, err).Msg(); got != "Verification code has expired, request a new one" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestVerifyConsumedCode(t *testing.T) {
	uc, repo, _, _ := newTestUsecase(t, nil)

	activeChallenge(t, repo)
	repo.getActiveOTP = func(int64) (*entity.OTPCode, error) {
		return &entity.OTPCode{
			ID:        21,
			UserID:    7,
			CodeHash:  hmacHex(t, testCode),
			Consumed:  true,
			ExpiresAt: testNow.Add(9 * time.Minute),
		}, nil
	}

	_, err := uc.Verify(context.Background(), VerifyInput{Identifier: "bob@example.com", Code: testCode})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := asGoError(t, err).Msg(); got != "Verification code has already been used" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestVerifyAttemptsExhausted(t *testing.T) {
	uc, repo, _, _ := newTestUsecase(t, nil)

	activeChallenge(t, repo)
	repo.getActiveOTP = func(int64) (*entity.OTPCode, error) {
		return &entity.OTPCode{
			ID:        21,
			UserID:    7,
			CodeHash:  hmacHex(t, testCode),
			Attempts:  3,
			ExpiresAt: testNow.Add(9 * time.Minute),
		}, nil
	}
	repo.consumeOTP = func(int64, int16) (bool, error) {
		t.Errorf("unexpected ConsumeOTP call")
		return false, nil
	}

	// Even the correct code is rejected once attempts ran out.
	_, err := uc.Verify(context.Background(), VerifyInput{Identifier: "bob@example.com", Code: testCode})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := asGoError(t, err).Msg(); got != "Too many incorrect attempts, request a new code" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestVerifyIncorrectCode(t *testing.T) {
	uc, repo, _, _ := newTestUsecase(t, nil)

	activeChallenge(t, repo)
	repo.recordFailedAttempt = func(otpID int64, maxAttempts int16) (int16, error) {
		if otpID != 21 {
			t.Errorf("expected otp 21, got %d", otpID)
		}
		if maxAttempts != 3 {
			t.Errorf("expected max attempts 3, got %d", maxAttempts)
		}
		return 1, nil
	}
	repo.createSession = func(entity.Session) error {
		t.Errorf("unexpected CreateSession call")
		return nil
	}

	_, err := uc.Verify(context.Background(), VerifyInput{Identifier: "bob@example.com", Code: "000000"})
	if err == nil {
		t.Fatalf("expected error")
	}

	gerr := asGoError(t, err)
	if gerr.Code() != goerror.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %s", gerr.Code())
	}
	if gerr.Msg() != "Incorrect verification code" {
		t.Fatalf("unexpected message %q", gerr.Msg())
	}
	if got := gerr.Fields()["attempts_remaining"]; got != "2" {
		t.Fatalf("expected attempts_remaining 2, got %q", got)
	}
}

func TestVerifyIncorrectCodeRaceWithConsume(t *testing.T) {
	uc, repo, _, _ := newTestUsecase(t, nil)

	activeChallenge(t, repo)
	repo.recordFailedAttempt = func(int64, int16) (int16, error) {
		return 0, goerror.ErrNotFound
	}

	_, err := uc.Verify(context.Background(), VerifyInput{Identifier: "bob@example.com", Code: "000000"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := asGoError(t, err).Msg(); got != "Verification code has already been used" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestVerifyConsumeRace(t *testing.T) {
	uc, repo, _, _ := newTestUsecase(t, nil)

	activeChallenge(t, repo)
	// A concurrent verification consumed the code between read and update.
	repo.consumeOTP = func(int64, int16) (bool, error) {
		return false, nil
	}
	repo.createSession = func(entity.Session) error {
		t.Errorf("unexpected CreateSession call")
		return nil
	}

	_, err := uc.Verify(context.Background(), VerifyInput{Identifier: "bob@example.com", Code: testCode})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := asGoError(t, err).Msg(); got != "Verification code has already been used" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestVerifySuccess(t *testing.T) {
	uc, repo, _, _ := newTestUsecase(t, nil)

	activeChallenge(t, repo)

	consumed := false
	repo.consumeOTP = func(otpID int64, _ int16) (bool, error) {
		consumed = true
		if otpID != 21 {
			t.Errorf("expected otp 21, got %d", otpID)
		}
		return true, nil
	}

	var stored *entity.Session
	repo.createSession = func(sess entity.Session) error {
		stored = &sess
		return nil
	}

	out, err := uc.Verify(context.Background(), VerifyInput{
		Identifier: "bob@example.com",
		Code:       testCode,
		IP:         "203.0.113.9",
		UserAgent:  "shop-app/3.2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !consumed {
		t.Fatalf("expected code consumption")
	}
	if out.Token != testToken {
		t.Fatalf("expected token %q, got %q", testToken, out.Token)
	}
	if !out.ExpiresAt.Equal(testNow.Add(24 * time.Hour)) {
		t.Fatalf("expected expiry at %s, got %s", testNow.Add(24*time.Hour), out.ExpiresAt)
	}
	if !out.ProfileCompleted {
		t.Fatalf("expected profile completed from user row")
	}

	if stored == nil {
		t.Fatalf("expected session stored")
	}
	if stored.TokenHash != hmacHex(t, testToken) {
		t.Fatalf("expected hashed token in storage, got %q", stored.TokenHash)
	}
	if stored.IP != "203.0.113.9" || stored.UserAgent != "shop-app/3.2" {
		t.Fatalf("expected client binding, got %q %q", stored.IP, stored.UserAgent)
	}
	if !stored.Active {
		t.Fatalf("expected active session")
	}
	if !stored.IssuedAt.Equal(testNow) {
		t.Fatalf("expected issued at %s, got %s", testNow, stored.IssuedAt)
	}
}

func TestVerifyPurgeCutoffSparesRateWindow(t *testing.T) {
	uc, repo, _, _ := newTestUsecase(t, nil)

	purged := make(chan time.Time, 1)
	repo.purgeExpiredOTPs = func(before time.Time) (int64, error) {
		purged <- before
		return 0, nil
	}

	if _, err := uc.Verify(context.Background(), VerifyInput{Identifier: "bob@example.com", Code: testCode}); err == nil {
		t.Fatalf("expected error for unknown account")
	}

	select {
	case before := <-purged:
		if want := testNow.Add(-time.Hour); !before.Equal(want) {
			t.Fatalf("expected purge cutoff %s, got %s", want, before)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected purge to run")
	}
}

func TestVerifyPurgeCutoffSparesCodeTTL(t *testing.T) {
	uc, repo, _, _ := newTestUsecase(t, func(dep *Dependency) {
		dep.Settings.OTPTTL = 2 * time.Hour
	})

	purged := make(chan time.Time, 1)
	repo.purgeExpiredOTPs = func(before time.Time) (int64, error) {
		purged <- before
		return 0, nil
	}

	if _, err := uc.Verify(context.Background(), VerifyInput{Identifier: "bob@example.com", Code: testCode}); err == nil {
		t.Fatalf("expected error for unknown account")
	}

	select {
	case before := <-purged:
		if want := testNow.Add(-2 * time.Hour); !before.Equal(want) {
			t.Fatalf("expected purge cutoff %s, got %s", want, before)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected purge to run")
	}
}

func TestVerifyPurgeOutlivesRequestCancel(t *testing.T) {
	uc, repo, _, _ := newTestUsecase(t, nil)

	purged := make(chan time.Time, 1)
	repo.purgeExpiredOTPs = func(before time.Time) (int64, error) {
		purged <- before
		return 0, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := uc.Verify(ctx, VerifyInput{Identifier: "bob@example.com", Code: testCode}); err == nil {
		t.Fatalf("expected error for unknown account")
	}

	select {
	case <-purged:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected purge to outlive the canceled request")
	}
}
