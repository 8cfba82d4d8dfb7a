package usecase

import (
	"context"
	"testing"

	"github.com/niagakita/passless/internal/pkg/goerror"
	"github.com/niagakita/passless/internal/pkg/session"
)

func TestLogoutRequiresAuthentication(t *testing.T) {
	uc, _, _, _ := newTestUsecase(t, nil)

	err := uc.Logout(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := asGoError(t, err).Code(); got != goerror.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %s", got)
	}
}

func TestLogoutDeactivatesSession(t *testing.T) {
	uc, repo, cache, _ := newTestUsecase(t, nil)

	var deactivated string
	repo.deactivateSession = func(tokenHash string) error {
		deactivated = tokenHash
		return nil
	}

	var purged string
	cache.del = func(tokenHash string) error {
		purged = tokenHash
		return nil
	}

	ctx := authCtx(session.Principal{SessionID: 31, UserID: 7, Token: testToken})
	if err := uc.Logout(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := hmacHex(t, testToken)
	if deactivated != want {
		t.Fatalf("expected deactivation by token hash, got %q", deactivated)
	}
	if purged != want {
		t.Fatalf("expected cache purge by token hash, got %q", purged)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	uc, repo, _, _ := newTestUsecase(t, nil)

	// The repo treats an already inactive session as a no-op.
	calls := 0
	repo.deactivateSession = func(string) error {
		calls++
		return nil
	}

	ctx := authCtx(session.Principal{SessionID: 31, UserID: 7, Token: testToken})
	if err := uc.Logout(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := uc.Logout(ctx); err != nil {
		t.Fatalf("unexpected error on repeat: %v", err)
	}

	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestLogoutAllRequiresAuthentication(t *testing.T) {
	uc, _, _, _ := newTestUsecase(t, nil)

	_, err := uc.LogoutAll(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := asGoError(t, err).Code(); got != goerror.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %s", got)
	}
}

func TestLogoutAllCountsSessions(t *testing.T) {
	uc, repo, cache, _ := newTestUsecase(t, nil)

	repo.deactivateAllSessions = func(userID int64) (int64, error) {
		if userID != 7 {
			t.Errorf("expected user 7, got %d", userID)
		}
		return 3, nil
	}

	var purged string
	cache.del = func(tokenHash string) error {
		purged = tokenHash
		return nil
	}

	ctx := authCtx(session.Principal{SessionID: 31, UserID: 7, Token: testToken})
	out, err := uc.LogoutAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.SessionsEnded != 3 {
		t.Fatalf("expected 3 sessions ended, got %d", out.SessionsEnded)
	}
	if purged != hmacHex(t, testToken) {
		t.Fatalf("expected current token purged from cache, got %q", purged)
	}
}
