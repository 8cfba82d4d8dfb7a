package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/niagakita/passless/internal/auth/entity"
	"github.com/niagakita/passless/internal/pkg/goerror"
	"github.com/niagakita/passless/internal/pkg/session"
)

func TestProfileRequiresAuthentication(t *testing.T) {
	uc, _, _, _ := newTestUsecase(t, nil)

	_, err := uc.Profile(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := asGoError(t, err).Code(); got != goerror.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %s", got)
	}
}

func TestProfileReturnsAccount(t *testing.T) {
	uc, repo, _, _ := newTestUsecase(t, nil)

	created := testNow.Add(-48 * time.Hour)
	repo.getUserByID = func(id int64) (*entity.User, error) {
		if id != 7 {
			t.Errorf("expected user 7, got %d", id)
		}
		return &entity.User{
			ID:               7,
			Email:            "bob@example.com",
			FirstName:        "Bob",
			LastName:         "Tan",
			ProfileCompleted: true,
			CreatedAt:        created,
		}, nil
	}

	out, err := uc.Profile(authCtx(session.Principal{UserID: 7, Token: testToken}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.UserID != 7 || out.Email != "bob@example.com" {
		t.Fatalf("unexpected output %+v", out)
	}
	if out.FirstName != "Bob" || out.LastName != "Tan" {
		t.Fatalf("unexpected name %q %q", out.FirstName, out.LastName)
	}
	if !out.ProfileCompleted {
		t.Fatalf("expected profile completed")
	}
	if !out.CreatedAt.Equal(created) {
		t.Fatalf("expected created at %s, got %s", created, out.CreatedAt)
	}
}

func TestProfileMissingAccount(t *testing.T) {
	uc, _, _, _ := newTestUsecase(t, nil)

	_, err := uc.Profile(authCtx(session.Principal{UserID: 404, Token: testToken}))
	if err == nil {
		t.Fatalf("expected error")
	}

	gerr := asGoError(t, err)
	if gerr.Code() != goerror.CodeNotFound {
		t.Fatalf("expected not found, got %s", gerr.Code())
	}
	if gerr.Msg() != "Account not found" {
		t.Fatalf("unexpected message %q", gerr.Msg())
	}
}

func TestProfileUpdateRejectsInvalidName(t *testing.T) {
	uc, _, _, _ := newTestUsecase(t, nil)
	ctx := authCtx(session.Principal{UserID: 7, Token: testToken})

	tests := map[string]ProfileUpdateInput{
		"empty first name": {FirstName: "", LastName: "Tan"},
		"digits in name":   {FirstName: "B0b", LastName: "Tan"},
		"symbols in name":  {FirstName: "Bob", LastName: "Tan!"},
		"whitespace only":  {FirstName: "   ", LastName: "Tan"},
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			err := uc.ProfileUpdate(ctx, in)
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := asGoError(t, err).Code(); got != goerror.CodeInvalidInput {
				t.Fatalf("expected invalid input, got %s", got)
			}
		})
	}
}

func TestProfileUpdateTrimsAndSaves(t *testing.T) {
	uc, repo, _, _ := newTestUsecase(t, nil)

	var gotFirst, gotLast string
	repo.updateUserProfile = func(id int64, firstName, lastName string) error {
		if id != 7 {
			t.Errorf("expected user 7, got %d", id)
		}
		gotFirst, gotLast = firstName, lastName
		return nil
	}

	ctx := authCtx(session.Principal{UserID: 7, Token: testToken})
	if err := uc.ProfileUpdate(ctx, ProfileUpdateInput{FirstName: "  Alice ", LastName: " Tan  "}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotFirst != "Alice" || gotLast != "Tan" {
		t.Fatalf("expected trimmed names, got %q %q", gotFirst, gotLast)
	}
}
