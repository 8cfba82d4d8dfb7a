package session

import (
	"context"
	"errors"
	"testing"
)

type stubValidator struct {
	principal *Principal
	err       error
}

func (s stubValidator) ValidateSession(context.Context, string) (*Principal, error) {
	return s.principal, s.err
}

func TestRegistryUnbound(t *testing.T) {
	r := NewRegistry()

	_, err := r.ValidateSession(context.Background(), "token")
	if !errors.Is(err, ErrNoValidator) {
		t.Fatalf("expected ErrNoValidator, got %v", err)
	}
}

func TestRegistryDelegates(t *testing.T) {
	r := NewRegistry()
	r.Bind(stubValidator{principal: &Principal{UserID: 7}})

	p, err := r.ValidateSession(context.Background(), "token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.UserID != 7 {
		t.Fatalf("expected user 7, got %d", p.UserID)
	}
}

func TestAuthContextRoundTrip(t *testing.T) {
	if got := GetAuth(context.Background()); got != nil {
		t.Fatalf("expected nil principal, got %+v", got)
	}

	ctx := SetAuth(context.Background(), Principal{UserID: 7, Identifier: "bob@example.com"})
	p := GetAuth(ctx)
	if p == nil {
		t.Fatalf("expected principal")
	}
	if p.UserID != 7 || p.Identifier != "bob@example.com" {
		t.Fatalf("unexpected principal %+v", p)
	}
}
