package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/niagakita/passless/internal/pkg/goerror"
	"github.com/niagakita/passless/internal/pkg/session"
	"github.com/niagakita/passless/internal/pkg/uid"
)

// ValidateSession resolves an opaque bearer token into its principal. It is
// bound into the router's authentication middleware via session.Registry.
func (s *Usecase) ValidateSession(ctx context.Context, token string) (*session.Principal, error) {
	ctx, span := s.startSpan(ctx, "ValidateSession")
	defer span.End()

	if len(token) != uid.OpaqueTokenBytes*2 {
		return nil, goerror.NewBusiness("Invalid session", goerror.CodeUnauthorized)
	}

	tokenHash, err := s.hmac.Hash(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash session token", "error", err)
		return nil, goerror.NewServer(err)
	}

	su, err := s.cache.Get(ctx, string(tokenHash))
	if err != nil || su == nil {
		if err != nil {
			slog.WarnContext(ctx, "session cache lookup failed", "error", err)
		}

		su, err = s.repoDB.GetSessionUserByTokenHash(ctx, string(tokenHash))
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("Invalid session", goerror.CodeUnauthorized)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get session", "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	if !su.Active {
		return nil, goerror.NewBusiness("Session has been logged out", goerror.CodeUnauthorized)
	}

	now := s.clock.Now()
	if now.After(su.ExpiresAt) {
		return nil, goerror.NewBusiness("Session has expired", goerror.CodeUnauthorized)
	}

	if s.settings.SessionSliding {
		newExpiry := now.Add(s.settings.SessionTTL)
		if err := s.repoDB.ExtendSession(ctx, su.SessionID, newExpiry); err != nil {
			slog.WarnContext(ctx, "failed to extend session", "session_id", su.SessionID, "error", err)
		} else {
			su.ExpiresAt = newExpiry
		}
	}

	if err := s.cache.Set(ctx, *su); err != nil {
		slog.WarnContext(ctx, "failed to cache session", "session_id", su.SessionID, "error", err)
	}

	return &session.Principal{
		SessionID:        su.SessionID,
		UserID:           su.UserID,
		Identifier:       su.Identifier(),
		ProfileCompleted: su.ProfileCompleted,
		Token:            token,
	}, nil
}

var _ session.Validator = (*Usecase)(nil)
