package usecase

import (
	"context"
	"log/slog"

	"github.com/niagakita/passless/internal/pkg/goerror"
)

// Logout deactivates the caller's session. Logging out an already
// deactivated session is a no-op.
func (s *Usecase) Logout(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	p, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	tokenHash, err := s.hmac.Hash(p.Token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash session token", "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.DeactivateSession(ctx, string(tokenHash)); err != nil {
		slog.ErrorContext(ctx, "failed to repo deactivate session", "session_id", p.SessionID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.cache.Delete(ctx, string(tokenHash)); err != nil {
		slog.WarnContext(ctx, "failed to purge session cache", "session_id", p.SessionID, "error", err)
	}

	return nil
}
