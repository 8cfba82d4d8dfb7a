package usecase

import (
	"context"
	"log/slog"

	"github.com/niagakita/passless/internal/pkg/goerror"
)

type LogoutAllOutput struct {
	SessionsEnded int64
}

// LogoutAll deactivates every active session of the caller, including the
// current one. Cached validations for other devices age out within the
// session-cache TTL.
func (s *Usecase) LogoutAll(ctx context.Context) (*LogoutAllOutput, error) {
	ctx, span := s.startSpan(ctx, "LogoutAll")
	defer span.End()

	p, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	count, err := s.repoDB.DeactivateAllSessions(ctx, p.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo deactivate all sessions", "user_id", p.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	tokenHash, err := s.hmac.Hash(p.Token)
	if err == nil {
		if err := s.cache.Delete(ctx, string(tokenHash)); err != nil {
			slog.WarnContext(ctx, "failed to purge session cache", "session_id", p.SessionID, "error", err)
		}
	}

	slog.InfoContext(ctx, "all sessions deactivated", "user_id", p.UserID, "count", count)

	return &LogoutAllOutput{SessionsEnded: count}, nil
}
