package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/niagakita/passless/internal/auth/entity"
	"github.com/niagakita/passless/internal/pkg/goerror"
	"github.com/samber/lo"
)

type SessionInfo struct {
	SessionID int64
	IP        string
	UserAgent string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Current   bool
}

type SessionsOutput struct {
	Sessions []SessionInfo
}

// Sessions lists the caller's active sessions so they can review where
// their account is logged in.
func (s *Usecase) Sessions(ctx context.Context) (*SessionsOutput, error) {
	ctx, span := s.startSpan(ctx, "Sessions")
	defer span.End()

	p, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	sessions, err := s.repoDB.ListActiveSessions(ctx, p.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list sessions", "user_id", p.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	items := lo.Map(sessions, func(sess entity.Session, _ int) SessionInfo {
		return SessionInfo{
			SessionID: sess.ID,
			IP:        sess.IP,
			UserAgent: sess.UserAgent,
			IssuedAt:  sess.IssuedAt,
			ExpiresAt: sess.ExpiresAt,
			Current:   sess.ID == p.SessionID,
		}
	})

	return &SessionsOutput{Sessions: items}, nil
}
