package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/niagakita/passless/internal/pkg/goerror"
)

type ProfileOutput struct {
	UserID           int64
	Mobile           string
	Email            string
	FirstName        string
	LastName         string
	ProfileCompleted bool
	CreatedAt        time.Time
}

// Profile returns the caller's account details.
func (s *Usecase) Profile(ctx context.Context) (*ProfileOutput, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	p, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.repoDB.GetUserByID(ctx, p.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account behind session no longer exists", "user_id", p.UserID)
		return nil, goerror.NewBusiness("Account not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user account", "user_id", p.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ProfileOutput{
		UserID:           user.ID,
		Mobile:           user.Mobile,
		Email:            user.Email,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		ProfileCompleted: user.ProfileCompleted,
		CreatedAt:        user.CreatedAt,
	}, nil
}
