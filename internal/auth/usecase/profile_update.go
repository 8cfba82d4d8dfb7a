package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/niagakita/passless/internal/pkg/goerror"
)

type ProfileUpdateInput struct {
	FirstName string `validate:"required,alphaspace,max=50"`
	LastName  string `validate:"required,alphaspace,max=50"`
}

// ProfileUpdate sets the caller's name and marks the profile completed.
func (s *Usecase) ProfileUpdate(ctx context.Context, in ProfileUpdateInput) error {
	ctx, span := s.startSpan(ctx, "ProfileUpdate")
	defer span.End()

	p, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.repoDB.UpdateUserProfile(ctx, p.UserID, in.FirstName, in.LastName); err != nil {
		slog.ErrorContext(ctx, "failed to repo update user profile", "user_id", p.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
