package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/niagakita/passless/internal/pkg/goerror"
)

type LoginInput struct {
	Identifier string `validate:"required,identifier"`
}

type LoginOutput struct {
	Identifier       string
	Channel          string
	ExpiresInSeconds int64
	UserCreated      bool
}

// Login resolves the account behind the identifier, creating it on first
// contact, and sends a fresh verification code. Any previously issued codes
// for the account stop being verifiable.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	identifier, channel := normalizeIdentifier(in.Identifier)

	user, created, err := s.resolveUser(ctx, channel, identifier)
	if err != nil {
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			return nil, err
		}
		slog.ErrorContext(ctx, "failed to resolve user account", "channel", channel.String(), "error", err)
		return nil, goerror.NewServer(err)
	}

	if created {
		slog.InfoContext(ctx, "new user account registered", "user_id", user.ID, "channel", channel.String())
	}

	if err := s.issueChallenge(ctx, user, channel); err != nil {
		return nil, err
	}

	return &LoginOutput{
		Identifier:       maskIdentifier(identifier, channel),
		Channel:          channel.String(),
		ExpiresInSeconds: int64(s.settings.OTPTTL.Seconds()),
		UserCreated:      created,
	}, nil
}
