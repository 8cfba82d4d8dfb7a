package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/niagakita/passless/internal/pkg/goerror"
)

type ResendInput struct {
	Identifier string `validate:"required,identifier"`
}

type ResendOutput struct {
	Identifier       string
	Channel          string
	ExpiresInSeconds int64
}

// Resend issues a fresh verification code for an existing account. Unlike
// Login it never registers a new account, and it draws from the same
// request window.
func (s *Usecase) Resend(ctx context.Context, in ResendInput) (*ResendOutput, error) {
	ctx, span := s.startSpan(ctx, "Resend")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	identifier, channel := normalizeIdentifier(in.Identifier)

	user, err := s.repoDB.GetUserByIdentifier(ctx, channel, identifier)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "resend requested for unknown account", "channel", channel.String())
		return nil, goerror.NewBusiness("No account found for this identifier", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user account", "channel", channel.String(), "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.issueChallenge(ctx, user, channel); err != nil {
		return nil, err
	}

	return &ResendOutput{
		Identifier:       maskIdentifier(identifier, channel),
		Channel:          channel.String(),
		ExpiresInSeconds: int64(s.settings.OTPTTL.Seconds()),
	}, nil
}
