package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/niagakita/passless/internal/auth/entity"
	"github.com/niagakita/passless/internal/pkg/goerror"
)

func normalizeIdentifier(identifier string) (string, entity.Channel) {
	identifier = strings.TrimSpace(identifier)
	ch := entity.ChannelOfIdentifier(identifier)
	if ch == entity.ChannelEmail {
		identifier = strings.ToLower(identifier)
	}
	return identifier, ch
}

// issueChallenge runs the shared request path of Login and Resend: enforce
// the trailing request window, mint a code, supersede prior codes, deliver.
func (s *Usecase) issueChallenge(ctx context.Context, user *entity.User, channel entity.Channel) error {
	now := s.clock.Now()

	window, err := s.repoDB.CountOTPRequests(ctx, user.ID, now.Add(-s.settings.RateLimitWindow))
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count code requests", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	if window.Count >= s.settings.RateLimitMax {
		retryAfter := retryAfterSeconds(window.Oldest.Add(s.settings.RateLimitWindow), now)
		slog.WarnContext(ctx, "code request rate limit reached",
			"user_id", user.ID,
			"count", window.Count,
			"retry_after_seconds", retryAfter,
		)
		return goerror.NewBusiness(
			"Too many verification code requests, try again later",
			goerror.CodeTooManyRequest,
			"retry_after_seconds", strconv.FormatInt(retryAfter, 10),
		)
	}

	code, err := s.codes.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate verification code", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	codeHash, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash verification code", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.CreateOTP(ctx, entity.OTPCode{
		ID:        s.uid.Generate(),
		UserID:    user.ID,
		CodeHash:  string(codeHash),
		CreatedAt: now,
		ExpiresAt: now.Add(s.settings.OTPTTL),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create verification code", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.notifier.SendCode(ctx, user, channel, code, s.settings.OTPTTL); err != nil {
		slog.ErrorContext(ctx, "failed to deliver verification code",
			"user_id", user.ID,
			"channel", channel.String(),
			"error", err,
		)
		return goerror.NewUnavailable(err, "Failed to deliver verification code, try again")
	}

	return nil
}

// maskIdentifier obscures a delivery destination for response payloads.
func maskIdentifier(identifier string, channel entity.Channel) string {
	switch channel {
	case entity.ChannelEmail:
		at := strings.IndexByte(identifier, '@')
		if at <= 1 {
			return "***" + identifier[at:]
		}
		return identifier[:1] + "***" + identifier[at:]
	case entity.ChannelMobile:
		if len(identifier) <= 3 {
			return "***"
		}
		return "***" + identifier[len(identifier)-3:]
	default:
		return "***"
	}
}

// retryAfterSeconds reports the whole seconds until deadline, at least 1.
func retryAfterSeconds(deadline, now time.Time) int64 {
	d := deadline.Sub(now)
	secs := int64((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
