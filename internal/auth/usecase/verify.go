package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/niagakita/passless/internal/auth/entity"
	"github.com/niagakita/passless/internal/pkg/goerror"
)

type VerifyInput struct {
	Identifier string `validate:"required,identifier"`
	Code       string `validate:"required,numeric"`
	IP         string
	UserAgent  string
}

type VerifyOutput struct {
	Token            string
	ExpiresAt        time.Time
	ProfileCompleted bool
}

// Verify checks a submitted code against the latest challenge for the
// identifier and, on success, issues an opaque session token bound to the
// caller's IP and user agent.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	if len(in.Code) != s.settings.OTPLength {
		return nil, goerror.NewInvalidInput(nil, "code", "code must be "+strconv.Itoa(s.settings.OTPLength)+" digits")
	}

	identifier, channel := normalizeIdentifier(in.Identifier)
	now := s.clock.Now()

	s.purgeExpiredCodes(ctx, now)

	user, err := s.repoDB.GetUserByIdentifier(ctx, channel, identifier)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "verification for unknown account", "channel", channel.String())
		return nil, errNoActiveChallenge()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user account", "channel", channel.String(), "error", err)
		return nil, goerror.NewServer(err)
	}

	code, err := s.repoDB.GetActiveOTP(ctx, user.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, errNoActiveChallenge()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get active code", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if code.Expired(now) {
		return nil, goerror.NewBusiness("Verification code has expired, request a new one", goerror.CodeUnauthorized)
	}
	if code.Consumed {
		return nil, goerror.NewBusiness("Verification code has already been used", goerror.CodeUnauthorized)
	}
	if code.Attempts >= s.settings.MaxAttempts {
		return nil, goerror.NewBusiness("Too many incorrect attempts, request a new code", goerror.CodeUnauthorized)
	}

	if !s.hmac.Verify(code.CodeHash, in.Code) {
		attempts, err := s.repoDB.RecordFailedAttempt(ctx, code.ID, s.settings.MaxAttempts)
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("Verification code has already been used", goerror.CodeUnauthorized)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo record failed attempt", "user_id", user.ID, "error", err)
			return nil, goerror.NewServer(err)
		}

		remaining := s.settings.MaxAttempts - attempts
		if remaining < 0 {
			remaining = 0
		}
		slog.WarnContext(ctx, "incorrect verification code",
			"user_id", user.ID,
			"attempts", attempts,
			"attempts_remaining", remaining,
		)
		return nil, goerror.NewBusiness(
			"Incorrect verification code",
			goerror.CodeUnauthorized,
			"attempts_remaining", strconv.FormatInt(int64(remaining), 10),
		)
	}

	consumed, err := s.repoDB.ConsumeOTP(ctx, code.ID, s.settings.MaxAttempts)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo consume code", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !consumed {
		return nil, goerror.NewBusiness("Verification code has already been used", goerror.CodeUnauthorized)
	}

	token := s.token.Generate()
	tokenHash, err := s.hmac.Hash(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash session token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	expiresAt := now.Add(s.settings.SessionTTL)
	if err := s.repoDB.CreateSession(ctx, entity.Session{
		ID:        s.uid.Generate(),
		UserID:    user.ID,
		TokenHash: string(tokenHash),
		IP:        in.IP,
		UserAgent: in.UserAgent,
		Active:    true,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create session", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "user login verified", "user_id", user.ID, "channel", channel.String())

	return &VerifyOutput{
		Token:            token,
		ExpiresAt:        expiresAt,
		ProfileCompleted: user.ProfileCompleted,
	}, nil
}

func errNoActiveChallenge() error {
	return goerror.NewBusiness("No active verification code, request a new one", goerror.CodeUnauthorized)
}

// purgeExpiredCodes garbage-collects stale challenge rows off the request
// path. Expired rows inside the trailing rate window still count toward the
// request limit, so the cutoff reaches back the wider of the code TTL and
// the window. The delete outlives the request, hence the detached context.
func (s *Usecase) purgeExpiredCodes(ctx context.Context, now time.Time) {
	keep := s.settings.OTPTTL
	if s.settings.RateLimitWindow > keep {
		keep = s.settings.RateLimitWindow
	}
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		n, err := s.repoDB.PurgeExpiredOTPs(ctx, now.Add(-keep))
		if err != nil {
			slog.WarnContext(ctx, "failed to purge expired codes", "error", err)
			return err
		}
		if n > 0 {
			slog.InfoContext(ctx, "purged expired verification codes", "count", n)
		}
		return nil
	})
}
