package db

import (
	"context"
	"time"
)

// RecordFailedAttempt bumps the attempt counter only while the code is still
// consumable, so racing submissions can never push it past the limit.
// Returns goerror.ErrNotFound when no consumable row matched.
func (s *DB) RecordFailedAttempt(ctx context.Context, otpID int64, maxAttempts int16) (_ int16, err error) {
	ctx, span := s.startSpan(ctx, "RecordFailedAttempt")
	defer func() { s.endSpan(span, err) }()

	var attempts int16
	err = s.conn.QueryRow(ctx, `
		UPDATE otp_codes
		SET attempts = attempts + 1
		WHERE id = $1 AND NOT consumed AND attempts < $2
		RETURNING attempts`, otpID, maxAttempts).
		Scan(&attempts)
	if err != nil {
		return 0, s.mapError(err)
	}
	return attempts, nil
}

// ConsumeOTP marks the code used. A false return means another request won
// the race or the attempts ran out in between.
func (s *DB) ConsumeOTP(ctx context.Context, otpID int64, maxAttempts int16) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ConsumeOTP")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE otp_codes
		SET consumed = true
		WHERE id = $1 AND NOT consumed AND attempts < $2`, otpID, maxAttempts)
	if err != nil {
		return false, s.mapError(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *DB) PurgeExpiredOTPs(ctx context.Context, before time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "PurgeExpiredOTPs")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		DELETE FROM otp_codes
		WHERE expires_at < $1`, before)
	if err != nil {
		return 0, s.mapError(err)
	}
	return tag.RowsAffected(), nil
}

func (s *DB) UpdateUserProfile(ctx context.Context, id int64, firstName, lastName string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserProfile")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, profile_completed = true
		WHERE id = $1`, id, firstName, lastName)
	return s.mapError(err)
}

func (s *DB) ExtendSession(ctx context.Context, sessionID int64, expiresAt time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "ExtendSession")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE sessions
		SET expires_at = $2
		WHERE id = $1 AND active`, sessionID, expiresAt)
	return s.mapError(err)
}

// DeactivateSession is idempotent; deactivating an unknown or already
// inactive token succeeds.
func (s *DB) DeactivateSession(ctx context.Context, tokenHash string) (err error) {
	ctx, span := s.startSpan(ctx, "DeactivateSession")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE sessions
		SET active = false
		WHERE token_hash = $1`, tokenHash)
	return s.mapError(err)
}

func (s *DB) DeactivateAllSessions(ctx context.Context, userID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeactivateAllSessions")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE sessions
		SET active = false
		WHERE user_id = $1 AND active`, userID)
	if err != nil {
		return 0, s.mapError(err)
	}
	return tag.RowsAffected(), nil
}
