package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/niagakita/passless/internal/auth/entity"
)

func (s *DB) CreateUser(ctx context.Context, user entity.User) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	mobile := pgtype.Text{String: user.Mobile, Valid: user.Mobile != ""}
	email := pgtype.Text{String: user.Email, Valid: user.Email != ""}

	_, err = s.conn.Exec(ctx, `
		INSERT INTO users (id, mobile, email, first_name, last_name, profile_completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, mobile, email, user.FirstName, user.LastName, user.ProfileCompleted, user.CreatedAt)
	return s.mapError(err)
}

// CreateOTP supersedes any still-verifiable code of the user and inserts the
// new one in the same transaction, so at most one code is ever active.
func (s *DB) CreateOTP(ctx context.Context, code entity.OTPCode) (err error) {
	ctx, span := s.startSpan(ctx, "CreateOTP")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	if _, err := tx.Exec(ctx, `
		UPDATE otp_codes
		SET superseded = true
		WHERE user_id = $1 AND NOT superseded`, code.UserID); err != nil {
		return s.mapError(err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO otp_codes (id, user_id, code_hash, attempts, consumed, superseded, created_at, expires_at)
		VALUES ($1, $2, $3, 0, false, false, $4, $5)`,
		code.ID, code.UserID, code.CodeHash, code.CreatedAt, code.ExpiresAt); err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

func (s *DB) CreateSession(ctx context.Context, sess entity.Session) (err error) {
	ctx, span := s.startSpan(ctx, "CreateSession")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, ip, user_agent, active, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sess.ID, sess.UserID, sess.TokenHash, sess.IP, sess.UserAgent,
		sess.Active, sess.IssuedAt, sess.ExpiresAt)
	return s.mapError(err)
}
