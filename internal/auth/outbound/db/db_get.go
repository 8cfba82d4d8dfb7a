package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/niagakita/passless/internal/auth/entity"
)

func (s *DB) GetUserByIdentifier(ctx context.Context, channel entity.Channel, identifier string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByIdentifier")
	defer func() { s.endSpan(span, err) }()

	column := "mobile"
	if channel == entity.ChannelEmail {
		column = "email"
	}

	row := s.conn.QueryRow(ctx, `
		SELECT id, mobile, email, first_name, last_name, profile_completed, created_at
		FROM users
		WHERE `+column+` = $1`, identifier)

	user, err := scanUser(row)
	if err != nil {
		return nil, s.mapError(err)
	}
	return user, nil
}

func (s *DB) GetUserByID(ctx context.Context, id int64) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `
		SELECT id, mobile, email, first_name, last_name, profile_completed, created_at
		FROM users
		WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		return nil, s.mapError(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		user   entity.User
		mobile pgtype.Text
		email  pgtype.Text
	)
	if err := row.Scan(&user.ID, &mobile, &email, &user.FirstName, &user.LastName,
		&user.ProfileCompleted, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.Mobile = mobile.String
	user.Email = email.String
	return &user, nil
}

func (s *DB) GetActiveOTP(ctx context.Context, userID int64) (_ *entity.OTPCode, err error) {
	ctx, span := s.startSpan(ctx, "GetActiveOTP")
	defer func() { s.endSpan(span, err) }()

	var code entity.OTPCode
	err = s.conn.QueryRow(ctx, `
		SELECT id, user_id, code_hash, attempts, consumed, superseded, created_at, expires_at
		FROM otp_codes
		WHERE user_id = $1 AND NOT superseded
		ORDER BY created_at DESC
		LIMIT 1`, userID).
		Scan(&code.ID, &code.UserID, &code.CodeHash, &code.Attempts, &code.Consumed,
			&code.Superseded, &code.CreatedAt, &code.ExpiresAt)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &code, nil
}

func (s *DB) CountOTPRequests(ctx context.Context, userID int64, since time.Time) (_ entity.RequestWindow, err error) {
	ctx, span := s.startSpan(ctx, "CountOTPRequests")
	defer func() { s.endSpan(span, err) }()

	var (
		window entity.RequestWindow
		oldest pgtype.Timestamptz
	)
	err = s.conn.QueryRow(ctx, `
		SELECT COUNT(*), MIN(created_at)
		FROM otp_codes
		WHERE user_id = $1 AND created_at >= $2`, userID, since).
		Scan(&window.Count, &oldest)
	if err != nil {
		return entity.RequestWindow{}, s.mapError(err)
	}

	window.Oldest = oldest.Time
	return window, nil
}

func (s *DB) GetSessionUserByTokenHash(ctx context.Context, tokenHash string) (_ *entity.SessionUser, err error) {
	ctx, span := s.startSpan(ctx, "GetSessionUserByTokenHash")
	defer func() { s.endSpan(span, err) }()

	var (
		su     entity.SessionUser
		mobile pgtype.Text
		email  pgtype.Text
	)
	err = s.conn.QueryRow(ctx, `
		SELECT s.id, s.token_hash, s.active, s.expires_at,
		       u.id, u.mobile, u.email, u.profile_completed
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = $1`, tokenHash).
		Scan(&su.SessionID, &su.TokenHash, &su.Active, &su.ExpiresAt,
			&su.UserID, &mobile, &email, &su.ProfileCompleted)
	if err != nil {
		return nil, s.mapError(err)
	}

	su.Mobile = mobile.String
	su.Email = email.String
	return &su, nil
}

func (s *DB) ListActiveSessions(ctx context.Context, userID int64) (_ []entity.Session, err error) {
	ctx, span := s.startSpan(ctx, "ListActiveSessions")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT id, user_id, ip, user_agent, active, issued_at, expires_at
		FROM sessions
		WHERE user_id = $1 AND active AND expires_at > now()
		ORDER BY issued_at DESC`, userID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var sessions []entity.Session
	for rows.Next() {
		var sess entity.Session
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.IP, &sess.UserAgent,
			&sess.Active, &sess.IssuedAt, &sess.ExpiresAt); err != nil {
			return nil, s.mapError(err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return sessions, nil
}
