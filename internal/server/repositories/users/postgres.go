package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hisabkitab/internal/common"
	"github.com/dmitrijs2005/hisabkitab/internal/dbx"
	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
)

const userColumns = `id, name, email, password_hash, is_verified, profile_image, friends, otp, otp_expiry, otp_purpose, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var (
		u            models.User
		profileImage sql.NullString
		friends      []byte
		otp          sql.NullString
		otpExpiry    sql.NullTime
		otpPurpose   sql.NullString
	)

	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsVerified,
		&profileImage, &friends, &otp, &otpExpiry, &otpPurpose, &u.CreatedAt)
	if err != nil {
		return nil, err
	}

	u.ProfileImage = profileImage.String
	u.OTP = otp.String
	u.OTPPurpose = otpPurpose.String
	if otpExpiry.Valid {
		u.OTPExpiry = otpExpiry.Time
	}
	if u.Friends, err = decodeFriends(friends); err != nil {
		return nil, err
	}
	return &u, nil
}

func decodeFriends(b []byte) ([]string, error) {
	friends := []string{}
	if len(b) == 0 {
		return friends, nil
	}
	if err := json.Unmarshal(b, &friends); err != nil {
		return nil, fmt.Errorf("decode friends: %w", err)
	}
	return friends, nil
}

func (r *PostgresRepository) UpsertPending(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (name, email, password_hash, is_verified, otp, otp_expiry, otp_purpose)
		 VALUES ($1, $2, $3, FALSE, $4, $5, $6)
		 ON CONFLICT (email) DO UPDATE SET
		     name = EXCLUDED.name,
		     password_hash = EXCLUDED.password_hash,
		     otp = EXCLUDED.otp,
		     otp_expiry = EXCLUDED.otp_expiry,
		     otp_purpose = EXCLUDED.otp_purpose
		 WHERE users.is_verified = FALSE
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.OTP, user.OTPExpiry, user.OTPPurpose).
		Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.IsVerified = false
	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) SetOTP(ctx context.Context, userID, code string, expiry time.Time, purpose string) error {
	query :=
		`UPDATE users SET otp = $2, otp_expiry = $3, otp_purpose = $4
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, userID, code, expiry, purpose)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) CompleteRegistration(ctx context.Context, userID, code, purpose string, now time.Time) error {
	query :=
		`UPDATE users SET is_verified = TRUE, otp = NULL, otp_expiry = NULL, otp_purpose = NULL
		 WHERE id = $1 AND otp = $2 AND otp_purpose = $3 AND otp_expiry >= $4
		 `

	res, err := r.db.ExecContext(ctx, query, userID, code, purpose, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) ResetPassword(ctx context.Context, userID, code, purpose, passwordHash string, now time.Time) error {
	query :=
		`UPDATE users SET password_hash = $5, otp = NULL, otp_expiry = NULL, otp_purpose = NULL
		 WHERE id = $1 AND otp = $2 AND otp_purpose = $3 AND otp_expiry >= $4
		 `

	res, err := r.db.ExecContext(ctx, query, userID, code, purpose, now, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) SetProfileImage(ctx context.Context, userID, url string) (*models.User, error) {
	query := `UPDATE users SET profile_image = $2 WHERE id = $1 RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID, url))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetFriendsForUpdate(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT friends FROM users WHERE id = $1 FOR UPDATE`

	var raw []byte
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return decodeFriends(raw)
}

func (r *PostgresRepository) SetFriends(ctx context.Context, userID string, friends []string) error {
	if friends == nil {
		friends = []string{}
	}
	b, err := json.Marshal(friends)
	if err != nil {
		return fmt.Errorf("encode friends: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE users SET friends = $2::jsonb WHERE id = $1`, userID, string(b))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
