package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/hisabkitab/internal/common"
	"github.com/dmitrijs2005/hisabkitab/internal/logging"
	"github.com/dmitrijs2005/hisabkitab/internal/server/auth"
	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
	"github.com/dmitrijs2005/hisabkitab/internal/server/otp"
	"github.com/dmitrijs2005/hisabkitab/internal/server/repositories/repomanager"
)

type PasswordResetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      *OTPIssuer
	log         logging.Logger
	now         func() time.Time
}

func NewPasswordResetService(db *sql.DB, m repomanager.RepositoryManager, issuer *OTPIssuer, log logging.Logger) *PasswordResetService {
	return &PasswordResetService{
		db:          db,
		repomanager: m,
		issuer:      issuer,
		log:         log.With("module", "password_reset"),
		now:         time.Now,
	}
}

// SendOTP binds a reset code to an existing account and mails it.
func (s *PasswordResetService) SendOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	code, expiry, err := s.issuer.code()
	if err != nil {
		return err
	}

	if err := repo.SetOTP(ctx, user.ID, code, expiry, string(otp.PurposePasswordReset)); err != nil {
		return fmt.Errorf("error storing otp: %w", err)
	}

	return s.issuer.deliver(ctx, user.Email, otp.PurposePasswordReset, code)
}

// VerifyOTP checks a reset code without consuming it.
func (s *PasswordResetService) VerifyOTP(ctx context.Context, email, code string) error {
	user, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	return otp.Check(user, code, otp.PurposePasswordReset, s.now())
}

// Reset consumes a reset code and replaces the password. No session is
// issued; the user logs in afterwards.
func (s *PasswordResetService) Reset(ctx context.Context, email, code, newPassword string) error {
	if strings.TrimSpace(email) == "" || code == "" || newPassword == "" {
		return fmt.Errorf("%w: email, otp and new password are required", common.ErrorValidation)
	}

	user, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}

	now := s.now()
	if err := otp.Check(user, code, otp.PurposePasswordReset, now); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return err
		}
		return common.ErrorInternal
	}

	err = s.repomanager.Users(s.db).ResetPassword(ctx, user.ID, code, string(otp.PurposePasswordReset), hash, now)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrOTPInvalid
		}
		return fmt.Errorf("error resetting password: %w", err)
	}

	s.log.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

func (s *PasswordResetService) lookup(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrOTPInvalid
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}
