package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/hisabkitab/internal/common"
	"github.com/dmitrijs2005/hisabkitab/internal/logging"
	"github.com/dmitrijs2005/hisabkitab/internal/server/auth"
	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
	"github.com/dmitrijs2005/hisabkitab/internal/server/otp"
	"github.com/dmitrijs2005/hisabkitab/internal/server/repositories/repomanager"
)

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    *auth.Sessions
	issuer      *OTPIssuer
	log         logging.Logger
	now         func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, sessions *auth.Sessions, issuer *OTPIssuer, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		sessions:    sessions,
		issuer:      issuer,
		log:         log.With("module", "users"),
		now:         time.Now,
	}
}

// SendRegistrationOTP creates (or refreshes) an unverified account and
// mails it a registration code.
func (s *UserService) SendRegistrationOTP(ctx context.Context, name, email, password string) error {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return fmt.Errorf("%w: all fields are required", common.ErrorValidation)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", common.ErrorValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return err
		}
		return common.ErrorInternal
	}

	code, expiry, err := s.issuer.code()
	if err != nil {
		return err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		OTP:          code,
		OTPExpiry:    expiry,
		OTPPurpose:   string(otp.PurposeRegistration),
	}

	repo := s.repomanager.Users(s.db)
	user, err = repo.UpsertPending(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return err
		}
		return fmt.Errorf("error creating user: %w", err)
	}

	return s.issuer.deliver(ctx, user.Email, otp.PurposeRegistration, code)
}

// CompleteRegistration consumes a registration code, marks the account
// verified and opens a session for it.
func (s *UserService) CompleteRegistration(ctx context.Context, email, code string) (*models.User, string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := s.lookupForOTP(ctx, email)
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	if err := otp.Check(user, code, otp.PurposeRegistration, now); err != nil {
		return nil, "", err
	}

	err = repo.CompleteRegistration(ctx, user.ID, code, string(otp.PurposeRegistration), now)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// lost a race with another consumer or a reissue
			return nil, "", common.ErrOTPInvalid
		}
		return nil, "", fmt.Errorf("error completing registration: %w", err)
	}

	user.IsVerified = true
	user.OTP, user.OTPPurpose, user.OTPExpiry = "", "", time.Time{}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, token, nil
}

// lookupForOTP reports an unknown email the same way as a missing code.
func (s *UserService) lookupForOTP(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrOTPInvalid
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// Login checks the password first and only then the verification flag, so
// an unverified account is only disclosed to someone holding its password.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", common.ErrorInternal
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	if !ok {
		return nil, "", common.ErrorUnauthorized
	}

	if !user.IsVerified {
		return nil, "", common.ErrAccountNotVerified
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	return user, token, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// Authenticate resolves a session token to its user. Any token that does
// not name an existing user is reported as common.ErrInvalidToken.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.sessions.Validate(token)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error loading session user: %w", err)
	}
	return user, nil
}
