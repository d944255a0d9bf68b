// Package users persists accounts, their friend lists and the one-time
// passcode bound to each account.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
)

type Repository interface {
	// UpsertPending creates an unverified user or refreshes the name,
	// password hash and OTP of an existing unverified one. A verified user
	// with the same email yields common.ErrorAlreadyExists.
	UpsertPending(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// SetOTP binds a code to the user, replacing any previous one.
	SetOTP(ctx context.Context, userID, code string, expiry time.Time, purpose string) error

	// CompleteRegistration and ResetPassword consume the OTP: they apply
	// their change and clear the code in one statement, and only when the
	// stored code, purpose and expiry still match. Otherwise they return
	// common.ErrorNotFound.
	CompleteRegistration(ctx context.Context, userID, code, purpose string, now time.Time) error
	ResetPassword(ctx context.Context, userID, code, purpose, passwordHash string, now time.Time) error

	SetProfileImage(ctx context.Context, userID, url string) (*models.User, error)

	// GetFriendsForUpdate locks the user row; call it inside a transaction.
	GetFriendsForUpdate(ctx context.Context, userID string) ([]string, error)
	SetFriends(ctx context.Context, userID string, friends []string) error
}
