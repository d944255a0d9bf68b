// Package otp generates and checks the six-digit one-time passcodes used to
// verify a registration or authorize a password reset.
package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/dmitrijs2005/hisabkitab/internal/common"
	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
)

// Purpose tags a code with the flow it was issued for. A code only
// verifies or consumes for the purpose it carries.
type Purpose string

const (
	PurposeRegistration  Purpose = "registration"
	PurposePasswordReset Purpose = "password_reset"
)

const (
	codeMin   = 100000
	codeRange = 900000
)

var randReader = rand.Reader

// Generate returns a uniformly random code in 100000-999999.
func Generate() (string, error) {
	n, err := rand.Int(randReader, big.NewInt(codeRange))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// Check validates presented against the code bound to user. A missing
// user, missing code, purpose mismatch or wrong code all yield
// common.ErrOTPInvalid; a matching code past its expiry yields
// common.ErrOTPExpired. Check never clears the code.
func Check(user *models.User, presented string, purpose Purpose, now time.Time) error {
	if user == nil || user.OTP == "" || user.OTPExpiry.IsZero() {
		return common.ErrOTPInvalid
	}
	if user.OTPPurpose != string(purpose) {
		return common.ErrOTPInvalid
	}
	if subtle.ConstantTimeCompare([]byte(user.OTP), []byte(presented)) != 1 {
		return common.ErrOTPInvalid
	}
	if user.OTPExpiry.Before(now) {
		return common.ErrOTPExpired
	}
	return nil
}

// Message is the mail sent to deliver a code.
type Message struct {
	Subject string
	Body    string
}

func minutes(ttl time.Duration) int {
	m := int(math.Ceil(ttl.Minutes()))
	if m < 1 {
		return 1
	}
	return m
}

// MessageFor renders the subject and HTML body announcing code.
func MessageFor(purpose Purpose, code string, ttl time.Duration) Message {
	if purpose == PurposePasswordReset {
		return Message{
			Subject: "Reset Password OTP",
			Body:    fmt.Sprintf("<p>Your OTP to reset your password is <b>%s</b>. It will expire in %d minutes.</p>", code, minutes(ttl)),
		}
	}
	return Message{
		Subject: "Your Registration OTP",
		Body:    fmt.Sprintf("<p>Your OTP is <b>%s</b>. It expires in %d minutes.</p>", code, minutes(ttl)),
	}
}
