package models

import "time"

// User is an account together with the one-time passcode currently bound
// to it. OTP, OTPExpiry and OTPPurpose are empty/zero when no code is
// outstanding.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsVerified   bool
	ProfileImage string
	Friends      []string
	OTP          string
	OTPExpiry    time.Time
	OTPPurpose   string
	CreatedAt    time.Time
}

// Profile is what clients get to see of a user.
type Profile struct {
	ID           string  `json:"_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	ProfileImage *string `json:"profileImage"`
}

func (u *User) Profile() Profile {
	p := Profile{ID: u.ID, Name: u.Name, Email: u.Email}
	if u.ProfileImage != "" {
		img := u.ProfileImage
		p.ProfileImage = &img
	}
	return p
}
