package auth

import "time"

// Sessions turns a verified user id into a signed session token and back.
// The signing key is fixed at construction.
type Sessions struct {
	secret   []byte
	validity time.Duration
}

func NewSessions(secret string, validity time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), validity: validity}
}

func (s *Sessions) Issue(userID string) (string, error) {
	return GenerateToken(userID, s.secret, s.validity)
}

func (s *Sessions) Validate(token string) (string, error) {
	return GetUserIDFromToken(token, s.secret)
}
