package auth

import "time"

// Credential binds a principal address to a hashed secret.
type Credential struct {
	Principal    string
	SecretHash   []byte
	TokenVersion int
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// TokenPair is returned on login.
type TokenPair struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
