package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/gyro-pay/gyro/internal/ledger"
)

const minSecretLength = 8

var (
	// ErrInvalidCredentials hides whether the principal or the secret was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrWeakSecret         = fmt.Errorf("secret must be at least %d characters", minSecretLength)
)

// Claims are the JWT claims issued for a principal.
type Claims struct {
	Version int `json:"ver"`
	jwt.RegisteredClaims
}

// Sponsors decides which authenticated principals may enroll credentials for
// others. registry.Service satisfies it through its administrator list.
type Sponsors interface {
	IsAdmin(ctx context.Context, address string) (bool, error)
}

// Service enrolls principal secrets and issues access tokens proving control of a principal.
type Service struct {
	repo     Repository
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	sponsors Sponsors
}

// NewService builds an auth service signing HS256 tokens with secret.
func NewService(repo Repository, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Service{repo: repo, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithSponsors sets who may enroll new principals. Without sponsors only
// Bootstrap can create credentials.
func (s *Service) WithSponsors(sponsors Sponsors) *Service {
	s.sponsors = sponsors
	return s
}

// Bootstrap stores the credential of a principal configured out of band,
// such as the ledger owner. An existing credential is left untouched.
func (s *Service) Bootstrap(ctx context.Context, principal, secret string) error {
	err := s.store(ctx, principal, secret)
	if errors.Is(err, ledger.ErrAlreadyRegistered) {
		return nil
	}
	return err
}

// Enroll stores a secret for a principal that has none yet. The caller must
// be authenticated as an administrator; the secret is then handed to the
// principal out of band.
func (s *Service) Enroll(ctx context.Context, principal, secret string) error {
	sponsor, ok := PrincipalFrom(ctx)
	if !ok || s.sponsors == nil {
		return ledger.ErrNotAuthorized
	}
	isAdmin, err := s.sponsors.IsAdmin(ctx, sponsor)
	if err != nil {
		return fmt.Errorf("check sponsor: %w", err)
	}
	if !isAdmin {
		return ledger.ErrNotAuthorized
	}
	return s.store(ctx, principal, secret)
}

func (s *Service) store(ctx context.Context, principal, secret string) error {
	if principal == "" {
		return ErrInvalidCredentials
	}
	if len(secret) < minSecretLength {
		return ErrWeakSecret
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.Create(ctx, Credential{
		Principal:  principal,
		SecretHash: hash,
		CreatedAt:  s.now().UTC(),
	})
}

// Login verifies the secret and issues an access token.
func (s *Service) Login(ctx context.Context, principal, secret string) (TokenPair, error) {
	cred, err := s.repo.Find(ctx, principal)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if err := bcrypt.CompareHashAndPassword(cred.SecretHash, []byte(secret)); err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	now := s.now()
	claims := Claims{
		Version: cred.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cred.Principal,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign token: %w", err)
	}
	if err := s.repo.TouchLogin(ctx, cred.Principal, now); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: signed, ExpiresIn: int64(s.ttl.Seconds())}, nil
}

// Verify checks the token signature, expiry and version and returns its principal.
func (s *Service) Verify(ctx context.Context, token string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", ErrInvalidToken
	}
	cred, err := s.repo.Find(ctx, claims.Subject)
	if err != nil || cred.TokenVersion != claims.Version {
		return "", ErrInvalidToken
	}
	return cred.Principal, nil
}

// Logout invalidates every token issued to principal so far. The caller must control principal.
func (s *Service) Logout(ctx context.Context, principal string) error {
	if err := (ContextAuthorizer{}).RequireAuth(ctx, principal); err != nil {
		return err
	}
	cred, err := s.repo.Find(ctx, principal)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return ledger.ErrNotRegistered
		}
		return err
	}
	return s.repo.UpdateTokenVersion(ctx, principal, cred.TokenVersion+1)
}
