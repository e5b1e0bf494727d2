package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gyro-pay/gyro/internal/ledger"
)

// Service manages the owner, the ordered administrator list and registered users.
type Service struct {
	repo   Repository
	auth   ledger.Authorizer
	logger *slog.Logger
}

// NewService creates a registry service.
func NewService(repo Repository, auth ledger.Authorizer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, auth: auth, logger: logger.With("component", "registry")}
}

// Init records owner and seeds the admin list with it. Calling Init again
// with the same owner is a no-op; a different owner is rejected.
func (s *Service) Init(ctx context.Context, owner string) error {
	if owner == "" {
		return ledger.ErrOwnerNotSet
	}
	current, err := s.repo.Owner(ctx)
	if err != nil {
		return err
	}
	if current != "" && current != owner {
		return fmt.Errorf("registry already owned by %s: %w", current, ledger.ErrNotAuthorized)
	}
	if current == "" {
		if err := s.repo.SetOwner(ctx, owner); err != nil {
			return err
		}
	}
	if err := s.repo.AppendAdmin(ctx, owner); err != nil && !errors.Is(err, ledger.ErrAlreadyAdmin) {
		return err
	}
	return nil
}

// Owner returns the owner address.
func (s *Service) Owner(ctx context.Context) (string, error) {
	owner, err := s.repo.Owner(ctx)
	if err != nil {
		return "", err
	}
	if owner == "" {
		return "", ledger.ErrOwnerNotSet
	}
	return owner, nil
}

// RegisterUser records address as a user. The caller must control address.
func (s *Service) RegisterUser(ctx context.Context, address string) error {
	if err := s.auth.RequireAuth(ctx, address); err != nil {
		return err
	}
	if err := s.repo.CreateUser(ctx, address); err != nil {
		return err
	}
	s.logger.Info("user registered", "address", address)
	return nil
}

// AddAdmin appends a registered user to the administrator list. Only the owner may call it.
func (s *Service) AddAdmin(ctx context.Context, address string) error {
	owner, err := s.Owner(ctx)
	if err != nil {
		return err
	}
	if err := s.auth.RequireAuth(ctx, owner); err != nil {
		return err
	}
	isAdmin, err := s.IsAdmin(ctx, address)
	if err != nil {
		return err
	}
	if isAdmin {
		return ledger.ErrAlreadyAdmin
	}
	isUser, err := s.repo.IsUser(ctx, address)
	if err != nil {
		return err
	}
	if !isUser {
		return ledger.ErrNotAuthorized
	}
	if err := s.repo.AppendAdmin(ctx, address); err != nil {
		return err
	}
	s.logger.Info("admin added", "address", address)
	return nil
}

// Admins returns administrators in liquidity-scan priority order.
func (s *Service) Admins(ctx context.Context) ([]string, error) {
	return s.repo.Admins(ctx)
}

// IsAdmin reports whether address is in the administrator list.
func (s *Service) IsAdmin(ctx context.Context, address string) (bool, error) {
	admins, err := s.repo.Admins(ctx)
	if err != nil {
		return false, err
	}
	for _, a := range admins {
		if a == address {
			return true, nil
		}
	}
	return false, nil
}

// IsUser reports whether address registered as a user.
func (s *Service) IsUser(ctx context.Context, address string) (bool, error) {
	return s.repo.IsUser(ctx, address)
}

// Describe reports every role held by address.
func (s *Service) Describe(ctx context.Context, address string) (Principal, error) {
	p := Principal{Address: address, Role: RoleNone, AsOf: time.Now().UTC()}
	var err error
	if p.IsUser, err = s.repo.IsUser(ctx, address); err != nil {
		return Principal{}, err
	}
	if p.IsAdmin, err = s.IsAdmin(ctx, address); err != nil {
		return Principal{}, err
	}
	owner, err := s.repo.Owner(ctx)
	if err != nil {
		return Principal{}, err
	}
	switch {
	case owner != "" && owner == address:
		p.Role = RoleOwner
	case p.IsAdmin:
		p.Role = RoleAdmin
	case p.IsUser:
		p.Role = RoleUser
	}
	return p, nil
}
