package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gyro-pay/gyro/internal/ledger"
)

type adminSet map[string]bool

func (a adminSet) IsAdmin(_ context.Context, address string) (bool, error) {
	return a[address], nil
}

func newTestService() *Service {
	return NewService(NewMemoryRepository(), "test-secret", time.Minute).
		WithSponsors(adminSet{"GOWNER": true})
}

func TestBootstrapAndLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if err := svc.Bootstrap(ctx, "GUSER", "correct horse"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := svc.Bootstrap(ctx, "GUSER", "another secret"); err != nil {
		t.Fatalf("repeated bootstrap: %v", err)
	}
	if _, err := svc.Login(ctx, "GUSER", "another secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected repeated bootstrap to keep the first secret, got %v", err)
	}

	pair, err := svc.Login(ctx, "GUSER", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.ExpiresIn != 60 {
		t.Fatalf("unexpected token pair: %+v", pair)
	}

	principal, err := svc.Verify(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if principal != "GUSER" {
		t.Fatalf("expected GUSER, got %s", principal)
	}
}

func TestLoginRejectsBadSecret(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_ = svc.Bootstrap(ctx, "GUSER", "correct horse")

	if _, err := svc.Login(ctx, "GUSER", "wrong horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "GNOBODY", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown principal, got %v", err)
	}
	if err := svc.Bootstrap(ctx, "GOTHER", "short"); !errors.Is(err, ErrWeakSecret) {
		t.Fatalf("expected weak secret, got %v", err)
	}
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_ = svc.Bootstrap(ctx, "GUSER", "correct horse")
	pair, err := svc.Login(ctx, "GUSER", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	other := NewService(svc.repo, "other-secret", time.Minute)
	if _, err := other.Verify(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := svc.Verify(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}

func TestLogoutInvalidatesTokens(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_ = svc.Bootstrap(ctx, "GUSER", "correct horse")
	pair, _ := svc.Login(ctx, "GUSER", "correct horse")

	if err := svc.Logout(ctx, "GUSER"); !errors.Is(err, ledger.ErrNotAuthorized) {
		t.Fatalf("expected logout to require the principal, got %v", err)
	}
	if err := svc.Logout(WithPrincipal(ctx, "GUSER"), "GUSER"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Verify(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected token invalidated, got %v", err)
	}
}

func TestContextAuthorizer(t *testing.T) {
	var a ContextAuthorizer
	ctx := context.Background()
	if err := a.RequireAuth(ctx, "GUSER"); !errors.Is(err, ledger.ErrNotAuthorized) {
		t.Fatalf("expected anonymous caller rejected, got %v", err)
	}
	ctx = WithPrincipal(ctx, "GUSER")
	if err := a.RequireAuth(ctx, "GUSER"); err != nil {
		t.Fatalf("expected own principal accepted, got %v", err)
	}
	if err := a.RequireAuth(ctx, "GOTHER"); !errors.Is(err, ledger.ErrNotAuthorized) {
		t.Fatalf("expected other principal rejected, got %v", err)
	}
}

func TestEnrollRequiresAdminSponsor(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	if err := svc.Bootstrap(ctx, "GOWNER", "owner secret"); err != nil {
		t.Fatalf("bootstrap owner: %v", err)
	}

	if err := svc.Enroll(ctx, "GUSER", "correct horse"); !errors.Is(err, ledger.ErrNotAuthorized) {
		t.Fatalf("expected anonymous enrollment rejected, got %v", err)
	}
	if err := svc.Enroll(WithPrincipal(ctx, "GUSER"), "GUSER", "correct horse"); !errors.Is(err, ledger.ErrNotAuthorized) {
		t.Fatalf("expected self enrollment rejected, got %v", err)
	}

	asOwner := WithPrincipal(ctx, "GOWNER")
	if err := svc.Enroll(asOwner, "GUSER", "correct horse"); err != nil {
		t.Fatalf("enroll by owner: %v", err)
	}
	if err := svc.Enroll(asOwner, "GUSER", "another secret"); !errors.Is(err, ledger.ErrAlreadyRegistered) {
		t.Fatalf("expected already registered, got %v", err)
	}
	if err := svc.Enroll(asOwner, "GOWNER", "replacement secret"); !errors.Is(err, ledger.ErrAlreadyRegistered) {
		t.Fatalf("expected bootstrapped owner credential kept, got %v", err)
	}

	unsponsored := NewService(NewMemoryRepository(), "test-secret", time.Minute)
	if err := unsponsored.Enroll(asOwner, "GUSER", "correct horse"); !errors.Is(err, ledger.ErrNotAuthorized) {
		t.Fatalf("expected enrollment disabled without sponsors, got %v", err)
	}
}
