//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/usecase"
)

const strongPassword = "Sup3r$ecret"

type authEnv struct {
	f        *fixture
	store    *MockSessionStore
	sessions usecase.SessionUseCase
	uc       usecase.AuthUseCase
}

func newAuthEnv(enforce bool) *authEnv {
	f := newFixture()
	store := NewMockSessionStore()
	sessions := usecase.NewSessionUseCase(store, &MockSigner{}, time.Hour, enforce, newTestLogger())
	return &authEnv{
		f:        f,
		store:    store,
		sessions: sessions,
		uc:       usecase.NewAuthUseCase(f.users, f.companies, f.creds, MockHasher{}, sessions, f.tm, newTestLogger()),
	}
}

func mustUser(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := model.NewUser("", "Jane", "Doe", email, 27, "us")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	return u
}

func TestAuthUseCase_SignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("should store the user with a hashed password and issue a session", func(t *testing.T) {
		// --- Arrange ---
		env := newAuthEnv(false)
		u := mustUser(t, "jane@example.com")

		// --- Act ---
		token, err := env.uc.SignUpUser(ctx, u, strongPassword)

		// --- Assert ---
		if err != nil {
			t.Fatalf("SignUpUser failed: %v", err)
		}
		p := model.Principal{Kind: model.PrincipalUser, ID: u.ID}
		if got := env.f.creds.hashes[p]; got != "hashed:"+strongPassword {
			t.Errorf("unexpected stored hash %q", got)
		}
		if cur, _ := env.sessions.Current(ctx, p); cur != token {
			t.Errorf("expected the issued token to be recorded, got %q", cur)
		}
	})

	t.Run("should reject a weak password before touching the store", func(t *testing.T) {
		env := newAuthEnv(false)
		u := mustUser(t, "jane@example.com")

		if _, err := env.uc.SignUpUser(ctx, u, "password"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
		if _, err := env.f.users.FindByID(ctx, nil, u.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected no user saved, got %v", err)
		}
	})

	t.Run("should report a taken email as a conflict", func(t *testing.T) {
		env := newAuthEnv(false)
		if _, err := env.uc.SignUpUser(ctx, mustUser(t, "jane@example.com"), strongPassword); err != nil {
			t.Fatalf("first sign-up failed: %v", err)
		}
		if _, err := env.uc.SignUpUser(ctx, mustUser(t, "JANE@example.com"), strongPassword); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("should register a company", func(t *testing.T) {
		env := newAuthEnv(false)
		c, err := model.NewCompany("", "Acme Coffee", "hq@acme.io")
		if err != nil {
			t.Fatalf("setup: %v", err)
		}
		if _, err := env.uc.SignUpCompany(ctx, c, strongPassword); err != nil {
			t.Fatalf("SignUpCompany failed: %v", err)
		}
		p, _, err := env.uc.SignIn(ctx, model.PrincipalCompany, "hq@acme.io", strongPassword)
		if err != nil || p.ID != c.ID {
			t.Fatalf("expected company sign-in, got %+v %v", p, err)
		}
	})
}

func TestAuthUseCase_SignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("should revoke the previous token on each sign-in", func(t *testing.T) {
		// --- Arrange ---
		env := newAuthEnv(true)
		u := mustUser(t, "jane@example.com")
		first, err := env.uc.SignUpUser(ctx, u, strongPassword)
		if err != nil {
			t.Fatalf("setup: %v", err)
		}

		// --- Act ---
		p, second, err := env.uc.SignIn(ctx, model.PrincipalUser, "Jane@Example.com", strongPassword)

		// --- Assert ---
		if err != nil {
			t.Fatalf("SignIn failed: %v", err)
		}
		if p.ID != u.ID || second == first {
			t.Fatalf("unexpected sign-in result %+v %q", p, second)
		}
		if _, err := env.sessions.Verify(ctx, first); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("expected the first token to be revoked, got %v", err)
		}
		if _, err := env.sessions.Verify(ctx, second); err != nil {
			t.Errorf("expected the new token to verify, got %v", err)
		}
	})

	t.Run("should not tell a wrong password from an unknown email", func(t *testing.T) {
		env := newAuthEnv(false)
		if _, err := env.uc.SignUpUser(ctx, mustUser(t, "jane@example.com"), strongPassword); err != nil {
			t.Fatalf("setup: %v", err)
		}
		cases := []struct{ email, password string }{
			{"jane@example.com", "Wr0ng$pass"},
			{"nobody@example.com", strongPassword},
		}
		for _, c := range cases {
			if _, _, err := env.uc.SignIn(ctx, model.PrincipalUser, c.email, c.password); !errors.Is(err, domain.ErrUnauthorized) {
				t.Errorf("SignIn(%s) = %v, want ErrUnauthorized", c.email, err)
			}
		}
	})

	t.Run("should keep kinds apart", func(t *testing.T) {
		env := newAuthEnv(false)
		if _, err := env.uc.SignUpUser(ctx, mustUser(t, "jane@example.com"), strongPassword); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if _, _, err := env.uc.SignIn(ctx, model.PrincipalCompany, "jane@example.com", strongPassword); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("should surface a session store outage", func(t *testing.T) {
		env := newAuthEnv(false)
		if _, err := env.uc.SignUpUser(ctx, mustUser(t, "jane@example.com"), strongPassword); err != nil {
			t.Fatalf("setup: %v", err)
		}
		env.store.SetFunc = func(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
			return errors.New("connection refused")
		}
		if _, _, err := env.uc.SignIn(ctx, model.PrincipalUser, "jane@example.com", strongPassword); !errors.Is(err, domain.ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}
	})
}

func TestAuthUseCase_SetPassword(t *testing.T) {
	ctx := context.Background()
	env := newAuthEnv(false)
	u := env.f.addUser("user-1", 30, "US")
	p := model.Principal{Kind: model.PrincipalUser, ID: u.ID}

	if err := env.uc.SetPassword(ctx, p, "short"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if err := env.uc.SetPassword(ctx, p, strongPassword); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if _, _, err := env.uc.SignIn(ctx, model.PrincipalUser, u.Email, strongPassword); err != nil {
		t.Errorf("expected sign-in with the new password, got %v", err)
	}
}
