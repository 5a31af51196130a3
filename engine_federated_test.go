package rentauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rentora/rentauth/password"
)

func googleProfile(email string) *ProviderProfile {
	return &ProviderProfile{
		SubjectID:     "sub-1001",
		Email:         email,
		EmailVerified: true,
		GivenName:     "Alice",
		FamilyName:    "Doe",
		AvatarURL:     "https://lh3.example.com/a/alice",
	}
}

func TestFederatedLoginProvisionsAccount(t *testing.T) {
	store := newMockStore()
	provider := &mockProvider{profiles: map[string]*ProviderProfile{
		"good-token": googleProfile("Alice@Example.com"),
	}}
	engine := newTestEngine(t, store, func(b *Builder) { b.WithIdentityProvider(provider) })

	ctx := context.Background()
	result, err := engine.LoginWithFederatedProvider(ctx, "good-token")
	if err != nil {
		t.Fatalf("LoginWithFederatedProvider failed: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected session tokens")
	}
	if !result.EmailVerified {
		t.Fatal("expected provisioned account to inherit the provider's verified email")
	}

	account, err := store.AccountByID(ctx, result.AccountID)
	if err != nil {
		t.Fatalf("AccountByID failed: %v", err)
	}
	if account.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", account.Email)
	}
	if account.Role != RoleTenant {
		t.Fatalf("expected default role, got %q", account.Role)
	}
	if !password.IsSentinel(account.PasswordHash) {
		t.Fatal("expected provisioned account to carry the sentinel credential")
	}

	profile, err := store.ProfileByAccountID(ctx, result.AccountID)
	if err != nil {
		t.Fatalf("ProfileByAccountID failed: %v", err)
	}
	if profile.FirstName != "Alice" || profile.LastName != "Doe" || profile.AvatarURL == "" {
		t.Fatalf("expected provider names and avatar, got %+v", profile)
	}
}

func TestFederatedLoginExistingAccount(t *testing.T) {
	store := newMockStore()
	provider := &mockProvider{profiles: map[string]*ProviderProfile{
		"good-token": googleProfile("bob@example.com"),
	}}
	engine := newTestEngine(t, store, func(b *Builder) { b.WithIdentityProvider(provider) })

	ctx := context.Background()
	id := registerTestAccount(t, engine, "bob@example.com", "password-123")

	result, err := engine.LoginWithFederatedProvider(ctx, "good-token")
	if err != nil {
		t.Fatalf("LoginWithFederatedProvider failed: %v", err)
	}
	if result.AccountID != id {
		t.Fatalf("expected the existing account %s, got %s", id, result.AccountID)
	}

	// The local credential still works; federation did not overwrite it.
	if _, err := engine.Login(ctx, "bob@example.com", "password-123"); err != nil {
		t.Fatalf("password login after federated login failed: %v", err)
	}
}

func TestFederatedAccountCannotPasswordLogin(t *testing.T) {
	store := newMockStore()
	provider := &mockProvider{profiles: map[string]*ProviderProfile{
		"good-token": googleProfile("carol@example.com"),
	}}
	engine := newTestEngine(t, store, func(b *Builder) { b.WithIdentityProvider(provider) })

	ctx := context.Background()
	if _, err := engine.LoginWithFederatedProvider(ctx, "good-token"); err != nil {
		t.Fatalf("LoginWithFederatedProvider failed: %v", err)
	}

	// No password can ever verify against the sentinel credential.
	for _, guess := range []string{"", "password-123", password.Sentinel()} {
		if _, err := engine.Login(ctx, "carol@example.com", guess); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for guess %q, got %v", guess, err)
		}
	}
}

func TestFederatedLoginRejectedToken(t *testing.T) {
	provider := &mockProvider{profiles: map[string]*ProviderProfile{}}
	engine := newTestEngine(t, newMockStore(), func(b *Builder) { b.WithIdentityProvider(provider) })

	if _, err := engine.LoginWithFederatedProvider(context.Background(), "bad-token"); !errors.Is(err, ErrProviderToken) {
		t.Fatalf("expected ErrProviderToken, got %v", err)
	}
}

func TestFederatedLoginUnusableProviderEmail(t *testing.T) {
	unverified := googleProfile("dave@example.com")
	unverified.EmailVerified = false
	blank := googleProfile("")

	provider := &mockProvider{profiles: map[string]*ProviderProfile{
		"unverified": unverified,
		"blank":      blank,
	}}
	engine := newTestEngine(t, newMockStore(), func(b *Builder) { b.WithIdentityProvider(provider) })

	ctx := context.Background()
	for _, token := range []string{"unverified", "blank"} {
		if _, err := engine.LoginWithFederatedProvider(ctx, token); !errors.Is(err, ErrProviderToken) {
			t.Fatalf("expected ErrProviderToken for %q, got %v", token, err)
		}
	}
}

func TestFederatedLoginProviderTimeout(t *testing.T) {
	store := newMockStore()
	provider := &mockProvider{
		profiles: map[string]*ProviderProfile{"good-token": googleProfile("eve@example.com")},
		delay:    200 * time.Millisecond,
	}

	cfg := testConfig()
	cfg.Account.ProviderTimeout = 10 * time.Millisecond
	engine := newTestEngine(t, store, func(b *Builder) {
		b.WithConfig(cfg).WithIdentityProvider(provider)
	})

	if _, err := engine.LoginWithFederatedProvider(context.Background(), "good-token"); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable on timeout, got %v", err)
	}
}

func TestFederatedLoginWithoutProvider(t *testing.T) {
	engine := newTestEngine(t, newMockStore())

	if _, err := engine.LoginWithFederatedProvider(context.Background(), "any"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady without a provider, got %v", err)
	}
}
