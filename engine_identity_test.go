package rentauth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func testVerificationRequest() VerificationRequest {
	return VerificationRequest{
		NationalID: "NID-123456789",
		Gender:     GenderFemale,
		Birthdate:  time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC),
	}
}

func TestCompleteVerification(t *testing.T) {
	store := newMockStore()
	notifier := newMockNotifier()
	engine := newTestEngine(t, store, func(b *Builder) { b.WithNotifier(notifier) })

	ctx := context.Background()
	id := registerTestAccount(t, engine, "alice@example.com", "password-123")
	verifyTestEmail(t, engine, notifier, "alice@example.com")

	if err := engine.CompleteVerification(ctx, id, testVerificationRequest()); err != nil {
		t.Fatalf("CompleteVerification failed: %v", err)
	}

	account, err := store.AccountByID(ctx, id)
	if err != nil {
		t.Fatalf("AccountByID failed: %v", err)
	}
	if !account.FullyVerified {
		t.Fatal("expected account to be fully verified")
	}

	profile, err := store.ProfileByAccountID(ctx, id)
	if err != nil {
		t.Fatalf("ProfileByAccountID failed: %v", err)
	}
	if profile.NationalIDSealed == "" {
		t.Fatal("expected sealed national id to be stored")
	}
	if strings.Contains(profile.NationalIDSealed, "NID-123456789") {
		t.Fatal("expected national id to be stored encrypted, found plaintext")
	}
	if profile.Gender != GenderFemale || profile.Birthdate.IsZero() {
		t.Fatal("expected verification fields to be persisted")
	}

	if len(notifier.welcomes) != 1 || notifier.welcomes[0] != "alice@example.com" {
		t.Fatalf("expected one welcome mail, got %v", notifier.welcomes)
	}
	if got := notifier.welcomeNames["alice@example.com"]; got != "Test" {
		t.Fatalf("expected welcome mail addressed by first name, got %q", got)
	}
}

func TestCompleteVerificationIsTerminal(t *testing.T) {
	store := newMockStore()
	notifier := newMockNotifier()
	engine := newTestEngine(t, store, func(b *Builder) { b.WithNotifier(notifier) })

	ctx := context.Background()
	id := registerTestAccount(t, engine, "bob@example.com", "password-123")
	verifyTestEmail(t, engine, notifier, "bob@example.com")

	if err := engine.CompleteVerification(ctx, id, testVerificationRequest()); err != nil {
		t.Fatalf("first CompleteVerification failed: %v", err)
	}

	err := engine.CompleteVerification(ctx, id, testVerificationRequest())
	if !errors.Is(err, ErrAlreadyFullyVerified) {
		t.Fatalf("expected ErrAlreadyFullyVerified, got %v", err)
	}
}

func TestCompleteVerificationRequiresVerifiedEmail(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(t, store)

	ctx := context.Background()
	id := registerTestAccount(t, engine, "carol@example.com", "password-123")

	err := engine.CompleteVerification(ctx, id, testVerificationRequest())
	if !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}
	if Code(err) != "EMAIL_NOT_VERIFIED" {
		t.Fatalf("expected EMAIL_NOT_VERIFIED code, got %q", Code(err))
	}
}

func TestCompleteVerificationEmailGateDisabled(t *testing.T) {
	store := newMockStore()
	cfg := testConfig()
	cfg.Account.RequireEmailVerifiedForIdentity = false
	engine := newTestEngine(t, store, func(b *Builder) { b.WithConfig(cfg) })

	ctx := context.Background()
	id := registerTestAccount(t, engine, "dave@example.com", "password-123")

	if err := engine.CompleteVerification(ctx, id, testVerificationRequest()); err != nil {
		t.Fatalf("CompleteVerification with gate disabled failed: %v", err)
	}
}

func TestCompleteVerificationInputValidation(t *testing.T) {
	store := newMockStore()
	notifier := newMockNotifier()
	engine := newTestEngine(t, store, func(b *Builder) { b.WithNotifier(notifier) })

	ctx := context.Background()
	id := registerTestAccount(t, engine, "eve@example.com", "password-123")
	verifyTestEmail(t, engine, notifier, "eve@example.com")

	cases := map[string]VerificationRequest{
		"empty national id": {
			Gender:    GenderMale,
			Birthdate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		"zero birthdate": {
			NationalID: "NID-1",
			Gender:     GenderMale,
		},
		"future birthdate": {
			NationalID: "NID-1",
			Gender:     GenderMale,
			Birthdate:  time.Now().UTC().Add(24 * time.Hour),
		},
		"unknown gender": {
			NationalID: "NID-1",
			Gender:     Gender("robot"),
			Birthdate:  time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		"unspecified gender": {
			NationalID: "NID-1",
			Birthdate:  time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for name, req := range cases {
		if err := engine.CompleteVerification(ctx, id, req); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}

	account, err := store.AccountByID(ctx, id)
	if err != nil {
		t.Fatalf("AccountByID failed: %v", err)
	}
	if account.FullyVerified {
		t.Fatal("expected rejected requests to leave the account unverified")
	}
}

func TestCompleteVerificationUnknownAccount(t *testing.T) {
	engine := newTestEngine(t, newMockStore())

	err := engine.CompleteVerification(context.Background(), "missing-id", testVerificationRequest())
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
