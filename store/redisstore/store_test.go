package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/rentora/rentauth"
	"github.com/rentora/rentauth/identifier"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, New(client, Config{EnforceUniquePhone: true})
}

func testAccount(id, email string) (*rentauth.Account, *rentauth.Profile) {
	now := time.Now().UTC()
	return &rentauth.Account{
			ID:           id,
			Email:        email,
			PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaA",
			Role:         rentauth.RoleTenant,
			CreatedAt:    now,
			UpdatedAt:    now,
		}, &rentauth.Profile{
			AccountID: id,
			FirstName: "Test",
			LastName:  "Account",
		}
}

func TestCreateAndLookup(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	account, profile := testAccount("u1", "alice@example.com")
	profile.Phone = "0612345678"
	if err := store.CreateAccount(ctx, account, profile); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	byID, err := store.AccountByID(ctx, "u1")
	if err != nil {
		t.Fatalf("AccountByID failed: %v", err)
	}
	if byID.Email != "alice@example.com" {
		t.Fatalf("unexpected account: %+v", byID)
	}

	// Email lookup is case-insensitive.
	byEmail, err := store.AccountByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("AccountByEmail failed: %v", err)
	}
	if byEmail.ID != "u1" {
		t.Fatalf("expected u1, got %s", byEmail.ID)
	}

	gotProfile, err := store.ProfileByAccountID(ctx, "u1")
	if err != nil {
		t.Fatalf("ProfileByAccountID failed: %v", err)
	}
	if gotProfile.Phone != "0612345678" {
		t.Fatalf("unexpected profile: %+v", gotProfile)
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	a1, p1 := testAccount("u1", "bob@example.com")
	if err := store.CreateAccount(ctx, a1, p1); err != nil {
		t.Fatalf("first CreateAccount failed: %v", err)
	}

	a2, p2 := testAccount("u2", "BOB@example.com")
	if err := store.CreateAccount(ctx, a2, p2); !errors.Is(err, rentauth.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestCreateDuplicatePhone(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	a1, p1 := testAccount("u1", "carol@example.com")
	p1.Phone = "0612345678"
	if err := store.CreateAccount(ctx, a1, p1); err != nil {
		t.Fatalf("first CreateAccount failed: %v", err)
	}

	a2, p2 := testAccount("u2", "dave@example.com")
	p2.Phone = "0612345678"
	if err := store.CreateAccount(ctx, a2, p2); !errors.Is(err, rentauth.ErrPhoneExists) {
		t.Fatalf("expected ErrPhoneExists, got %v", err)
	}
}

func TestAccountByIdentifierPhoneForms(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	a1, p1 := testAccount("u1", "eve@example.com")
	p1.Phone = "0612345678"
	if err := store.CreateAccount(ctx, a1, p1); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	a2, p2 := testAccount("u2", "frank@example.com")
	p2.Phone = "+31698765432"
	if err := store.CreateAccount(ctx, a2, p2); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	cases := map[string]string{
		"0612345678":   "u1",
		"+31612345678": "u1", // international dialed, local stored
		"+31698765432": "u2",
		"0698765432":   "u2", // local dialed, international stored
	}
	for dial, want := range cases {
		account, err := store.AccountByIdentifier(ctx, identifier.Parse(dial))
		if err != nil {
			t.Fatalf("AccountByIdentifier(%q) failed: %v", dial, err)
		}
		if account.ID != want {
			t.Fatalf("AccountByIdentifier(%q) = %s, want %s", dial, account.ID, want)
		}
	}

	if _, err := store.AccountByIdentifier(ctx, identifier.Parse("0600000000")); !errors.Is(err, rentauth.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestResetTokenLifecycle(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	account, profile := testAccount("u1", "grace@example.com")
	if err := store.CreateAccount(ctx, account, profile); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	expiresAt := time.Now().UTC().Add(time.Hour)
	if err := store.SetResetToken(ctx, "u1", "hash-one", expiresAt); err != nil {
		t.Fatalf("SetResetToken failed: %v", err)
	}

	found, err := store.AccountByResetTokenHash(ctx, "hash-one")
	if err != nil {
		t.Fatalf("AccountByResetTokenHash failed: %v", err)
	}
	if found.ID != "u1" || found.ResetTokenHash != "hash-one" {
		t.Fatalf("unexpected account: %+v", found)
	}

	// A second token replaces the first; the old index entry is gone.
	if err := store.SetResetToken(ctx, "u1", "hash-two", expiresAt); err != nil {
		t.Fatalf("second SetResetToken failed: %v", err)
	}
	if _, err := store.AccountByResetTokenHash(ctx, "hash-one"); !errors.Is(err, rentauth.ErrAccountNotFound) {
		t.Fatalf("expected replaced hash to miss, got %v", err)
	}

	if err := store.ConsumeResetToken(ctx, "u1", "new-password-hash"); err != nil {
		t.Fatalf("ConsumeResetToken failed: %v", err)
	}
	if _, err := store.AccountByResetTokenHash(ctx, "hash-two"); !errors.Is(err, rentauth.ErrAccountNotFound) {
		t.Fatalf("expected consumed hash to miss, got %v", err)
	}

	account, err = store.AccountByID(ctx, "u1")
	if err != nil {
		t.Fatalf("AccountByID failed: %v", err)
	}
	if account.PasswordHash != "new-password-hash" {
		t.Fatal("expected password hash to be replaced atomically with consumption")
	}
	if account.ResetTokenHash != "" || !account.ResetTokenExpiresAt.IsZero() {
		t.Fatal("expected reset token pair to be cleared")
	}
}

func TestTokenLookupAfterExpiry(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	account, profile := testAccount("u1", "judy@example.com")
	if err := store.CreateAccount(ctx, account, profile); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	expiresAt := time.Now().UTC().Add(time.Hour)
	if err := store.SetResetToken(ctx, "u1", "reset-hash", expiresAt); err != nil {
		t.Fatalf("SetResetToken failed: %v", err)
	}
	if err := store.SetVerificationToken(ctx, "u1", "verify-hash", expiresAt); err != nil {
		t.Fatalf("SetVerificationToken failed: %v", err)
	}

	mr.FastForward(2 * time.Hour)

	// An expired token must still resolve so the caller sees the stored
	// expiry and can report the token as expired, not unknown.
	byReset, err := store.AccountByResetTokenHash(ctx, "reset-hash")
	if err != nil {
		t.Fatalf("AccountByResetTokenHash after expiry failed: %v", err)
	}
	if byReset.ResetTokenHash != "reset-hash" || !byReset.ResetTokenExpiresAt.Equal(expiresAt) {
		t.Fatalf("unexpected account: %+v", byReset)
	}

	byVerify, err := store.AccountByVerificationTokenHash(ctx, "verify-hash")
	if err != nil {
		t.Fatalf("AccountByVerificationTokenHash after expiry failed: %v", err)
	}
	if byVerify.VerificationTokenHash != "verify-hash" {
		t.Fatalf("unexpected account: %+v", byVerify)
	}

	// Consumption still clears the index.
	if err := store.ConsumeResetToken(ctx, "u1", "new-password-hash"); err != nil {
		t.Fatalf("ConsumeResetToken failed: %v", err)
	}
	if _, err := store.AccountByResetTokenHash(ctx, "reset-hash"); !errors.Is(err, rentauth.ErrAccountNotFound) {
		t.Fatalf("expected consumed hash to miss, got %v", err)
	}
}

func TestMarkEmailVerified(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	account, profile := testAccount("u1", "heidi@example.com")
	if err := store.CreateAccount(ctx, account, profile); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	expiresAt := time.Now().UTC().Add(24 * time.Hour)
	if err := store.SetVerificationToken(ctx, "u1", "verify-hash", expiresAt); err != nil {
		t.Fatalf("SetVerificationToken failed: %v", err)
	}
	if err := store.MarkEmailVerified(ctx, "u1"); err != nil {
		t.Fatalf("MarkEmailVerified failed: %v", err)
	}

	got, err := store.AccountByID(ctx, "u1")
	if err != nil {
		t.Fatalf("AccountByID failed: %v", err)
	}
	if !got.EmailVerified || got.VerificationTokenHash != "" {
		t.Fatalf("expected verified account with cleared token, got %+v", got)
	}
	if _, err := store.AccountByVerificationTokenHash(ctx, "verify-hash"); !errors.Is(err, rentauth.ErrAccountNotFound) {
		t.Fatalf("expected cleared token index, got %v", err)
	}
}

func TestCompleteVerification(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	account, profile := testAccount("u1", "ivan@example.com")
	if err := store.CreateAccount(ctx, account, profile); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	record := rentauth.VerificationRecord{
		NationalIDSealed: "aa:bb:cc",
		Gender:           rentauth.GenderMale,
		Birthdate:        time.Date(1985, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.CompleteVerification(ctx, "u1", record); err != nil {
		t.Fatalf("CompleteVerification failed: %v", err)
	}

	got, err := store.AccountByID(ctx, "u1")
	if err != nil {
		t.Fatalf("AccountByID failed: %v", err)
	}
	if !got.FullyVerified {
		t.Fatal("expected fully verified flag")
	}
	gotProfile, err := store.ProfileByAccountID(ctx, "u1")
	if err != nil {
		t.Fatalf("ProfileByAccountID failed: %v", err)
	}
	if gotProfile.NationalIDSealed != "aa:bb:cc" || gotProfile.Gender != rentauth.GenderMale {
		t.Fatalf("unexpected profile: %+v", gotProfile)
	}
}

func TestUpdateProfilePhoneIndex(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	a1, p1 := testAccount("u1", "judy@example.com")
	p1.Phone = "0611111111"
	if err := store.CreateAccount(ctx, a1, p1); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	a2, p2 := testAccount("u2", "karl@example.com")
	p2.Phone = "0622222222"
	if err := store.CreateAccount(ctx, a2, p2); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	// Taking another account's number is a conflict.
	taken := "0622222222"
	if _, err := store.UpdateProfile(ctx, "u1", rentauth.ProfileUpdate{Phone: &taken}); !errors.Is(err, rentauth.ErrPhoneExists) {
		t.Fatalf("expected ErrPhoneExists, got %v", err)
	}

	fresh := "0633333333"
	updated, err := store.UpdateProfile(ctx, "u1", rentauth.ProfileUpdate{Phone: &fresh})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.Phone != fresh {
		t.Fatalf("expected phone update, got %q", updated.Phone)
	}

	// The index follows the move: the old number no longer resolves.
	if _, err := store.AccountByIdentifier(ctx, identifier.Parse("0611111111")); !errors.Is(err, rentauth.ErrAccountNotFound) {
		t.Fatalf("expected old number to miss, got %v", err)
	}
	found, err := store.AccountByIdentifier(ctx, identifier.Parse(fresh))
	if err != nil || found.ID != "u1" {
		t.Fatalf("expected new number to resolve to u1, got %v %v", found, err)
	}
}

func TestSoftDeletedAccountInvisible(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	account, profile := testAccount("u1", "leo@example.com")
	account.DeletedAt = time.Now().UTC()
	if err := store.CreateAccount(ctx, account, profile); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if _, err := store.AccountByID(ctx, "u1"); !errors.Is(err, rentauth.ErrAccountNotFound) {
		t.Fatalf("expected soft-deleted account to be invisible, got %v", err)
	}
	if _, err := store.AccountByEmail(ctx, "leo@example.com"); !errors.Is(err, rentauth.ErrAccountNotFound) {
		t.Fatalf("expected soft-deleted account to be invisible by email, got %v", err)
	}
	if err := store.UpdatePasswordHash(ctx, "u1", "x"); !errors.Is(err, rentauth.ErrAccountNotFound) {
		t.Fatalf("expected update on soft-deleted account to miss, got %v", err)
	}
}

func TestLookupMisses(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.AccountByID(ctx, "missing"); !errors.Is(err, rentauth.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := store.AccountByResetTokenHash(ctx, "missing"); !errors.Is(err, rentauth.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if err := store.UpdatePasswordHash(ctx, "missing", "x"); !errors.Is(err, rentauth.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
