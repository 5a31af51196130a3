package rentauth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rentora/rentauth/identifier"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.AccessSecret = []byte("test-access-secret-test-access-secret")
	cfg.JWT.RefreshSecret = []byte("test-refresh-secret-test-refresh-secret")
	cfg.Cipher.Key = []byte("0123456789abcdef0123456789abcdef")
	// Cheap argon2 parameters keep the suite fast.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Audit.Enabled = false
	return cfg
}

func newTestEngine(t *testing.T, store AccountStore, opts ...func(*Builder)) *Engine {
	t.Helper()

	b := New().WithConfig(testConfig()).WithStore(store)
	for _, opt := range opts {
		opt(b)
	}
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

// mockAccountStore is an in-memory AccountStore honoring the interface
// contract: store-level uniqueness, soft-delete exclusion, atomic
// multi-field updates.
type mockAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*Account
	profiles map[string]*Profile

	enforceUniquePhone bool

	failCreate error
}

func newMockStore() *mockAccountStore {
	return &mockAccountStore{
		accounts:           map[string]*Account{},
		profiles:           map[string]*Profile{},
		enforceUniquePhone: true,
	}
}

func (s *mockAccountStore) CreateAccount(_ context.Context, account *Account, profile *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failCreate != nil {
		return s.failCreate
	}
	for _, existing := range s.accounts {
		if existing.Deleted() {
			continue
		}
		if strings.EqualFold(existing.Email, account.Email) {
			return ErrEmailExists
		}
	}
	if s.enforceUniquePhone && profile.Phone != "" {
		for _, existing := range s.profiles {
			if existing.Phone == profile.Phone {
				return ErrPhoneExists
			}
		}
	}

	a := *account
	p := *profile
	s.accounts[a.ID] = &a
	s.profiles[p.AccountID] = &p
	return nil
}

func (s *mockAccountStore) AccountByID(_ context.Context, id string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(func(a *Account) bool { return a.ID == id })
}

func (s *mockAccountStore) AccountByEmail(_ context.Context, email string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(func(a *Account) bool { return strings.EqualFold(a.Email, email) })
}

func (s *mockAccountStore) AccountByIdentifier(_ context.Context, q identifier.Query) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.Kind == identifier.KindEmail {
		return s.lookup(func(a *Account) bool { return strings.EqualFold(a.Email, q.Email) })
	}
	return s.lookup(func(a *Account) bool {
		p, ok := s.profiles[a.ID]
		if !ok || p.Phone == "" {
			return false
		}
		return identifier.MatchesPhone(p.Phone, q)
	})
}

func (s *mockAccountStore) AccountByResetTokenHash(_ context.Context, hashHex string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(func(a *Account) bool { return a.ResetTokenHash != "" && a.ResetTokenHash == hashHex })
}

func (s *mockAccountStore) AccountByVerificationTokenHash(_ context.Context, hashHex string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(func(a *Account) bool {
		return a.VerificationTokenHash != "" && a.VerificationTokenHash == hashHex
	})
}

func (s *mockAccountStore) lookup(match func(*Account) bool) (*Account, error) {
	for _, a := range s.accounts {
		if a.Deleted() {
			continue
		}
		if match(a) {
			copied := *a
			return &copied, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (s *mockAccountStore) UpdatePasswordHash(_ context.Context, id, newHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok || a.Deleted() {
		return ErrAccountNotFound
	}
	a.PasswordHash = newHash
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *mockAccountStore) SetResetToken(_ context.Context, id, hashHex string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok || a.Deleted() {
		return ErrAccountNotFound
	}
	a.ResetTokenHash = hashHex
	a.ResetTokenExpiresAt = expiresAt
	return nil
}

func (s *mockAccountStore) ConsumeResetToken(_ context.Context, id, newPasswordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok || a.Deleted() {
		return ErrAccountNotFound
	}
	a.PasswordHash = newPasswordHash
	a.ResetTokenHash = ""
	a.ResetTokenExpiresAt = time.Time{}
	return nil
}

func (s *mockAccountStore) SetVerificationToken(_ context.Context, id, hashHex string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok || a.Deleted() {
		return ErrAccountNotFound
	}
	a.VerificationTokenHash = hashHex
	a.VerificationTokenExpiresAt = expiresAt
	return nil
}

func (s *mockAccountStore) MarkEmailVerified(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok || a.Deleted() {
		return ErrAccountNotFound
	}
	a.EmailVerified = true
	a.VerificationTokenHash = ""
	a.VerificationTokenExpiresAt = time.Time{}
	return nil
}

func (s *mockAccountStore) CompleteVerification(_ context.Context, id string, record VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok || a.Deleted() {
		return ErrAccountNotFound
	}
	p, ok := s.profiles[id]
	if !ok {
		return ErrProfileNotFound
	}
	p.NationalIDSealed = record.NationalIDSealed
	p.Gender = record.Gender
	p.Birthdate = record.Birthdate
	a.FullyVerified = true
	return nil
}

func (s *mockAccountStore) ProfileByAccountID(_ context.Context, id string) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok || a.Deleted() {
		return nil, ErrAccountNotFound
	}
	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *mockAccountStore) UpdateProfile(_ context.Context, id string, update ProfileUpdate) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok || a.Deleted() {
		return nil, ErrAccountNotFound
	}
	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	if update.FirstName != nil {
		p.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		p.LastName = *update.LastName
	}
	if update.Phone != nil {
		p.Phone = *update.Phone
	}
	if update.Bio != nil {
		p.Bio = *update.Bio
	}
	if update.AvatarURL != nil {
		p.AvatarURL = *update.AvatarURL
	}
	if update.BudgetMin != nil {
		p.BudgetMin = update.BudgetMin
	}
	if update.BudgetMax != nil {
		p.BudgetMax = update.BudgetMax
	}
	copied := *p
	return &copied, nil
}

// mockNotifier records every send and can be told to fail.
type mockNotifier struct {
	mu sync.Mutex

	verificationTokens map[string]string
	resetTokens        map[string]string
	welcomes           []string
	welcomeNames       map[string]string

	failSends bool
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{
		verificationTokens: map[string]string{},
		resetTokens:        map[string]string{},
		welcomeNames:       map[string]string{},
	}
}

func (n *mockNotifier) SendVerificationLink(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failSends {
		return ErrInternal
	}
	n.verificationTokens[strings.ToLower(email)] = token
	return nil
}

func (n *mockNotifier) SendPasswordResetLink(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failSends {
		return ErrInternal
	}
	n.resetTokens[strings.ToLower(email)] = token
	return nil
}

func (n *mockNotifier) SendWelcome(_ context.Context, email, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failSends {
		return ErrInternal
	}
	n.welcomes = append(n.welcomes, strings.ToLower(email))
	n.welcomeNames[strings.ToLower(email)] = name
	return nil
}

func (n *mockNotifier) resetToken(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.resetTokens[strings.ToLower(email)]
}

func (n *mockNotifier) verificationToken(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.verificationTokens[strings.ToLower(email)]
}

// mockProvider returns a canned profile per access token.
type mockProvider struct {
	profiles map[string]*ProviderProfile
	err      error
	delay    time.Duration
}

func (p *mockProvider) FetchProfile(ctx context.Context, accessToken string) (*ProviderProfile, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	profile, ok := p.profiles[accessToken]
	if !ok {
		return nil, ErrProviderToken
	}
	copied := *profile
	return &copied, nil
}

func registerTestAccount(t *testing.T, engine *Engine, email, pass string) string {
	t.Helper()

	result, err := engine.Register(context.Background(), RegisterRequest{
		Email:     email,
		Password:  pass,
		FirstName: "Test",
		LastName:  "Account",
	})
	if err != nil {
		t.Fatalf("Register %s failed: %v", email, err)
	}
	return result.AccountID
}

func verifyTestEmail(t *testing.T, engine *Engine, notifier *mockNotifier, email string) {
	t.Helper()

	if err := engine.VerifyEmail(context.Background(), notifier.verificationToken(email)); err != nil {
		t.Fatalf("VerifyEmail %s failed: %v", email, err)
	}
}
