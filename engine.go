package rentauth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rentora/rentauth/identifier"
	internalaudit "github.com/rentora/rentauth/internal/audit"
	"github.com/rentora/rentauth/internal/flows"
	internalmetrics "github.com/rentora/rentauth/internal/metrics"
	"github.com/rentora/rentauth/internal/tokens"
	"github.com/rentora/rentauth/jwt"
	"github.com/rentora/rentauth/password"
	"github.com/rentora/rentauth/seal"
)

// Engine defines a public type used by rentauth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config Config

	store    AccountStore
	notifier NotificationSender
	provider IdentityProvider

	passwordHash *password.Hasher
	jwtManager   *jwt.Manager
	cipher       *seal.Cipher

	audit   *internalaudit.Dispatcher
	metrics *Metrics

	burnHash string
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id int) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(internalmetrics.MetricID(id))
}

// -------- store error mapping --------

// mapStoreError passes the store contract's sentinel errors through and
// collapses everything else to ErrInternal so store internals never leak
// to callers.
func (e *Engine) mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, ErrEmailExists):
		return ErrEmailExists
	case errors.Is(err, ErrPhoneExists):
		return ErrPhoneExists
	case errors.Is(err, ErrAccountNotFound):
		return ErrAccountNotFound
	case errors.Is(err, ErrProfileNotFound):
		return ErrProfileNotFound
	default:
		return ErrInternal
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrProfileNotFound)
}

// -------- flow boundary conversion --------

func accountRecord(a *Account) flows.AccountRecord {
	return flows.AccountRecord{
		ID:                         a.ID,
		Email:                      a.Email,
		PasswordHash:               a.PasswordHash,
		Role:                       string(a.Role),
		EmailVerified:              a.EmailVerified,
		FullyVerified:              a.FullyVerified,
		ResetTokenExpiresAt:        a.ResetTokenExpiresAt,
		VerificationTokenExpiresAt: a.VerificationTokenExpiresAt,
	}
}

func profileRecord(p *Profile) flows.ProfileRecord {
	return flows.ProfileRecord{
		AccountID:        p.AccountID,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Phone:            p.Phone,
		Bio:              p.Bio,
		AvatarURL:        p.AvatarURL,
		BudgetMin:        p.BudgetMin,
		BudgetMax:        p.BudgetMax,
		Score:            p.Score,
		NationalIDSet:    p.NationalIDSealed != "",
		NationalIDSealed: p.NationalIDSealed,
		Gender:           string(p.Gender),
		Birthdate:        p.Birthdate,
	}
}

func (e *Engine) accountByID(ctx context.Context, id string) (flows.AccountRecord, error) {
	account, err := e.store.AccountByID(ctx, id)
	if err != nil {
		return flows.AccountRecord{}, err
	}
	return accountRecord(account), nil
}

func (e *Engine) accountByEmail(ctx context.Context, email string) (flows.AccountRecord, error) {
	account, err := e.store.AccountByEmail(ctx, email)
	if err != nil {
		return flows.AccountRecord{}, err
	}
	return accountRecord(account), nil
}

func (e *Engine) profileByAccountID(ctx context.Context, id string) (flows.ProfileRecord, error) {
	profile, err := e.store.ProfileByAccountID(ctx, id)
	if err != nil {
		return flows.ProfileRecord{}, err
	}
	return profileRecord(profile), nil
}

// resolveAccount runs the parsed identifier query against the store.
func (e *Engine) resolveAccount(ctx context.Context, raw string) (flows.AccountRecord, error) {
	q := identifier.Parse(raw)
	var (
		account *Account
		err     error
	)
	if q.Kind == identifier.KindEmail {
		account, err = e.store.AccountByEmail(ctx, q.Email)
	} else {
		account, err = e.store.AccountByIdentifier(ctx, q)
	}
	if err != nil {
		return flows.AccountRecord{}, err
	}
	return accountRecord(account), nil
}

// createAccount persists a registration record through the store's atomic
// account+profile create.
func (e *Engine) createAccount(ctx context.Context, record flows.RegisterRecord) error {
	now := record.CreatedAt
	account := &Account{
		ID:            record.AccountID,
		Email:         record.Email,
		PasswordHash:  record.PasswordHash,
		Role:          Role(record.Role),
		EmailVerified: record.EmailVerified,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	profile := &Profile{
		AccountID: record.AccountID,
		FirstName: record.FirstName,
		LastName:  record.LastName,
		Phone:     record.Phone,
		AvatarURL: record.AvatarURL,
	}
	return e.store.CreateAccount(ctx, account, profile)
}

// -------- credential helpers --------

func (e *Engine) issuePair(accountID, email, role string) (string, string, error) {
	return e.jwtManager.CreatePair(accountID, email, role)
}

// parseAccess maps jwt failures onto the engine's token errors and
// returns the subject account id.
func (e *Engine) parseAccess(token string) (string, error) {
	claims, err := e.jwtManager.ParseAccess(token)
	if err != nil {
		return "", mapJWTError(err)
	}
	return claims.AccountID(), nil
}

func (e *Engine) parseRefresh(token string) (string, error) {
	claims, err := e.jwtManager.ParseRefresh(token)
	if err != nil {
		return "", mapJWTError(err)
	}
	return claims.AccountID(), nil
}

func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return ErrTokenInvalid
}

// generateToken mints a single-use secret and its stored digest.
func generateToken() (string, string, error) {
	plain, hash, err := tokens.Generate()
	if err != nil {
		return "", "", err
	}
	return plain, tokens.EncodeHash(hash), nil
}

func hashTokenForLookup(candidate string) string {
	return tokens.EncodeHash(tokens.HashForLookup(candidate))
}

func (e *Engine) burnPasswordCheck(plaintext string) {
	e.passwordHash.Verify(plaintext, e.burnHash)
}

func newAccountID() string {
	return uuid.NewString()
}

func now() time.Time {
	return time.Now().UTC()
}

// -------- default notifier --------

// noopNotifier stands in when no NotificationSender is configured. Sends
// silently succeed; operations behave as if delivery worked.
type noopNotifier struct{}

func (noopNotifier) SendVerificationLink(context.Context, string, string) error { return nil }
func (noopNotifier) SendPasswordResetLink(context.Context, string, string) error {
	return nil
}
func (noopNotifier) SendWelcome(context.Context, string, string) error { return nil }
