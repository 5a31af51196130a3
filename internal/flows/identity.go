package flows

import (
	"context"
	"errors"
	"time"
)

// IdentityInput carries the three verification-only profile fields. They
// are written exactly once; the transition to fully verified is terminal.
type IdentityInput struct {
	NationalID string
	Gender     string
	Birthdate  time.Time
}

// IdentityRecord is handed to the store with the national ID already
// encrypted; plaintext never reaches the persistence layer.
type IdentityRecord struct {
	NationalIDSealed string
	Gender           string
	Birthdate        time.Time
}

type IdentityErrors struct {
	EngineNotReady   error
	NotFound         error
	AlreadyVerified  error
	EmailNotVerified error
	InvalidInput     error
	Internal         error
}

type IdentityMetrics struct {
	Success             int
	Rejected            int
	NotificationFailure int
}

type IdentityEvents struct {
	CompleteVerification string
}

type IdentityDeps struct {
	RequireEmailVerified bool
	AllowedGenders       []string
	Now                  func() time.Time

	AccountByID func(context.Context, string) (AccountRecord, error)
	IsNotFound  func(error) bool

	EncryptNationalID func(plaintext string) (string, error)

	// CompleteVerification persists the three fields and flips the
	// fully-verified flag as one atomic unit.
	CompleteVerification func(ctx context.Context, accountID string, record IdentityRecord) error

	// SendWelcome fires after the commit; its failure never rolls the
	// transition back.
	SendWelcome func(ctx context.Context, email string)

	MapStoreError func(error) error

	MetricInc func(int)
	EmitAudit AuditEmit

	Metrics IdentityMetrics
	Events  IdentityEvents
	Errors  IdentityErrors
}

// RunCompleteVerification performs the Registered/EmailVerified →
// FullyVerified transition. A second call on a verified account fails
// explicitly so clients cannot assume a retry was harmless.
func RunCompleteVerification(ctx context.Context, accountID string, input IdentityInput, deps IdentityDeps) error {
	if deps.AccountByID == nil || deps.EncryptNationalID == nil || deps.CompleteVerification == nil {
		return deps.Errors.EngineNotReady
	}

	account, err := deps.AccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if deps.IsNotFound(err) {
			deps.EmitAudit(deps.Events.CompleteVerification, false, accountID, "", deps.Errors.NotFound, nil)
			return deps.Errors.NotFound
		}
		return deps.Errors.Internal
	}

	if account.FullyVerified {
		deps.MetricInc(deps.Metrics.Rejected)
		deps.EmitAudit(deps.Events.CompleteVerification, false, account.ID, account.Email, deps.Errors.AlreadyVerified, nil)
		return deps.Errors.AlreadyVerified
	}

	if deps.RequireEmailVerified && !account.EmailVerified {
		deps.MetricInc(deps.Metrics.Rejected)
		deps.EmitAudit(deps.Events.CompleteVerification, false, account.ID, account.Email, deps.Errors.EmailNotVerified, nil)
		return deps.Errors.EmailNotVerified
	}

	if err := validateIdentityInput(input, deps); err != nil {
		deps.MetricInc(deps.Metrics.Rejected)
		deps.EmitAudit(deps.Events.CompleteVerification, false, account.ID, account.Email, err, nil)
		return err
	}

	sealed, err := deps.EncryptNationalID(input.NationalID)
	if err != nil {
		deps.EmitAudit(deps.Events.CompleteVerification, false, account.ID, account.Email, deps.Errors.Internal, nil)
		return deps.Errors.Internal
	}

	record := IdentityRecord{
		NationalIDSealed: sealed,
		Gender:           input.Gender,
		Birthdate:        input.Birthdate,
	}
	if err := deps.CompleteVerification(ctx, account.ID, record); err != nil {
		mapped := deps.MapStoreError(err)
		deps.EmitAudit(deps.Events.CompleteVerification, false, account.ID, account.Email, mapped, nil)
		return mapped
	}

	if deps.SendWelcome != nil {
		deps.SendWelcome(ctx, account.Email)
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(deps.Events.CompleteVerification, true, account.ID, account.Email, nil, nil)
	return nil
}

func validateIdentityInput(input IdentityInput, deps IdentityDeps) error {
	if input.NationalID == "" {
		return deps.Errors.InvalidInput
	}
	if input.Birthdate.IsZero() || !input.Birthdate.Before(deps.Now()) {
		return deps.Errors.InvalidInput
	}
	for _, g := range deps.AllowedGenders {
		if input.Gender == g {
			return nil
		}
	}
	return deps.Errors.InvalidInput
}
