package flows

import (
	"context"
	"errors"
	"time"
)

type EmailVerificationErrors struct {
	EngineNotReady error
	TokenInvalid   error
	TokenExpired   error
	NotFound       error
	Internal       error
}

type EmailVerificationMetrics struct {
	Request             int
	Success             int
	Failure             int
	NotificationFailure int
}

type EmailVerificationEvents struct {
	Request string
	Confirm string
}

type EmailVerificationDeps struct {
	VerificationTTL time.Duration
	Now             func() time.Time

	AccountByID func(context.Context, string) (AccountRecord, error)
	IsNotFound  func(error) bool

	GenerateToken func() (plain string, hashHex string, err error)

	// SetVerificationToken overwrites any earlier unconsumed token.
	SetVerificationToken func(ctx context.Context, accountID, hashHex string, expiresAt time.Time) error

	AccountByVerificationTokenHash func(ctx context.Context, hashHex string) (AccountRecord, error)
	HashTokenForLookup             func(candidate string) (hashHex string)

	// MarkEmailVerified flips the flag and clears the token pair as one
	// atomic unit.
	MarkEmailVerified func(ctx context.Context, accountID string) error

	// SendVerificationLink is best-effort.
	SendVerificationLink func(ctx context.Context, email, plainToken string) error

	MapStoreError func(error) error

	MetricInc func(int)
	EmitAudit AuditEmit

	Metrics EmailVerificationMetrics
	Events  EmailVerificationEvents
	Errors  EmailVerificationErrors
}

// RunSendVerificationEmail mints a 24-hour verification token and
// dispatches it. An already-verified account short-circuits with success
// instead of minting a redundant token.
func RunSendVerificationEmail(ctx context.Context, accountID string, deps EmailVerificationDeps) error {
	if deps.AccountByID == nil || deps.GenerateToken == nil || deps.SetVerificationToken == nil {
		return deps.Errors.EngineNotReady
	}

	account, err := deps.AccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if deps.IsNotFound(err) {
			deps.EmitAudit(deps.Events.Request, false, accountID, "", deps.Errors.NotFound, nil)
			return deps.Errors.NotFound
		}
		return deps.Errors.Internal
	}

	if account.EmailVerified {
		deps.EmitAudit(deps.Events.Request, true, account.ID, account.Email, nil, map[string]string{
			"noop": "already_verified",
		})
		return nil
	}

	plain, hashHex, err := deps.GenerateToken()
	if err != nil {
		return deps.Errors.Internal
	}

	expiresAt := deps.Now().Add(deps.VerificationTTL)
	if err := deps.SetVerificationToken(ctx, account.ID, hashHex, expiresAt); err != nil {
		mapped := deps.MapStoreError(err)
		deps.EmitAudit(deps.Events.Request, false, account.ID, account.Email, mapped, nil)
		return mapped
	}

	if deps.SendVerificationLink != nil {
		if err := deps.SendVerificationLink(ctx, account.Email, plain); err != nil {
			deps.MetricInc(deps.Metrics.NotificationFailure)
			deps.EmitAudit(deps.Events.Request, true, account.ID, account.Email, nil, map[string]string{
				"notification": "failed",
			})
			deps.MetricInc(deps.Metrics.Request)
			return nil
		}
	}

	deps.MetricInc(deps.Metrics.Request)
	deps.EmitAudit(deps.Events.Request, true, account.ID, account.Email, nil, nil)
	return nil
}

// RunVerifyEmail consumes a verification token, marking the mailbox
// confirmed. Invalid and expired tokens report distinct errors.
func RunVerifyEmail(ctx context.Context, plainToken string, deps EmailVerificationDeps) error {
	if deps.AccountByVerificationTokenHash == nil || deps.HashTokenForLookup == nil || deps.MarkEmailVerified == nil {
		return deps.Errors.EngineNotReady
	}
	if plainToken == "" {
		deps.MetricInc(deps.Metrics.Failure)
		return deps.Errors.TokenInvalid
	}

	account, err := deps.AccountByVerificationTokenHash(ctx, deps.HashTokenForLookup(plainToken))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		deps.MetricInc(deps.Metrics.Failure)
		if deps.IsNotFound(err) {
			deps.EmitAudit(deps.Events.Confirm, false, "", "", deps.Errors.TokenInvalid, nil)
			return deps.Errors.TokenInvalid
		}
		return deps.Errors.Internal
	}

	if !deps.Now().Before(account.VerificationTokenExpiresAt) {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(deps.Events.Confirm, false, account.ID, account.Email, deps.Errors.TokenExpired, nil)
		return deps.Errors.TokenExpired
	}

	if err := deps.MarkEmailVerified(ctx, account.ID); err != nil {
		mapped := deps.MapStoreError(err)
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(deps.Events.Confirm, false, account.ID, account.Email, mapped, nil)
		return mapped
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(deps.Events.Confirm, true, account.ID, account.Email, nil, nil)
	return nil
}
