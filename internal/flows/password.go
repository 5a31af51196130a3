package flows

import (
	"context"
	"errors"
	"time"
)

type PasswordErrors struct {
	EngineNotReady     error
	InvalidCredentials error
	PasswordReuse      error
	InvalidInput       error
	ResetTokenInvalid  error
	ResetTokenExpired  error
	NotFound           error
	Internal           error
}

type PasswordMetrics struct {
	ChangeSuccess        int
	ChangeInvalidCurrent int
	ChangeReuseRejected  int
	ResetRequest         int
	ResetConfirmSuccess  int
	ResetConfirmFailure  int
	NotificationFailure  int
}

type PasswordEvents struct {
	ChangePassword string
	ForgotPassword string
	ResetPassword  string
}

type PasswordDeps struct {
	ResetTTL time.Duration
	Now      func() time.Time

	AccountByID    func(context.Context, string) (AccountRecord, error)
	AccountByEmail func(context.Context, string) (AccountRecord, error)
	IsNotFound     func(error) bool

	HashPassword   func(string) (string, error)
	VerifyPassword func(plaintext, encodedHash string) bool

	UpdatePasswordHash func(ctx context.Context, accountID, newHash string) error

	// GenerateResetToken mints a fresh single-use secret and its stored
	// digest (hex).
	GenerateResetToken func() (plain string, hashHex string, err error)

	// SetResetToken overwrites any prior unconsumed token, invalidating it.
	SetResetToken func(ctx context.Context, accountID, hashHex string, expiresAt time.Time) error

	// AccountByResetTokenHash looks up the account holding the digest.
	AccountByResetTokenHash func(ctx context.Context, hashHex string) (AccountRecord, error)
	HashTokenForLookup      func(candidate string) (hashHex string)

	// ConsumeResetToken stores the new password hash and clears the token
	// pair as one atomic unit, making the token single-use.
	ConsumeResetToken func(ctx context.Context, accountID, newPasswordHash string) error

	// SendResetLink is best-effort; a failed send is audited but never
	// fails the request.
	SendResetLink func(ctx context.Context, email, plainToken string) error

	MapStoreError func(error) error

	MetricInc func(int)
	EmitAudit AuditEmit

	Metrics PasswordMetrics
	Events  PasswordEvents
	Errors  PasswordErrors
}

// RunChangePassword verifies the current password and stores a new hash.
// Reusing the current password is rejected explicitly rather than
// silently succeeding.
func RunChangePassword(ctx context.Context, accountID, currentPassword, newPassword string, deps PasswordDeps) error {
	if deps.AccountByID == nil || deps.HashPassword == nil || deps.UpdatePasswordHash == nil {
		return deps.Errors.EngineNotReady
	}

	account, err := deps.AccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if deps.IsNotFound(err) {
			deps.EmitAudit(deps.Events.ChangePassword, false, accountID, "", deps.Errors.NotFound, nil)
			return deps.Errors.NotFound
		}
		return deps.Errors.Internal
	}

	if !deps.VerifyPassword(currentPassword, account.PasswordHash) {
		deps.MetricInc(deps.Metrics.ChangeInvalidCurrent)
		deps.EmitAudit(deps.Events.ChangePassword, false, account.ID, account.Email, deps.Errors.InvalidCredentials, nil)
		return deps.Errors.InvalidCredentials
	}

	if newPassword == currentPassword {
		deps.MetricInc(deps.Metrics.ChangeReuseRejected)
		deps.EmitAudit(deps.Events.ChangePassword, false, account.ID, account.Email, deps.Errors.PasswordReuse, nil)
		return deps.Errors.PasswordReuse
	}

	newHash, err := deps.HashPassword(newPassword)
	if err != nil {
		deps.EmitAudit(deps.Events.ChangePassword, false, account.ID, account.Email, deps.Errors.InvalidInput, map[string]string{
			"reason": "password_policy",
		})
		return deps.Errors.InvalidInput
	}

	if err := deps.UpdatePasswordHash(ctx, account.ID, newHash); err != nil {
		mapped := deps.MapStoreError(err)
		deps.EmitAudit(deps.Events.ChangePassword, false, account.ID, account.Email, mapped, nil)
		return mapped
	}

	deps.MetricInc(deps.Metrics.ChangeSuccess)
	deps.EmitAudit(deps.Events.ChangePassword, true, account.ID, account.Email, nil, nil)
	return nil
}

// RunForgotPassword mints and dispatches a reset token. Unknown emails
// are indistinguishable from known ones: the flow burns equivalent work
// and reports success either way, preventing account enumeration.
func RunForgotPassword(ctx context.Context, email string, deps PasswordDeps) error {
	if deps.AccountByEmail == nil || deps.GenerateResetToken == nil || deps.SetResetToken == nil {
		return deps.Errors.EngineNotReady
	}
	if email == "" {
		deps.EmitAudit(deps.Events.ForgotPassword, false, "", "", deps.Errors.InvalidInput, map[string]string{
			"reason": "empty_email",
		})
		return deps.Errors.InvalidInput
	}

	account, err := deps.AccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if !deps.IsNotFound(err) {
			return deps.Errors.Internal
		}
		// Burn the same token generation a real request would perform so
		// timing does not reveal whether the email exists.
		if _, _, genErr := deps.GenerateResetToken(); genErr != nil {
			return deps.Errors.Internal
		}
		deps.MetricInc(deps.Metrics.ResetRequest)
		deps.EmitAudit(deps.Events.ForgotPassword, true, "", email, nil, map[string]string{
			"enumeration_safe": "true",
		})
		return nil
	}

	plain, hashHex, err := deps.GenerateResetToken()
	if err != nil {
		return deps.Errors.Internal
	}

	expiresAt := deps.Now().Add(deps.ResetTTL)
	if err := deps.SetResetToken(ctx, account.ID, hashHex, expiresAt); err != nil {
		mapped := deps.MapStoreError(err)
		deps.EmitAudit(deps.Events.ForgotPassword, false, account.ID, account.Email, mapped, nil)
		return mapped
	}

	if deps.SendResetLink != nil {
		if err := deps.SendResetLink(ctx, account.Email, plain); err != nil {
			deps.MetricInc(deps.Metrics.NotificationFailure)
			deps.EmitAudit(deps.Events.ForgotPassword, true, account.ID, account.Email, nil, map[string]string{
				"notification": "failed",
			})
			deps.MetricInc(deps.Metrics.ResetRequest)
			return nil
		}
	}

	deps.MetricInc(deps.Metrics.ResetRequest)
	deps.EmitAudit(deps.Events.ForgotPassword, true, account.ID, account.Email, nil, nil)
	return nil
}

// RunResetPassword consumes a reset token. Invalid and expired tokens are
// reported with distinct errors; consumption clears the token atomically
// with the password change so a token works exactly once.
func RunResetPassword(ctx context.Context, plainToken, newPassword string, deps PasswordDeps) error {
	if deps.AccountByResetTokenHash == nil || deps.HashTokenForLookup == nil || deps.ConsumeResetToken == nil {
		return deps.Errors.EngineNotReady
	}
	if plainToken == "" {
		deps.MetricInc(deps.Metrics.ResetConfirmFailure)
		return deps.Errors.ResetTokenInvalid
	}

	account, err := deps.AccountByResetTokenHash(ctx, deps.HashTokenForLookup(plainToken))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		deps.MetricInc(deps.Metrics.ResetConfirmFailure)
		if deps.IsNotFound(err) {
			deps.EmitAudit(deps.Events.ResetPassword, false, "", "", deps.Errors.ResetTokenInvalid, nil)
			return deps.Errors.ResetTokenInvalid
		}
		return deps.Errors.Internal
	}

	if !deps.Now().Before(account.ResetTokenExpiresAt) {
		deps.MetricInc(deps.Metrics.ResetConfirmFailure)
		deps.EmitAudit(deps.Events.ResetPassword, false, account.ID, account.Email, deps.Errors.ResetTokenExpired, nil)
		return deps.Errors.ResetTokenExpired
	}

	newHash, err := deps.HashPassword(newPassword)
	if err != nil {
		deps.MetricInc(deps.Metrics.ResetConfirmFailure)
		deps.EmitAudit(deps.Events.ResetPassword, false, account.ID, account.Email, deps.Errors.InvalidInput, map[string]string{
			"reason": "password_policy",
		})
		return deps.Errors.InvalidInput
	}

	if err := deps.ConsumeResetToken(ctx, account.ID, newHash); err != nil {
		mapped := deps.MapStoreError(err)
		deps.MetricInc(deps.Metrics.ResetConfirmFailure)
		deps.EmitAudit(deps.Events.ResetPassword, false, account.ID, account.Email, mapped, nil)
		return mapped
	}

	deps.MetricInc(deps.Metrics.ResetConfirmSuccess)
	deps.EmitAudit(deps.Events.ResetPassword, true, account.ID, account.Email, nil, nil)
	return nil
}
