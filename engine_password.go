package rentauth

import (
	"context"

	"github.com/rentora/rentauth/internal/flows"
	internalmetrics "github.com/rentora/rentauth/internal/metrics"
)

func (e *Engine) passwordDeps() flows.PasswordDeps {
	return flows.PasswordDeps{
		ResetTTL: e.config.Tokens.ResetTTL,
		Now:      now,

		AccountByID:    e.accountByID,
		AccountByEmail: e.accountByEmail,
		IsNotFound:     isNotFound,

		HashPassword:   e.passwordHash.Hash,
		VerifyPassword: e.passwordHash.Verify,

		UpdatePasswordHash: e.store.UpdatePasswordHash,

		GenerateResetToken: generateToken,
		SetResetToken:      e.store.SetResetToken,
		AccountByResetTokenHash: func(ctx context.Context, hashHex string) (flows.AccountRecord, error) {
			account, err := e.store.AccountByResetTokenHash(ctx, hashHex)
			if err != nil {
				return flows.AccountRecord{}, err
			}
			return accountRecord(account), nil
		},
		HashTokenForLookup: hashTokenForLookup,
		ConsumeResetToken:  e.store.ConsumeResetToken,

		SendResetLink: e.notifier.SendPasswordResetLink,

		MapStoreError: e.mapStoreError,

		MetricInc: e.metricInc,
		EmitAudit: e.emitAudit,

		Metrics: flows.PasswordMetrics{
			ChangeSuccess:        int(internalmetrics.MetricPasswordChangeSuccess),
			ChangeInvalidCurrent: int(internalmetrics.MetricPasswordChangeInvalidCurrent),
			ChangeReuseRejected:  int(internalmetrics.MetricPasswordChangeReuseRejected),
			ResetRequest:         int(internalmetrics.MetricPasswordResetRequest),
			ResetConfirmSuccess:  int(internalmetrics.MetricPasswordResetConfirmSuccess),
			ResetConfirmFailure:  int(internalmetrics.MetricPasswordResetConfirmFailure),
			NotificationFailure:  int(internalmetrics.MetricNotificationFailure),
		},
		Events: flows.PasswordEvents{
			ChangePassword: auditEventPasswordChange,
			ForgotPassword: auditEventPasswordResetRequest,
			ResetPassword:  auditEventPasswordResetConfirm,
		},
		Errors: flows.PasswordErrors{
			EngineNotReady:     ErrEngineNotReady,
			InvalidCredentials: ErrInvalidCredentials,
			PasswordReuse:      ErrPasswordReuse,
			InvalidInput:       ErrInvalidInput,
			ResetTokenInvalid:  ErrResetTokenInvalid,
			ResetTokenExpired:  ErrResetTokenExpired,
			NotFound:           ErrAccountNotFound,
			Internal:           ErrInternal,
		},
	}
}

// ChangePassword describes the changepassword operation and its observable behavior.
//
// ChangePassword verifies the current password for an authenticated
// account and replaces it. Supplying the current password as the new one
// is rejected with ErrPasswordReuse rather than silently succeeding.
// ChangePassword may return an error when input validation, dependency calls, or security checks fail.
// ChangePassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	if e == nil || e.store == nil || e.passwordHash == nil {
		return ErrEngineNotReady
	}
	return flows.RunChangePassword(ctx, accountID, currentPassword, newPassword, e.passwordDeps())
}

// ForgotPassword describes the forgotpassword operation and its observable behavior.
//
// ForgotPassword mints a one-hour single-use reset token and mails it.
// Unknown emails are indistinguishable from known ones: the call succeeds
// either way and burns equivalent work, so the endpoint cannot be used to
// enumerate accounts. A repeated request replaces the earlier token.
// ForgotPassword may return an error when input validation, dependency calls, or security checks fail.
// ForgotPassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ForgotPassword(ctx context.Context, email string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	return flows.RunForgotPassword(ctx, email, e.passwordDeps())
}

// ResetPassword describes the resetpassword operation and its observable behavior.
//
// ResetPassword consumes a reset token and stores the new password.
// Unknown tokens report ErrResetTokenInvalid, expired ones
// ErrResetTokenExpired; consumption clears the token atomically with the
// password change so any token works exactly once.
// ResetPassword may return an error when input validation, dependency calls, or security checks fail.
// ResetPassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ResetPassword(ctx context.Context, plainToken, newPassword string) error {
	if e == nil || e.store == nil || e.passwordHash == nil {
		return ErrEngineNotReady
	}
	return flows.RunResetPassword(ctx, plainToken, newPassword, e.passwordDeps())
}
