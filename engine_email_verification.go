package rentauth

import (
	"context"

	"github.com/rentora/rentauth/internal/flows"
	internalmetrics "github.com/rentora/rentauth/internal/metrics"
)

func (e *Engine) emailVerificationDeps() flows.EmailVerificationDeps {
	return flows.EmailVerificationDeps{
		VerificationTTL: e.config.Tokens.VerificationTTL,
		Now:             now,

		AccountByID: e.accountByID,
		IsNotFound:  isNotFound,

		GenerateToken:        generateToken,
		SetVerificationToken: e.store.SetVerificationToken,
		AccountByVerificationTokenHash: func(ctx context.Context, hashHex string) (flows.AccountRecord, error) {
			account, err := e.store.AccountByVerificationTokenHash(ctx, hashHex)
			if err != nil {
				return flows.AccountRecord{}, err
			}
			return accountRecord(account), nil
		},
		HashTokenForLookup: hashTokenForLookup,
		MarkEmailVerified:  e.store.MarkEmailVerified,

		SendVerificationLink: e.notifier.SendVerificationLink,

		MapStoreError: e.mapStoreError,

		MetricInc: e.metricInc,
		EmitAudit: e.emitAudit,

		Metrics: flows.EmailVerificationMetrics{
			Request:             int(internalmetrics.MetricEmailVerificationRequest),
			Success:             int(internalmetrics.MetricEmailVerificationSuccess),
			Failure:             int(internalmetrics.MetricEmailVerificationFailure),
			NotificationFailure: int(internalmetrics.MetricNotificationFailure),
		},
		Events: flows.EmailVerificationEvents{
			Request: auditEventEmailVerificationRequest,
			Confirm: auditEventEmailVerificationConfirm,
		},
		Errors: flows.EmailVerificationErrors{
			EngineNotReady: ErrEngineNotReady,
			TokenInvalid:   ErrVerificationTokenInvalid,
			TokenExpired:   ErrVerificationTokenExpired,
			NotFound:       ErrAccountNotFound,
			Internal:       ErrInternal,
		},
	}
}

// SendVerificationEmail describes the sendverificationemail operation and its observable behavior.
//
// SendVerificationEmail mints a 24-hour single-use verification token and
// mails it, replacing any earlier unconsumed token. An already-verified
// account short-circuits with success instead of minting a redundant
// token.
// SendVerificationEmail may return an error when input validation, dependency calls, or security checks fail.
// SendVerificationEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SendVerificationEmail(ctx context.Context, accountID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	return flows.RunSendVerificationEmail(ctx, accountID, e.emailVerificationDeps())
}

// VerifyEmail describes the verifyemail operation and its observable behavior.
//
// VerifyEmail consumes a verification token, marking the mailbox
// confirmed. Unknown tokens report ErrVerificationTokenInvalid, expired
// ones ErrVerificationTokenExpired.
// VerifyEmail may return an error when input validation, dependency calls, or security checks fail.
// VerifyEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyEmail(ctx context.Context, plainToken string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	return flows.RunVerifyEmail(ctx, plainToken, e.emailVerificationDeps())
}
