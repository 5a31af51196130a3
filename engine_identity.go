package rentauth

import (
	"context"

	"github.com/rentora/rentauth/internal/flows"
	internalmetrics "github.com/rentora/rentauth/internal/metrics"
)

// CompleteVerification describes the completeverification operation and its observable behavior.
//
// CompleteVerification performs the terminal transition to a fully
// verified account: the national ID is encrypted before it reaches the
// store, and the three verification-only profile fields are written
// atomically with the flag flip. A second call on a verified account
// fails with ErrAlreadyFullyVerified; by default the transition also
// requires a confirmed mailbox first.
// CompleteVerification may return an error when input validation, dependency calls, or security checks fail.
// CompleteVerification does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CompleteVerification(ctx context.Context, accountID string, req VerificationRequest) error {
	if e == nil || e.store == nil || e.cipher == nil {
		return ErrEngineNotReady
	}

	deps := flows.IdentityDeps{
		RequireEmailVerified: e.config.Account.RequireEmailVerifiedForIdentity,
		AllowedGenders:       []string{string(GenderFemale), string(GenderMale), string(GenderOther)},
		Now:                  now,

		AccountByID: e.accountByID,
		IsNotFound:  isNotFound,

		EncryptNationalID: e.cipher.Encrypt,

		CompleteVerification: func(ctx context.Context, accountID string, record flows.IdentityRecord) error {
			return e.store.CompleteVerification(ctx, accountID, VerificationRecord{
				NationalIDSealed: record.NationalIDSealed,
				Gender:           Gender(record.Gender),
				Birthdate:        record.Birthdate,
			})
		},

		SendWelcome: func(ctx context.Context, email string) {
			var firstName string
			if profile, err := e.store.ProfileByAccountID(ctx, accountID); err == nil {
				firstName = profile.FirstName
			}
			if err := e.notifier.SendWelcome(ctx, email, firstName); err != nil {
				e.metricInc(int(internalmetrics.MetricNotificationFailure))
			}
		},

		MapStoreError: e.mapStoreError,

		MetricInc: e.metricInc,
		EmitAudit: e.emitAudit,

		Metrics: flows.IdentityMetrics{
			Success:             int(internalmetrics.MetricIdentityVerificationSuccess),
			Rejected:            int(internalmetrics.MetricIdentityVerificationRejected),
			NotificationFailure: int(internalmetrics.MetricNotificationFailure),
		},
		Events: flows.IdentityEvents{
			CompleteVerification: auditEventIdentityVerification,
		},
		Errors: flows.IdentityErrors{
			EngineNotReady:   ErrEngineNotReady,
			NotFound:         ErrAccountNotFound,
			AlreadyVerified:  ErrAlreadyFullyVerified,
			EmailNotVerified: ErrEmailNotVerified,
			InvalidInput:     ErrInvalidInput,
			Internal:         ErrInternal,
		},
	}

	return flows.RunCompleteVerification(ctx, accountID, flows.IdentityInput{
		NationalID: req.NationalID,
		Gender:     string(req.Gender),
		Birthdate:  req.Birthdate,
	}, deps)
}
