package rentauth

import (
	"context"

	"github.com/rentora/rentauth/internal/flows"
	internalmetrics "github.com/rentora/rentauth/internal/metrics"
)

// Register describes the register operation and its observable behavior.
//
// Register creates an unverified account with its profile as one atomic
// unit and dispatches the first email-verification link best-effort. No
// session tokens are issued; login is a deliberate separate step.
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if e == nil || e.store == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}

	allowed := make([]string, 0, len(e.config.Account.SignupRoles))
	for _, role := range e.config.Account.SignupRoles {
		allowed = append(allowed, string(role))
	}

	deps := flows.RegisterDeps{
		DefaultRole:  string(e.config.Account.DefaultRole),
		AllowedRoles: allowed,

		Now:          now,
		NewAccountID: newAccountID,
		HashPassword: e.passwordHash.Hash,

		CreateAccount: e.createAccount,
		MapStoreError: e.mapStoreError,

		DispatchVerificationEmail: func(ctx context.Context, accountID string) {
			// The registration already committed; a failed send is
			// recorded by the flow's own metrics and audit trail.
			_ = e.SendVerificationEmail(ctx, accountID)
		},

		MetricInc: e.metricInc,
		EmitAudit: e.emitAudit,

		Metrics: flows.RegisterMetrics{
			RegisterSuccess:   int(internalmetrics.MetricRegisterSuccess),
			RegisterDuplicate: int(internalmetrics.MetricRegisterDuplicate),
		},
		Events: flows.RegisterEvents{
			Register: auditEventRegister,
		},
		Errors: flows.RegisterErrors{
			EngineNotReady: ErrEngineNotReady,
			RoleNotAllowed: ErrRoleNotAllowed,
			EmailExists:    ErrEmailExists,
			PhoneExists:    ErrPhoneExists,
			InvalidInput:   ErrInvalidInput,
			Internal:       ErrInternal,
		},
	}

	result, err := flows.RunRegister(ctx, flows.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      string(req.Role),
	}, deps)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{AccountID: result.AccountID}, nil
}
