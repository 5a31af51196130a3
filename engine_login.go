package rentauth

import (
	"context"

	"github.com/rentora/rentauth/internal/flows"
	internalmetrics "github.com/rentora/rentauth/internal/metrics"
)

// Login describes the login operation and its observable behavior.
//
// Login resolves the identifier (email address or phone number in any
// accepted format) and verifies the password. An unknown identifier and a
// wrong password produce the identical ErrInvalidCredentials, and both
// paths cost one argon2 evaluation. Unverified accounts authenticate too;
// the result flags tell the client what completion to prompt for.
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, loginIdentifier, plaintext string) (*LoginResult, error) {
	if e == nil || e.store == nil || e.passwordHash == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	deps := flows.LoginDeps{
		ResolveAccount: e.resolveAccount,
		IsNotFound:     isNotFound,

		VerifyPassword:    e.passwordHash.Verify,
		BurnPasswordCheck: e.burnPasswordCheck,

		IssuePair: e.issuePair,

		MetricInc: e.metricInc,
		EmitAudit: e.emitAudit,

		Metrics: flows.LoginMetrics{
			LoginSuccess: int(internalmetrics.MetricLoginSuccess),
			LoginFailure: int(internalmetrics.MetricLoginFailure),
		},
		Events: flows.LoginEvents{
			Login: auditEventLogin,
		},
		Errors: flows.LoginErrors{
			EngineNotReady:     ErrEngineNotReady,
			InvalidCredentials: ErrInvalidCredentials,
			Internal:           ErrInternal,
		},
	}

	result, err := flows.RunLogin(ctx, loginIdentifier, plaintext, deps)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:   result.AccessToken,
		RefreshToken:  result.RefreshToken,
		AccountID:     result.AccountID,
		EmailVerified: result.EmailVerified,
		FullyVerified: result.FullyVerified,
	}, nil
}

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh exchanges a valid refresh token for a fresh access+refresh
// pair. Claims are re-derived from the store so role changes take effect
// and deleted accounts stop refreshing.
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.store == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	deps := flows.RefreshDeps{
		ParseRefresh: e.parseRefresh,

		AccountByID: e.accountByID,
		IsNotFound:  isNotFound,

		IssuePair: e.issuePair,

		MetricInc: e.metricInc,
		EmitAudit: e.emitAudit,

		Metrics: flows.RefreshMetrics{
			RefreshSuccess: int(internalmetrics.MetricRefreshSuccess),
			RefreshFailure: int(internalmetrics.MetricRefreshFailure),
		},
		Events: flows.RefreshEvents{
			Refresh: auditEventRefresh,
		},
		Errors: flows.RefreshErrors{
			EngineNotReady: ErrEngineNotReady,
			TokenInvalid:   ErrTokenInvalid,
			TokenExpired:   ErrTokenExpired,
			Internal:       ErrInternal,
		},
	}

	pair, err := flows.RunRefresh(ctx, refreshToken, deps)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}
