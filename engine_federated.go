package rentauth

import (
	"context"

	"github.com/rentora/rentauth/internal/flows"
	internalmetrics "github.com/rentora/rentauth/internal/metrics"
	"github.com/rentora/rentauth/password"
)

// LoginWithFederatedProvider describes the loginwithfederatedprovider operation and its observable behavior.
//
// LoginWithFederatedProvider authenticates against the configured
// external identity provider, auto-provisioning a local account on first
// sight. Provisioned accounts carry a sentinel credential no password can
// verify against, so password login stays permanently closed for them.
// The provider call is bounded by the configured timeout; a deadline hit
// reports ErrProviderUnavailable, a rejected token ErrProviderToken.
// LoginWithFederatedProvider may return an error when input validation, dependency calls, or security checks fail.
// LoginWithFederatedProvider does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) LoginWithFederatedProvider(ctx context.Context, providerAccessToken string) (*LoginResult, error) {
	if e == nil || e.store == nil || e.jwtManager == nil || e.provider == nil {
		return nil, ErrEngineNotReady
	}

	deps := flows.FederatedDeps{
		DefaultRole: string(e.config.Account.DefaultRole),

		FetchProfile: func(ctx context.Context, accessToken string) (flows.ProviderProfile, error) {
			ctx, cancel := context.WithTimeout(ctx, e.config.Account.ProviderTimeout)
			defer cancel()

			profile, err := e.provider.FetchProfile(ctx, accessToken)
			if err != nil {
				return flows.ProviderProfile{}, err
			}
			return flows.ProviderProfile{
				SubjectID:     profile.SubjectID,
				Email:         profile.Email,
				EmailVerified: profile.EmailVerified,
				GivenName:     profile.GivenName,
				FamilyName:    profile.FamilyName,
				AvatarURL:     profile.AvatarURL,
			}, nil
		},

		AccountByEmail: e.accountByEmail,
		IsNotFound:     isNotFound,

		SentinelPasswordHash: password.Sentinel,

		NewAccountID: newAccountID,
		Now:          now,

		CreateAccount: e.createAccount,
		MapStoreError: e.mapStoreError,

		IssuePair: e.issuePair,

		MetricInc: e.metricInc,
		EmitAudit: e.emitAudit,

		Metrics: flows.FederatedMetrics{
			LoginSuccess:       int(internalmetrics.MetricFederatedLoginSuccess),
			LoginFailure:       int(internalmetrics.MetricFederatedLoginFailure),
			AccountProvisioned: int(internalmetrics.MetricFederatedAccountProvisioned),
		},
		Events: flows.FederatedEvents{
			Login:     auditEventFederatedLogin,
			Provision: auditEventFederatedProvision,
		},
		Errors: flows.FederatedErrors{
			EngineNotReady:      ErrEngineNotReady,
			ProviderToken:       ErrProviderToken,
			ProviderUnavailable: ErrProviderUnavailable,
			Internal:            ErrInternal,
		},
	}

	result, err := flows.RunFederatedLogin(ctx, providerAccessToken, deps)
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
