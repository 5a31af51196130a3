package flows

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ProviderProfile is the identity asserted by the external provider.
// Everything in it is untrusted input until validated here.
type ProviderProfile struct {
	SubjectID     string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
	AvatarURL     string
}

type FederatedErrors struct {
	EngineNotReady      error
	ProviderToken       error
	ProviderUnavailable error
	Internal            error
}

type FederatedMetrics struct {
	LoginSuccess       int
	LoginFailure       int
	AccountProvisioned int
}

type FederatedEvents struct {
	Login     string
	Provision string
}

type FederatedDeps struct {
	DefaultRole string

	// FetchProfile verifies the provider access token against the
	// provider's identity endpoint. The engine bounds the call with a
	// timeout; a deadline hit maps to ProviderUnavailable.
	FetchProfile func(ctx context.Context, accessToken string) (ProviderProfile, error)

	AccountByEmail func(context.Context, string) (AccountRecord, error)
	IsNotFound     func(error) bool

	// SentinelPasswordHash returns the credential placeholder that no
	// user-supplied password can ever verify against, keeping password
	// login permanently closed for provisioned accounts.
	SentinelPasswordHash func() string

	NewAccountID func() string
	Now          func() time.Time

	CreateAccount func(context.Context, RegisterRecord) error
	MapStoreError func(error) error

	IssuePair func(accountID, email, role string) (string, string, error)

	MetricInc func(int)
	EmitAudit AuditEmit

	Metrics FederatedMetrics
	Events  FederatedEvents
	Errors  FederatedErrors
}

// RunFederatedLogin authenticates against an external identity provider,
// auto-provisioning a local account on first sight. Provider failures are
// reported distinctly and never fall back to a local credential check.
func RunFederatedLogin(ctx context.Context, providerAccessToken string, deps FederatedDeps) (*LoginResult, error) {
	if deps.FetchProfile == nil || deps.AccountByEmail == nil || deps.IssuePair == nil {
		return nil, deps.Errors.EngineNotReady
	}
	if providerAccessToken == "" {
		deps.MetricInc(deps.Metrics.LoginFailure)
		return nil, deps.Errors.ProviderToken
	}

	profile, err := deps.FetchProfile(ctx, providerAccessToken)
	if err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			deps.EmitAudit(deps.Events.Login, false, "", "", deps.Errors.ProviderUnavailable, nil)
			return nil, deps.Errors.ProviderUnavailable
		}
		deps.EmitAudit(deps.Events.Login, false, "", "", deps.Errors.ProviderToken, nil)
		return nil, deps.Errors.ProviderToken
	}

	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" || !profile.EmailVerified {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(deps.Events.Login, false, "", email, deps.Errors.ProviderToken, map[string]string{
			"reason": "unusable_provider_email",
		})
		return nil, deps.Errors.ProviderToken
	}

	account, err := deps.AccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if !deps.IsNotFound(err) {
			return nil, deps.Errors.Internal
		}

		account, err = provisionFederatedAccount(ctx, email, profile, deps)
		if err != nil {
			deps.MetricInc(deps.Metrics.LoginFailure)
			return nil, err
		}
	}

	access, refresh, err := deps.IssuePair(account.ID, account.Email, account.Role)
	if err != nil {
		deps.EmitAudit(deps.Events.Login, false, account.ID, account.Email, deps.Errors.Internal, nil)
		return nil, deps.Errors.Internal
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(deps.Events.Login, true, account.ID, account.Email, nil, map[string]string{
		"subject": profile.SubjectID,
	})

	return &LoginResult{
		AccessToken:   access,
		RefreshToken:  refresh,
		AccountID:     account.ID,
		EmailVerified: account.EmailVerified,
		FullyVerified: account.FullyVerified,
	}, nil
}

func provisionFederatedAccount(ctx context.Context, email string, profile ProviderProfile, deps FederatedDeps) (AccountRecord, error) {
	if deps.CreateAccount == nil || deps.SentinelPasswordHash == nil || deps.NewAccountID == nil {
		return AccountRecord{}, deps.Errors.EngineNotReady
	}

	record := RegisterRecord{
		AccountID:     deps.NewAccountID(),
		Email:         email,
		PasswordHash:  deps.SentinelPasswordHash(),
		Role:          deps.DefaultRole,
		EmailVerified: true,
		FirstName:     strings.TrimSpace(profile.GivenName),
		LastName:      strings.TrimSpace(profile.FamilyName),
		AvatarURL:     strings.TrimSpace(profile.AvatarURL),
		CreatedAt:     deps.Now(),
	}

	if err := deps.CreateAccount(ctx, record); err != nil {
		mapped := deps.MapStoreError(err)
		deps.EmitAudit(deps.Events.Provision, false, "", email, mapped, nil)
		return AccountRecord{}, mapped
	}

	deps.MetricInc(deps.Metrics.AccountProvisioned)
	deps.EmitAudit(deps.Events.Provision, true, record.AccountID, email, nil, map[string]string{
		"subject": profile.SubjectID,
	})

	return AccountRecord{
		ID:            record.AccountID,
		Email:         email,
		PasswordHash:  record.PasswordHash,
		Role:          record.Role,
		EmailVerified: true,
		FullyVerified: false,
	}, nil
}
