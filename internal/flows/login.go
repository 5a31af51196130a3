package flows

import (
	"context"
	"errors"
)

// LoginResult carries the issued token pair plus the verification flags
// clients use to prompt for completion. Unverified accounts may still
// authenticate.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	AccountID     string
	EmailVerified bool
	FullyVerified bool
}

type LoginErrors struct {
	EngineNotReady     error
	InvalidCredentials error
	Internal           error
}

type LoginMetrics struct {
	LoginSuccess int
	LoginFailure int
}

type LoginEvents struct {
	Login string
}

type LoginDeps struct {
	// ResolveAccount runs the identifier resolution (email or phone in
	// any accepted format) against the store. A miss is reported with
	// NotFound so the flow can merge it with a password mismatch.
	ResolveAccount func(context.Context, string) (AccountRecord, error)
	IsNotFound     func(error) bool

	VerifyPassword func(plaintext, encodedHash string) bool

	// BurnPasswordCheck performs a hash verification against a throwaway
	// digest so resolution misses cost the same as password mismatches.
	BurnPasswordCheck func(plaintext string)

	IssuePair func(accountID, email, role string) (string, string, error)

	MetricInc func(int)
	EmitAudit AuditEmit

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

// RunLogin resolves the identifier and verifies the password. Resolution
// misses and password mismatches produce the identical error so a caller
// cannot learn which half of the credential pair was wrong.
func RunLogin(ctx context.Context, loginIdentifier, plaintext string, deps LoginDeps) (*LoginResult, error) {
	if deps.ResolveAccount == nil || deps.VerifyPassword == nil || deps.IssuePair == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if loginIdentifier == "" || plaintext == "" {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(deps.Events.Login, false, "", "", deps.Errors.InvalidCredentials, map[string]string{
			"reason": "empty_credentials",
		})
		return nil, deps.Errors.InvalidCredentials
	}

	account, err := deps.ResolveAccount(ctx, loginIdentifier)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if !deps.IsNotFound(err) {
			deps.EmitAudit(deps.Events.Login, false, "", "", deps.Errors.Internal, nil)
			return nil, deps.Errors.Internal
		}
		if deps.BurnPasswordCheck != nil {
			deps.BurnPasswordCheck(plaintext)
		}
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(deps.Events.Login, false, "", "", deps.Errors.InvalidCredentials, map[string]string{
			"identifier": loginIdentifier,
		})
		return nil, deps.Errors.InvalidCredentials
	}

	if !deps.VerifyPassword(plaintext, account.PasswordHash) {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(deps.Events.Login, false, account.ID, account.Email, deps.Errors.InvalidCredentials, nil)
		return nil, deps.Errors.InvalidCredentials
	}

	access, refresh, err := deps.IssuePair(account.ID, account.Email, account.Role)
	if err != nil {
		deps.EmitAudit(deps.Events.Login, false, account.ID, account.Email, deps.Errors.Internal, nil)
		return nil, deps.Errors.Internal
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(deps.Events.Login, true, account.ID, account.Email, nil, map[string]string{
		"email_verified": boolString(account.EmailVerified),
		"fully_verified": boolString(account.FullyVerified),
	})

	return &LoginResult{
		AccessToken:   access,
		RefreshToken:  refresh,
		AccountID:     account.ID,
		EmailVerified: account.EmailVerified,
		FullyVerified: account.FullyVerified,
	}, nil
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
