package flows

import (
	"context"
	"errors"
)

type RefreshErrors struct {
	EngineNotReady error
	TokenInvalid   error
	TokenExpired   error
	Internal       error
}

type RefreshMetrics struct {
	RefreshSuccess int
	RefreshFailure int
}

type RefreshEvents struct {
	Refresh string
}

type RefreshDeps struct {
	// ParseRefresh validates the refresh token and returns the account id
	// it was issued for, mapping expiry and signature failures to the
	// flow's TokenExpired/TokenInvalid errors.
	ParseRefresh func(token string) (accountID string, err error)

	// AccountByID re-reads the account so the new pair carries current
	// email and role, and so deleted accounts stop refreshing.
	AccountByID func(context.Context, string) (AccountRecord, error)
	IsNotFound  func(error) bool

	IssuePair func(accountID, email, role string) (string, string, error)

	MetricInc func(int)
	EmitAudit AuditEmit

	Metrics RefreshMetrics
	Events  RefreshEvents
	Errors  RefreshErrors
}

// RunRefresh exchanges a valid refresh token for a fresh access+refresh
// pair. Claims are re-derived from the store, not copied from the old
// token.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) (*TokenPair, error) {
	if deps.ParseRefresh == nil || deps.AccountByID == nil || deps.IssuePair == nil {
		return nil, deps.Errors.EngineNotReady
	}

	accountID, err := deps.ParseRefresh(refreshToken)
	if err != nil {
		deps.MetricInc(deps.Metrics.RefreshFailure)
		deps.EmitAudit(deps.Events.Refresh, false, "", "", err, nil)
		return nil, err
	}

	account, err := deps.AccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		deps.MetricInc(deps.Metrics.RefreshFailure)
		if deps.IsNotFound(err) {
			deps.EmitAudit(deps.Events.Refresh, false, accountID, "", deps.Errors.TokenInvalid, nil)
			return nil, deps.Errors.TokenInvalid
		}
		deps.EmitAudit(deps.Events.Refresh, false, accountID, "", deps.Errors.Internal, nil)
		return nil, deps.Errors.Internal
	}

	access, refresh, err := deps.IssuePair(account.ID, account.Email, account.Role)
	if err != nil {
		deps.EmitAudit(deps.Events.Refresh, false, account.ID, account.Email, deps.Errors.Internal, nil)
		return nil, deps.Errors.Internal
	}

	deps.MetricInc(deps.Metrics.RefreshSuccess)
	deps.EmitAudit(deps.Events.Refresh, true, account.ID, account.Email, nil, nil)

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
