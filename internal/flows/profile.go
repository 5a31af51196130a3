package flows

import (
	"context"
	"errors"
)

// CurrentUser is the sanitized account+profile view returned to an
// authenticated caller. The national ID is never included; it is revealed
// only through the dedicated reveal flow.
type CurrentUser struct {
	Account AccountRecord
	Profile ProfileRecord
}

// ProfileUpdate carries the owner-mutable profile fields. Nil pointers
// leave the stored value untouched; the verification-only fields cannot
// be reached from here.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Bio       *string
	AvatarURL *string
	BudgetMin *int
	BudgetMax *int
}

type ProfileErrors struct {
	EngineNotReady     error
	TokenInvalid       error
	TokenExpired       error
	NotFound           error
	BudgetRange        error
	PhoneExists        error
	NationalIDUnusable error
	Internal           error
}

type ProfileMetrics struct {
	ProfileUpdate int
}

type ProfileEvents struct {
	ProfileUpdate    string
	NationalIDReveal string
}

type ProfileDeps struct {
	// ParseAccess validates an access token and returns the account id it
	// carries, mapping expiry/signature failures to TokenExpired and
	// TokenInvalid.
	ParseAccess func(token string) (accountID string, err error)

	AccountByID        func(context.Context, string) (AccountRecord, error)
	ProfileByAccountID func(context.Context, string) (ProfileRecord, error)
	IsNotFound         func(error) bool

	UpdateProfile func(ctx context.Context, accountID string, update ProfileUpdate) (ProfileRecord, error)

	DecryptNationalID func(sealed string) (string, error)

	MapStoreError func(error) error

	MetricInc func(int)
	EmitAudit AuditEmit

	Metrics ProfileMetrics
	Events  ProfileEvents
	Errors  ProfileErrors
}

// RunGetCurrentUser resolves an access token to the caller's account and
// profile. The sealed national ID stays sealed.
func RunGetCurrentUser(ctx context.Context, accessToken string, deps ProfileDeps) (*CurrentUser, error) {
	if deps.ParseAccess == nil || deps.AccountByID == nil || deps.ProfileByAccountID == nil {
		return nil, deps.Errors.EngineNotReady
	}

	accountID, err := deps.ParseAccess(accessToken)
	if err != nil {
		return nil, err
	}

	account, err := deps.AccountByID(ctx, accountID)
	if err != nil {
		return nil, deps.mapLookupError(err)
	}
	profile, err := deps.ProfileByAccountID(ctx, accountID)
	if err != nil {
		return nil, deps.mapLookupError(err)
	}

	// Sealed value is withheld from the view; only its presence is shown.
	profile.NationalIDSealed = ""

	return &CurrentUser{Account: account, Profile: profile}, nil
}

// RunUpdateProfile applies owner edits to the mutable profile fields.
func RunUpdateProfile(ctx context.Context, accountID string, update ProfileUpdate, deps ProfileDeps) (*ProfileRecord, error) {
	if deps.UpdateProfile == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if update.BudgetMin != nil && update.BudgetMax != nil && *update.BudgetMin > *update.BudgetMax {
		deps.EmitAudit(deps.Events.ProfileUpdate, false, accountID, "", deps.Errors.BudgetRange, nil)
		return nil, deps.Errors.BudgetRange
	}

	profile, err := deps.UpdateProfile(ctx, accountID, update)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		mapped := deps.MapStoreError(err)
		if deps.IsNotFound(err) {
			mapped = deps.Errors.NotFound
		}
		deps.EmitAudit(deps.Events.ProfileUpdate, false, accountID, "", mapped, nil)
		return nil, mapped
	}

	profile.NationalIDSealed = ""

	deps.MetricInc(deps.Metrics.ProfileUpdate)
	deps.EmitAudit(deps.Events.ProfileUpdate, true, accountID, "", nil, nil)
	return &profile, nil
}

// RunRevealNationalID decrypts the sealed national ID for its owner. A
// decryption failure is reported as unavailable; plaintext is never
// partially returned.
func RunRevealNationalID(ctx context.Context, accessToken string, deps ProfileDeps) (string, error) {
	if deps.ParseAccess == nil || deps.ProfileByAccountID == nil || deps.DecryptNationalID == nil {
		return "", deps.Errors.EngineNotReady
	}

	accountID, err := deps.ParseAccess(accessToken)
	if err != nil {
		return "", err
	}

	profile, err := deps.ProfileByAccountID(ctx, accountID)
	if err != nil {
		return "", deps.mapLookupError(err)
	}

	if !profile.NationalIDSet {
		deps.EmitAudit(deps.Events.NationalIDReveal, false, accountID, "", deps.Errors.NotFound, nil)
		return "", deps.Errors.NotFound
	}

	plaintext, err := deps.DecryptNationalID(profile.NationalIDSealed)
	if err != nil {
		deps.EmitAudit(deps.Events.NationalIDReveal, false, accountID, "", deps.Errors.NationalIDUnusable, nil)
		return "", deps.Errors.NationalIDUnusable
	}

	deps.EmitAudit(deps.Events.NationalIDReveal, true, accountID, "", nil, nil)
	return plaintext, nil
}

func (deps ProfileDeps) mapLookupError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if deps.IsNotFound(err) {
		return deps.Errors.NotFound
	}
	return deps.Errors.Internal
}
