package rentauth

import (
	"context"

	"github.com/rentora/rentauth/internal/flows"
	internalmetrics "github.com/rentora/rentauth/internal/metrics"
)

func (e *Engine) profileDeps() flows.ProfileDeps {
	return flows.ProfileDeps{
		ParseAccess: e.parseAccess,

		AccountByID:        e.accountByID,
		ProfileByAccountID: e.profileByAccountID,
		IsNotFound:         isNotFound,

		UpdateProfile: func(ctx context.Context, accountID string, update flows.ProfileUpdate) (flows.ProfileRecord, error) {
			profile, err := e.store.UpdateProfile(ctx, accountID, ProfileUpdate{
				FirstName: update.FirstName,
				LastName:  update.LastName,
				Phone:     update.Phone,
				Bio:       update.Bio,
				AvatarURL: update.AvatarURL,
				BudgetMin: update.BudgetMin,
				BudgetMax: update.BudgetMax,
			})
			if err != nil {
				return flows.ProfileRecord{}, err
			}
			return profileRecord(profile), nil
		},

		DecryptNationalID: e.cipher.Decrypt,

		MapStoreError: e.mapStoreError,

		MetricInc: e.metricInc,
		EmitAudit: e.emitAudit,

		Metrics: flows.ProfileMetrics{
			ProfileUpdate: int(internalmetrics.MetricProfileUpdate),
		},
		Events: flows.ProfileEvents{
			ProfileUpdate:    auditEventProfileUpdate,
			NationalIDReveal: auditEventNationalIDReveal,
		},
		Errors: flows.ProfileErrors{
			EngineNotReady:     ErrEngineNotReady,
			TokenInvalid:       ErrTokenInvalid,
			TokenExpired:       ErrTokenExpired,
			NotFound:           ErrAccountNotFound,
			BudgetRange:        ErrBudgetRange,
			PhoneExists:        ErrPhoneExists,
			NationalIDUnusable: ErrNationalIDUnavailable,
			Internal:           ErrInternal,
		},
	}
}

// GetCurrentUser describes the getcurrentuser operation and its observable behavior.
//
// GetCurrentUser resolves an access token to the caller's sanitized
// account and profile view. The sealed national ID never appears in it;
// only its presence is reported, and RevealNationalID returns the value.
// GetCurrentUser may return an error when input validation, dependency calls, or security checks fail.
// GetCurrentUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) GetCurrentUser(ctx context.Context, accessToken string) (*CurrentUser, error) {
	if e == nil || e.store == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	result, err := flows.RunGetCurrentUser(ctx, accessToken, e.profileDeps())
	if err != nil {
		return nil, err
	}

	return &CurrentUser{
		ID:            result.Account.ID,
		Email:         result.Account.Email,
		Role:          Role(result.Account.Role),
		EmailVerified: result.Account.EmailVerified,
		FullyVerified: result.Account.FullyVerified,

		FirstName: result.Profile.FirstName,
		LastName:  result.Profile.LastName,
		Phone:     result.Profile.Phone,
		Bio:       result.Profile.Bio,
		AvatarURL: result.Profile.AvatarURL,
		BudgetMin: result.Profile.BudgetMin,
		BudgetMax: result.Profile.BudgetMax,
		Score:     result.Profile.Score,

		Gender:        Gender(result.Profile.Gender),
		Birthdate:     result.Profile.Birthdate,
		NationalIDSet: result.Profile.NationalIDSet,
	}, nil
}

// UpdateProfile describes the updateprofile operation and its observable behavior.
//
// UpdateProfile applies owner edits to the mutable profile fields. Nil
// pointers leave stored values untouched; the verification-only fields
// are unreachable from here. A budget range whose minimum exceeds its
// maximum is rejected with ErrBudgetRange.
// UpdateProfile may return an error when input validation, dependency calls, or security checks fail.
// UpdateProfile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) UpdateProfile(ctx context.Context, accountID string, update ProfileUpdate) (*Profile, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	result, err := flows.RunUpdateProfile(ctx, accountID, flows.ProfileUpdate{
		FirstName: update.FirstName,
		LastName:  update.LastName,
		Phone:     update.Phone,
		Bio:       update.Bio,
		AvatarURL: update.AvatarURL,
		BudgetMin: update.BudgetMin,
		BudgetMax: update.BudgetMax,
	}, e.profileDeps())
	if err != nil {
		return nil, err
	}

	return &Profile{
		AccountID: result.AccountID,
		FirstName: result.FirstName,
		LastName:  result.LastName,
		Phone:     result.Phone,
		Bio:       result.Bio,
		AvatarURL: result.AvatarURL,
		BudgetMin: result.BudgetMin,
		BudgetMax: result.BudgetMax,
		Score:     result.Score,
		Gender:    Gender(result.Gender),
		Birthdate: result.Birthdate,
	}, nil
}

// RevealNationalID describes the revealnationalid operation and its observable behavior.
//
// RevealNationalID decrypts the caller's sealed national ID. An account
// that never completed identity verification reports ErrAccountNotFound;
// a sealed value that fails authentication reports
// ErrNationalIDUnavailable and no plaintext is ever partially returned.
// RevealNationalID may return an error when input validation, dependency calls, or security checks fail.
// RevealNationalID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RevealNationalID(ctx context.Context, accessToken string) (string, error) {
	if e == nil || e.store == nil || e.cipher == nil || e.jwtManager == nil {
		return "", ErrEngineNotReady
	}
	return flows.RunRevealNationalID(ctx, accessToken, e.profileDeps())
}
