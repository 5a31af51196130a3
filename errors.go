package rentauth

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the account engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrInvalidInput is an exported constant or variable used by the account engine.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is an exported constant or variable used by the account engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailExists is an exported constant or variable used by the account engine.
	ErrEmailExists = errors.New("email already registered")
	// ErrPhoneExists is an exported constant or variable used by the account engine.
	ErrPhoneExists = errors.New("phone number already registered")
	// ErrRoleNotAllowed is an exported constant or variable used by the account engine.
	ErrRoleNotAllowed = errors.New("role not allowed for signup")
	// ErrAccountNotFound is an exported constant or variable used by the account engine.
	ErrAccountNotFound = errors.New("account not found")
	// ErrProfileNotFound is an exported constant or variable used by the account engine.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrAlreadyFullyVerified is an exported constant or variable used by the account engine.
	ErrAlreadyFullyVerified = errors.New("account already fully verified")
	// ErrEmailNotVerified is an exported constant or variable used by the account engine.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrPasswordReuse is an exported constant or variable used by the account engine.
	ErrPasswordReuse = errors.New("new password must be different from current password")
	// ErrResetTokenInvalid is an exported constant or variable used by the account engine.
	ErrResetTokenInvalid = errors.New("password reset token invalid")
	// ErrResetTokenExpired is an exported constant or variable used by the account engine.
	ErrResetTokenExpired = errors.New("password reset token expired")
	// ErrVerificationTokenInvalid is an exported constant or variable used by the account engine.
	ErrVerificationTokenInvalid = errors.New("email verification token invalid")
	// ErrVerificationTokenExpired is an exported constant or variable used by the account engine.
	ErrVerificationTokenExpired = errors.New("email verification token expired")
	// ErrTokenInvalid is an exported constant or variable used by the account engine.
	ErrTokenInvalid = errors.New("session token invalid")
	// ErrTokenExpired is an exported constant or variable used by the account engine.
	ErrTokenExpired = errors.New("session token expired")
	// ErrProviderToken is an exported constant or variable used by the account engine.
	ErrProviderToken = errors.New("invalid provider token")
	// ErrProviderUnavailable is an exported constant or variable used by the account engine.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	// ErrBudgetRange is an exported constant or variable used by the account engine.
	ErrBudgetRange = errors.New("budget minimum exceeds maximum")
	// ErrNationalIDUnavailable is an exported constant or variable used by the account engine.
	ErrNationalIDUnavailable = errors.New("national id unavailable")
	// ErrInternal is an exported constant or variable used by the account engine.
	ErrInternal = errors.New("internal error")
)

// Code describes the code operation and its observable behavior.
//
// Code maps an engine error to its stable machine-readable code for the
// boundary layer. Unknown errors map to INTERNAL so unexpected failures
// never leak detail to callers.
// Code does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	case errors.Is(err, ErrEmailExists):
		return "EMAIL_EXISTS"
	case errors.Is(err, ErrPhoneExists):
		return "PHONE_EXISTS"
	case errors.Is(err, ErrRoleNotAllowed):
		return "ROLE_NOT_ALLOWED"
	case errors.Is(err, ErrAccountNotFound):
		return "ACCOUNT_NOT_FOUND"
	case errors.Is(err, ErrProfileNotFound):
		return "PROFILE_NOT_FOUND"
	case errors.Is(err, ErrAlreadyFullyVerified):
		return "ALREADY_VERIFIED"
	case errors.Is(err, ErrEmailNotVerified):
		return "EMAIL_NOT_VERIFIED"
	case errors.Is(err, ErrPasswordReuse):
		return "PASSWORD_REUSE"
	case errors.Is(err, ErrResetTokenInvalid):
		return "RESET_TOKEN_INVALID"
	case errors.Is(err, ErrResetTokenExpired):
		return "RESET_TOKEN_EXPIRED"
	case errors.Is(err, ErrVerificationTokenInvalid):
		return "VERIFICATION_TOKEN_INVALID"
	case errors.Is(err, ErrVerificationTokenExpired):
		return "VERIFICATION_TOKEN_EXPIRED"
	case errors.Is(err, ErrTokenInvalid):
		return "TOKEN_INVALID"
	case errors.Is(err, ErrTokenExpired):
		return "TOKEN_EXPIRED"
	case errors.Is(err, ErrProviderToken):
		return "PROVIDER_TOKEN_INVALID"
	case errors.Is(err, ErrProviderUnavailable):
		return "PROVIDER_UNAVAILABLE"
	case errors.Is(err, ErrBudgetRange):
		return "BUDGET_RANGE_INVALID"
	case errors.Is(err, ErrNationalIDUnavailable):
		return "NATIONAL_ID_UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}
