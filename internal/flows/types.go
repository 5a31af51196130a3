package flows

import "time"

// AccountRecord is the flow-level view of a stored account. Flows never
// see the root Account type directly; the engine converts at the boundary
// so flow logic stays free of public API churn.
type AccountRecord struct {
	ID                         string
	Email                      string
	PasswordHash               string
	Role                       string
	EmailVerified              bool
	FullyVerified              bool
	ResetTokenExpiresAt        time.Time
	VerificationTokenExpiresAt time.Time
}

// ProfileRecord is the flow-level view of a stored profile.
type ProfileRecord struct {
	AccountID        string
	FirstName        string
	LastName         string
	Phone            string
	Bio              string
	AvatarURL        string
	BudgetMin        *int
	BudgetMax        *int
	Score            int
	NationalIDSet    bool
	NationalIDSealed string
	Gender           string
	Birthdate        time.Time
}

// TokenPair carries the two session tokens issued on successful
// authentication.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuditEmit is the signature flows use to report an operation outcome.
// Metadata may be nil.
type AuditEmit func(eventType string, success bool, accountID, email string, opErr error, metadata map[string]string)
