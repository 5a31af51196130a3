package rentauth

import (
	"context"
	"io"
	"time"

	"github.com/rentora/rentauth/identifier"
	internalaudit "github.com/rentora/rentauth/internal/audit"
	internalmetrics "github.com/rentora/rentauth/internal/metrics"
)

// Role is the closed set of account roles. Only the signup-eligible
// subset may be chosen at registration; the rest are assigned
// administratively.
type Role string

const (
	// RoleTenant is an exported constant or variable used by the account engine.
	RoleTenant Role = "tenant"
	// RoleLandlord is an exported constant or variable used by the account engine.
	RoleLandlord Role = "landlord"
	// RoleMaintenance is an exported constant or variable used by the account engine.
	RoleMaintenance Role = "maintenance"
	// RoleAdmin is an exported constant or variable used by the account engine.
	RoleAdmin Role = "admin"
)

// Gender is the closed enum for the verification-only profile field.
type Gender string

const (
	// GenderUnspecified is an exported constant or variable used by the account engine.
	GenderUnspecified Gender = ""
	// GenderFemale is an exported constant or variable used by the account engine.
	GenderFemale Gender = "female"
	// GenderMale is an exported constant or variable used by the account engine.
	GenderMale Gender = "male"
	// GenderOther is an exported constant or variable used by the account engine.
	GenderOther Gender = "other"
)

// Account is the identity root: credentials, role, verification flags,
// and the stored digests of any live single-use tokens. A token hash and
// its expiry are either both zero or both set.
type Account struct {
	ID            string
	Email         string
	PasswordHash  string
	Role          Role
	EmailVerified bool
	FullyVerified bool

	ResetTokenHash      string
	ResetTokenExpiresAt time.Time

	VerificationTokenHash      string
	VerificationTokenExpiresAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt time.Time
}

// Deleted reports whether the account is soft-deleted. Deleted accounts
// are invisible to every lookup.
func (a *Account) Deleted() bool {
	return !a.DeletedAt.IsZero()
}

// Profile is the personal data owned 1:1 by an Account, created
// atomically with it. The three verification-only fields (national ID,
// gender, birthdate) start unset and are written exactly once during the
// complete-verification transition.
type Profile struct {
	AccountID string
	FirstName string
	LastName  string
	Phone     string
	Bio       string
	AvatarURL string
	BudgetMin *int
	BudgetMax *int
	Score     int

	// NationalIDSealed holds the seal envelope; plaintext national IDs
	// are never persisted.
	NationalIDSealed string
	Gender           Gender
	Birthdate        time.Time
}

// VerificationComplete reports whether all three verification-only
// fields are present.
func (p *Profile) VerificationComplete() bool {
	return p.NationalIDSealed != "" && p.Gender != GenderUnspecified && !p.Birthdate.IsZero()
}

// VerificationRecord is handed to the store by the complete-verification
// transition with the national ID already encrypted.
type VerificationRecord struct {
	NationalIDSealed string
	Gender           Gender
	Birthdate        time.Time
}

// ProfileUpdate carries the owner-mutable profile fields. Nil pointers
// leave stored values untouched.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Bio       *string
	AvatarURL *string
	BudgetMin *int
	BudgetMax *int
}

// AccountStore is the persistence interface callers implement to
// integrate rentauth with their database. Implementations must enforce
// email (and, when the policy is active, phone) uniqueness with
// store-level constraints, exclude soft-deleted accounts from every
// lookup, and make the multi-field methods atomic: a failure leaves the
// account in its prior state.
//
// Lookup misses are reported with [ErrAccountNotFound] (or
// [ErrProfileNotFound]); uniqueness violations with [ErrEmailExists] and
// [ErrPhoneExists].
type AccountStore interface {
	// CreateAccount persists the account and its profile as one atomic
	// unit; either both persist or neither does.
	CreateAccount(ctx context.Context, account *Account, profile *Profile) error

	AccountByID(ctx context.Context, id string) (*Account, error)
	// AccountByEmail matches case-insensitively.
	AccountByEmail(ctx context.Context, email string) (*Account, error)
	// AccountByIdentifier executes a parsed login-identifier query.
	AccountByIdentifier(ctx context.Context, q identifier.Query) (*Account, error)
	AccountByResetTokenHash(ctx context.Context, hashHex string) (*Account, error)
	AccountByVerificationTokenHash(ctx context.Context, hashHex string) (*Account, error)

	UpdatePasswordHash(ctx context.Context, id, newHash string) error

	// SetResetToken overwrites any prior reset token pair.
	SetResetToken(ctx context.Context, id, hashHex string, expiresAt time.Time) error
	// ConsumeResetToken stores the new password hash and clears the reset
	// token pair atomically.
	ConsumeResetToken(ctx context.Context, id, newPasswordHash string) error

	// SetVerificationToken overwrites any prior verification token pair.
	SetVerificationToken(ctx context.Context, id, hashHex string, expiresAt time.Time) error
	// MarkEmailVerified sets the email-verified flag and clears the
	// verification token pair atomically.
	MarkEmailVerified(ctx context.Context, id string) error

	// CompleteVerification writes the verification-only profile fields
	// and flips the fully-verified flag atomically.
	CompleteVerification(ctx context.Context, id string, record VerificationRecord) error

	ProfileByAccountID(ctx context.Context, id string) (*Profile, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*Profile, error)
}

// NotificationSender delivers outbound account mail. Sends are
// best-effort: a failure is logged and counted but never fails the
// operation that triggered it.
type NotificationSender interface {
	SendVerificationLink(ctx context.Context, email, token string) error
	SendPasswordResetLink(ctx context.Context, email, token string) error
	SendWelcome(ctx context.Context, email, name string) error
}

// ProviderProfile is the identity a federated provider asserts for an
// access token. It is untrusted input.
type ProviderProfile struct {
	SubjectID     string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
	AvatarURL     string
}

// IdentityProvider verifies a provider access token against the
// provider's identity endpoint.
type IdentityProvider interface {
	FetchProfile(ctx context.Context, accessToken string) (*ProviderProfile, error)
}

// RegisterRequest is the input for [Engine.Register].
type RegisterRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      Role
}

// RegisterResult is returned by [Engine.Register]. Registration issues
// no tokens; login is a deliberate separate step.
type RegisterResult struct {
	AccountID string
}

// LoginResult is returned by [Engine.Login] and
// [Engine.LoginWithFederatedProvider]. Unverified accounts authenticate
// too; the flags tell the client what completion to prompt for.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	AccountID     string
	EmailVerified bool
	FullyVerified bool
}

// TokenPair is returned by [Engine.Refresh].
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// VerificationRequest is the input for [Engine.CompleteVerification].
type VerificationRequest struct {
	NationalID string
	Gender     Gender
	Birthdate  time.Time
}

// CurrentUser is the sanitized view returned by [Engine.GetCurrentUser].
// The national ID is absent; [Engine.RevealNationalID] returns it.
type CurrentUser struct {
	ID            string
	Email         string
	Role          Role
	EmailVerified bool
	FullyVerified bool

	FirstName string
	LastName  string
	Phone     string
	Bio       string
	AvatarURL string
	BudgetMin *int
	BudgetMax *int
	Score     int

	Gender        Gender
	Birthdate     time.Time
	NationalIDSet bool
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter in the in-process metrics
// system.
type MetricID = internalmetrics.MetricID

// Metrics holds atomic counters for engine operations.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot
