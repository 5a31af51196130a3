package flows

import (
	"context"
	"errors"
	"strings"
	"time"
)

// RegisterInput carries validated registration fields into the flow.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      string
}

// RegisterResult is returned on successful registration. No session
// tokens are issued; login is a separate step.
type RegisterResult struct {
	AccountID string
}

// RegisterRecord is handed to the store for atomic account+profile
// creation.
type RegisterRecord struct {
	AccountID     string
	Email         string
	PasswordHash  string
	Role          string
	EmailVerified bool
	FirstName     string
	LastName      string
	Phone         string
	AvatarURL     string
	CreatedAt     time.Time
}

type RegisterErrors struct {
	EngineNotReady error
	RoleNotAllowed error
	EmailExists    error
	PhoneExists    error
	InvalidInput   error
	Internal       error
}

type RegisterMetrics struct {
	RegisterSuccess   int
	RegisterDuplicate int
}

type RegisterEvents struct {
	Register string
}

type RegisterDeps struct {
	DefaultRole  string
	AllowedRoles []string

	Now          func() time.Time
	NewAccountID func() string
	HashPassword func(string) (string, error)

	// CreateAccount must persist the account and profile as one atomic
	// unit and enforce email (and, policy permitting, phone) uniqueness
	// with store-level constraints rather than a pre-check.
	CreateAccount func(context.Context, RegisterRecord) error
	MapStoreError func(error) error

	// DispatchVerificationEmail is best-effort: a failure is audited but
	// never fails the registration itself.
	DispatchVerificationEmail func(ctx context.Context, accountID string)

	MetricInc func(int)
	EmitAudit AuditEmit

	Metrics RegisterMetrics
	Events  RegisterEvents
	Errors  RegisterErrors
}

// RunRegister creates an unverified account with its profile.
func RunRegister(ctx context.Context, input RegisterInput, deps RegisterDeps) (*RegisterResult, error) {
	if deps.HashPassword == nil || deps.CreateAccount == nil || deps.NewAccountID == nil {
		return nil, deps.Errors.EngineNotReady
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		deps.EmitAudit(deps.Events.Register, false, "", email, deps.Errors.InvalidInput, map[string]string{
			"reason": "missing_email_or_password",
		})
		return nil, deps.Errors.InvalidInput
	}

	role := input.Role
	if role == "" {
		role = deps.DefaultRole
	}
	if !roleAllowed(role, deps.AllowedRoles) {
		deps.EmitAudit(deps.Events.Register, false, "", email, deps.Errors.RoleNotAllowed, map[string]string{
			"role": role,
		})
		return nil, deps.Errors.RoleNotAllowed
	}

	passwordHash, err := deps.HashPassword(input.Password)
	if err != nil {
		deps.EmitAudit(deps.Events.Register, false, "", email, deps.Errors.InvalidInput, map[string]string{
			"reason": "password_policy",
		})
		return nil, deps.Errors.InvalidInput
	}

	record := RegisterRecord{
		AccountID:    deps.NewAccountID(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        strings.TrimSpace(input.Phone),
		CreatedAt:    deps.Now(),
	}

	if err := deps.CreateAccount(ctx, record); err != nil {
		mapped := deps.MapStoreError(err)
		if errors.Is(mapped, deps.Errors.EmailExists) || errors.Is(mapped, deps.Errors.PhoneExists) {
			deps.MetricInc(deps.Metrics.RegisterDuplicate)
		}
		deps.EmitAudit(deps.Events.Register, false, "", email, mapped, nil)
		return nil, mapped
	}

	if deps.DispatchVerificationEmail != nil {
		deps.DispatchVerificationEmail(ctx, record.AccountID)
	}

	deps.MetricInc(deps.Metrics.RegisterSuccess)
	deps.EmitAudit(deps.Events.Register, true, record.AccountID, email, nil, map[string]string{
		"role": role,
	})

	return &RegisterResult{AccountID: record.AccountID}, nil
}

func roleAllowed(role string, allowed []string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
