package rentauth

import (
	"errors"
	"time"

	"github.com/rentora/rentauth/password"
)

// JWTConfig defines a public type used by rentauth APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Audience      string
	Leeway        time.Duration
	MaxFutureIAT  time.Duration
}

// CipherConfig holds the fixed process-wide key for national-ID
// encryption. Key rotation is not supported.
type CipherConfig struct {
	Key []byte
}

// TokenConfig sets the expiry windows for the two single-use token
// kinds.
type TokenConfig struct {
	ResetTTL        time.Duration
	VerificationTTL time.Duration
}

// AccountConfig defines a public type used by rentauth APIs.
//
// AccountConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AccountConfig struct {
	DefaultRole Role
	SignupRoles []Role

	// EnforceUniquePhone makes registration reject an already-registered
	// phone number. The store enforces the constraint; this flag only
	// controls whether the engine surfaces the violation as a conflict.
	EnforceUniquePhone bool

	// RequireEmailVerifiedForIdentity gates the complete-verification
	// transition behind a confirmed mailbox.
	RequireEmailVerifiedForIdentity bool

	// ProviderTimeout bounds the federated profile fetch.
	ProviderTimeout time.Duration
}

// AuditConfig defines a public type used by rentauth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
}

// MetricsConfig defines a public type used by rentauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

// Config defines a public type used by rentauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT      JWTConfig
	Password password.Config
	Cipher   CipherConfig
	Tokens   TokenConfig
	Account  AccountConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:    15 * time.Minute,
			RefreshTTL:   7 * 24 * time.Hour,
			Issuer:       "rentauth",
			Audience:     "rentauth",
			Leeway:       30 * time.Second,
			MaxFutureIAT: 10 * time.Minute,
		},
		Password: password.Config{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Tokens: TokenConfig{
			ResetTTL:        time.Hour,
			VerificationTTL: 24 * time.Hour,
		},
		Account: AccountConfig{
			DefaultRole:                     RoleTenant,
			SignupRoles:                     []Role{RoleTenant, RoleLandlord},
			EnforceUniquePhone:              true,
			RequireEmailVerifiedForIdentity: true,
			ProviderTimeout:                 5 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.AccessSecret = append([]byte(nil), cfg.JWT.AccessSecret...)
	out.JWT.RefreshSecret = append([]byte(nil), cfg.JWT.RefreshSecret...)
	out.Cipher.Key = append([]byte(nil), cfg.Cipher.Key...)
	out.Account.SignupRoles = append([]Role(nil), cfg.Account.SignupRoles...)
	return out
}

func validateConfig(cfg Config) error {
	if len(cfg.JWT.AccessSecret) == 0 || len(cfg.JWT.RefreshSecret) == 0 {
		return errors.New("config: JWT secrets are required")
	}
	if len(cfg.Cipher.Key) == 0 {
		return errors.New("config: cipher key is required")
	}
	if cfg.Tokens.ResetTTL <= 0 || cfg.Tokens.VerificationTTL <= 0 {
		return errors.New("config: token TTLs must be positive")
	}
	if cfg.Account.DefaultRole == "" {
		return errors.New("config: default role is required")
	}
	if len(cfg.Account.SignupRoles) == 0 {
		return errors.New("config: at least one signup role is required")
	}
	for _, role := range cfg.Account.SignupRoles {
		if role == RoleAdmin || role == RoleMaintenance {
			return errors.New("config: administrative roles are not signup-eligible")
		}
	}
	if cfg.Account.ProviderTimeout <= 0 {
		return errors.New("config: provider timeout must be positive")
	}
	return nil
}
