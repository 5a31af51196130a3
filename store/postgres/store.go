// Package postgres provides a PostgreSQL-backed rentauth.AccountStore on
// pgx. Uniqueness is enforced by the schema (a unique index on the
// lowercased email and, optionally, on the profile phone) and multi-field
// updates run inside a transaction.
package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rentora/rentauth"
	"github.com/rentora/rentauth/identifier"
)

const uniqueViolation = "23505"

// Config defines a public type used by rentauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// EnforceUniquePhone creates and honors the unique phone index.
	EnforceUniquePhone bool
}

// Store defines a public type used by rentauth APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	pool   *pgxpool.Pool
	config Config
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(pool *pgxpool.Pool, cfg Config) *Store {
	return &Store{pool: pool, config: cfg}
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			email_verified BOOLEAN NOT NULL DEFAULT FALSE,
			fully_verified BOOLEAN NOT NULL DEFAULT FALSE,
			reset_token_hash TEXT NOT NULL DEFAULT '',
			reset_token_expires_at TIMESTAMPTZ,
			verification_token_hash TEXT NOT NULL DEFAULT '',
			verification_token_expires_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_unique
			ON accounts (lower(email)) WHERE deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS accounts_reset_token_idx
			ON accounts (reset_token_hash) WHERE reset_token_hash <> ''`,
		`CREATE INDEX IF NOT EXISTS accounts_verification_token_idx
			ON accounts (verification_token_hash) WHERE verification_token_hash <> ''`,
		`CREATE TABLE IF NOT EXISTS profiles (
			account_id TEXT PRIMARY KEY REFERENCES accounts (id),
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			budget_min INTEGER,
			budget_max INTEGER,
			score INTEGER NOT NULL DEFAULT 0,
			national_id_sealed TEXT NOT NULL DEFAULT '',
			gender TEXT NOT NULL DEFAULT '',
			birthdate TIMESTAMPTZ
		)`,
	}
	if s.config.EnforceUniquePhone {
		statements = append(statements,
			`CREATE UNIQUE INDEX IF NOT EXISTS profiles_phone_unique
				ON profiles (phone) WHERE phone <> ''`)
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateAccount describes the createaccount operation and its observable behavior.
//
// CreateAccount may return an error when input validation, dependency calls, or security checks fail.
// CreateAccount does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) CreateAccount(ctx context.Context, account *rentauth.Account, profile *rentauth.Profile) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO accounts (id, email, password_hash, role, email_verified, fully_verified, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			account.ID, account.Email, account.PasswordHash, string(account.Role),
			account.EmailVerified, account.FullyVerified, account.CreatedAt, account.UpdatedAt)
		if err != nil {
			return mapConstraint(err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO profiles (account_id, first_name, last_name, phone, avatar_url)
			 VALUES ($1, $2, $3, $4, $5)`,
			profile.AccountID, profile.FirstName, profile.LastName, profile.Phone, profile.AvatarURL)
		return mapConstraint(err)
	})
}

const accountColumns = `id, email, password_hash, role, email_verified, fully_verified,
	reset_token_hash, reset_token_expires_at, verification_token_hash, verification_token_expires_at,
	created_at, updated_at, deleted_at`

// AccountByID describes the accountbyid operation and its observable behavior.
//
// AccountByID may return an error when input validation, dependency calls, or security checks fail.
// AccountByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) AccountByID(ctx context.Context, id string) (*rentauth.Account, error) {
	return s.queryAccount(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND deleted_at IS NULL`, id)
}

// AccountByEmail describes the accountbyemail operation and its observable behavior.
//
// AccountByEmail may return an error when input validation, dependency calls, or security checks fail.
// AccountByEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) AccountByEmail(ctx context.Context, email string) (*rentauth.Account, error) {
	return s.queryAccount(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE lower(email) = lower($1) AND deleted_at IS NULL`, email)
}

// AccountByIdentifier describes the accountbyidentifier operation and its observable behavior.
//
// AccountByIdentifier may return an error when input validation, dependency calls, or security checks fail.
// AccountByIdentifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) AccountByIdentifier(ctx context.Context, q identifier.Query) (*rentauth.Account, error) {
	if q.Kind == identifier.KindEmail {
		return s.AccountByEmail(ctx, q.Email)
	}

	if len(q.Exact) > 0 {
		account, err := s.queryAccount(ctx,
			`SELECT `+accountColumns+` FROM accounts a
			 JOIN profiles p ON p.account_id = a.id
			 WHERE p.phone = ANY($1) AND a.deleted_at IS NULL
			 LIMIT 1`, q.Exact)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, rentauth.ErrAccountNotFound) {
			return nil, err
		}
	}

	if q.Suffix != "" {
		// Suffix matching runs over the digits of the stored number,
		// mirroring identifier.MatchesPhone, so formatting characters
		// in a stored international number do not break the lookup.
		return s.queryAccount(ctx,
			`SELECT `+accountColumns+` FROM accounts a
			 JOIN profiles p ON p.account_id = a.id
			 WHERE p.phone LIKE '+%' AND regexp_replace(p.phone, '\D', '', 'g') LIKE $1 AND a.deleted_at IS NULL
			 LIMIT 1`, "%"+q.Suffix)
	}

	return nil, rentauth.ErrAccountNotFound
}

// AccountByResetTokenHash describes the accountbyresettokenhash operation and its observable behavior.
//
// AccountByResetTokenHash may return an error when input validation, dependency calls, or security checks fail.
// AccountByResetTokenHash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) AccountByResetTokenHash(ctx context.Context, hashHex string) (*rentauth.Account, error) {
	return s.queryAccount(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE reset_token_hash = $1 AND reset_token_hash <> '' AND deleted_at IS NULL`, hashHex)
}

// AccountByVerificationTokenHash describes the accountbyverificationtokenhash operation and its observable behavior.
//
// AccountByVerificationTokenHash may return an error when input validation, dependency calls, or security checks fail.
// AccountByVerificationTokenHash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) AccountByVerificationTokenHash(ctx context.Context, hashHex string) (*rentauth.Account, error) {
	return s.queryAccount(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE verification_token_hash = $1 AND verification_token_hash <> '' AND deleted_at IS NULL`, hashHex)
}

// UpdatePasswordHash describes the updatepasswordhash operation and its observable behavior.
//
// UpdatePasswordHash may return an error when input validation, dependency calls, or security checks fail.
// UpdatePasswordHash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) UpdatePasswordHash(ctx context.Context, id, newHash string) error {
	return s.execAccount(ctx,
		`UPDATE accounts SET password_hash = $2, updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL`, id, newHash)
}

// SetResetToken describes the setresettoken operation and its observable behavior.
//
// SetResetToken may return an error when input validation, dependency calls, or security checks fail.
// SetResetToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) SetResetToken(ctx context.Context, id, hashHex string, expiresAt time.Time) error {
	return s.execAccount(ctx,
		`UPDATE accounts SET reset_token_hash = $2, reset_token_expires_at = $3
		 WHERE id = $1 AND deleted_at IS NULL`, id, hashHex, expiresAt)
}

// ConsumeResetToken describes the consumeresettoken operation and its observable behavior.
//
// ConsumeResetToken may return an error when input validation, dependency calls, or security checks fail.
// ConsumeResetToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) ConsumeResetToken(ctx context.Context, id, newPasswordHash string) error {
	return s.execAccount(ctx,
		`UPDATE accounts SET password_hash = $2, reset_token_hash = '', reset_token_expires_at = NULL, updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL`, id, newPasswordHash)
}

// SetVerificationToken describes the setverificationtoken operation and its observable behavior.
//
// SetVerificationToken may return an error when input validation, dependency calls, or security checks fail.
// SetVerificationToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) SetVerificationToken(ctx context.Context, id, hashHex string, expiresAt time.Time) error {
	return s.execAccount(ctx,
		`UPDATE accounts SET verification_token_hash = $2, verification_token_expires_at = $3
		 WHERE id = $1 AND deleted_at IS NULL`, id, hashHex, expiresAt)
}

// MarkEmailVerified describes the markemailverified operation and its observable behavior.
//
// MarkEmailVerified may return an error when input validation, dependency calls, or security checks fail.
// MarkEmailVerified does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) MarkEmailVerified(ctx context.Context, id string) error {
	return s.execAccount(ctx,
		`UPDATE accounts SET email_verified = TRUE, verification_token_hash = '', verification_token_expires_at = NULL, updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
}

// CompleteVerification describes the completeverification operation and its observable behavior.
//
// CompleteVerification may return an error when input validation, dependency calls, or security checks fail.
// CompleteVerification does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) CompleteVerification(ctx context.Context, id string, record rentauth.VerificationRecord) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE accounts SET fully_verified = TRUE, updated_at = now()
			 WHERE id = $1 AND deleted_at IS NULL`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return rentauth.ErrAccountNotFound
		}

		tag, err = tx.Exec(ctx,
			`UPDATE profiles SET national_id_sealed = $2, gender = $3, birthdate = $4
			 WHERE account_id = $1`,
			id, record.NationalIDSealed, string(record.Gender), record.Birthdate)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return rentauth.ErrProfileNotFound
		}
		return nil
	})
}

// ProfileByAccountID describes the profilebyaccountid operation and its observable behavior.
//
// ProfileByAccountID may return an error when input validation, dependency calls, or security checks fail.
// ProfileByAccountID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) ProfileByAccountID(ctx context.Context, id string) (*rentauth.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT p.account_id, p.first_name, p.last_name, p.phone, p.bio, p.avatar_url,
			p.budget_min, p.budget_max, p.score, p.national_id_sealed, p.gender, p.birthdate
		 FROM profiles p
		 JOIN accounts a ON a.id = p.account_id
		 WHERE p.account_id = $1 AND a.deleted_at IS NULL`, id)
	return scanProfile(row)
}

// UpdateProfile describes the updateprofile operation and its observable behavior.
//
// UpdateProfile may return an error when input validation, dependency calls, or security checks fail.
// UpdateProfile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) UpdateProfile(ctx context.Context, id string, update rentauth.ProfileUpdate) (*rentauth.Profile, error) {
	var profile *rentauth.Profile
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE profiles p SET
				first_name = COALESCE($2, p.first_name),
				last_name  = COALESCE($3, p.last_name),
				phone      = COALESCE($4, p.phone),
				bio        = COALESCE($5, p.bio),
				avatar_url = COALESCE($6, p.avatar_url),
				budget_min = COALESCE($7, p.budget_min),
				budget_max = COALESCE($8, p.budget_max)
			 FROM accounts a
			 WHERE p.account_id = $1 AND a.id = p.account_id AND a.deleted_at IS NULL`,
			id, update.FirstName, update.LastName, update.Phone, update.Bio,
			update.AvatarURL, update.BudgetMin, update.BudgetMax)
		if err != nil {
			return mapConstraint(err)
		}
		if tag.RowsAffected() == 0 {
			return rentauth.ErrAccountNotFound
		}

		row := tx.QueryRow(ctx,
			`SELECT account_id, first_name, last_name, phone, bio, avatar_url,
				budget_min, budget_max, score, national_id_sealed, gender, birthdate
			 FROM profiles WHERE account_id = $1`, id)
		profile, err = scanProfile(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// -------- internals --------

func (s *Store) queryAccount(ctx context.Context, query string, args ...any) (*rentauth.Account, error) {
	row := s.pool.QueryRow(ctx, query, args...)

	var (
		account             rentauth.Account
		role                string
		resetExpires        *time.Time
		verificationExpires *time.Time
		deletedAt           *time.Time
	)
	err := row.Scan(&account.ID, &account.Email, &account.PasswordHash, &role,
		&account.EmailVerified, &account.FullyVerified,
		&account.ResetTokenHash, &resetExpires,
		&account.VerificationTokenHash, &verificationExpires,
		&account.CreatedAt, &account.UpdatedAt, &deletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, rentauth.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	account.Role = rentauth.Role(role)
	if resetExpires != nil {
		account.ResetTokenExpiresAt = *resetExpires
	}
	if verificationExpires != nil {
		account.VerificationTokenExpiresAt = *verificationExpires
	}
	if deletedAt != nil {
		account.DeletedAt = *deletedAt
	}
	return &account, nil
}

func scanProfile(row pgx.Row) (*rentauth.Profile, error) {
	var (
		profile   rentauth.Profile
		gender    string
		birthdate *time.Time
	)
	err := row.Scan(&profile.AccountID, &profile.FirstName, &profile.LastName,
		&profile.Phone, &profile.Bio, &profile.AvatarURL,
		&profile.BudgetMin, &profile.BudgetMax, &profile.Score,
		&profile.NationalIDSealed, &gender, &birthdate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, rentauth.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	profile.Gender = rentauth.Gender(gender)
	if birthdate != nil {
		profile.Birthdate = *birthdate
	}
	return &profile, nil
}

func (s *Store) execAccount(ctx context.Context, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return rentauth.ErrAccountNotFound
	}
	return nil
}

// mapConstraint translates unique-index violations into the store
// contract's conflict errors.
func mapConstraint(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "phone") {
			return rentauth.ErrPhoneExists
		}
		return rentauth.ErrEmailExists
	}
	return err
}
