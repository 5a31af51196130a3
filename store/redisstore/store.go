// Package redisstore provides a redis-backed rentauth.AccountStore.
//
// Each account is stored as one JSON document holding the account and its
// profile, with secondary index keys for the email, phone, and single-use
// token digests. Multi-field updates run under WATCH so a concurrent
// writer forces a retry instead of a torn record.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rentora/rentauth"
	"github.com/rentora/rentauth/identifier"
)

// ErrUnavailable is an exported constant or variable used by the account engine.
var ErrUnavailable = errors.New("redisstore: redis unavailable")

const watchRetries = 4

// tokenIndexGrace keeps the single-use token index keys alive past the
// token's own expiry, so an expired-but-unconsumed token still resolves
// to its account and the caller can report it as expired rather than
// unknown. Consumption and overwrite delete the index immediately.
const tokenIndexGrace = 24 * time.Hour

// Config defines a public type used by rentauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// Prefix namespaces every key. Defaults to "ra".
	Prefix string

	// EnforceUniquePhone adds a uniqueness index on profile phone numbers.
	EnforceUniquePhone bool
}

// Store defines a public type used by rentauth APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	redis  redis.UniversalClient
	config Config
}

// record is the persisted JSON document.
type record struct {
	Account rentauth.Account `json:"account"`
	Profile rentauth.Profile `json:"profile"`
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(redisClient redis.UniversalClient, cfg Config) *Store {
	if cfg.Prefix == "" {
		cfg.Prefix = "ra"
	}
	return &Store{
		redis:  redisClient,
		config: cfg,
	}
}

func (s *Store) accountKey(id string) string { return s.config.Prefix + ":acct:" + id }
func (s *Store) emailKey(email string) string {
	return s.config.Prefix + ":email:" + strings.ToLower(email)
}
func (s *Store) resetKey(hashHex string) string { return s.config.Prefix + ":reset:" + hashHex }
func (s *Store) verifyKey(hashHex string) string {
	return s.config.Prefix + ":verify:" + hashHex
}

// phoneIndexKey is a hash mapping stored phone numbers to account ids. It
// doubles as the uniqueness index and as the search space for the
// international-suffix matching rule.
func (s *Store) phoneIndexKey() string { return s.config.Prefix + ":phoneidx" }

// CreateAccount describes the createaccount operation and its observable behavior.
//
// CreateAccount may return an error when input validation, dependency calls, or security checks fail.
// CreateAccount does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) CreateAccount(ctx context.Context, account *rentauth.Account, profile *rentauth.Profile) error {
	doc, err := json.Marshal(record{Account: *account, Profile: *profile})
	if err != nil {
		return err
	}

	emailKey := s.emailKey(account.Email)

	for i := 0; i < watchRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			if exists, err := tx.Exists(ctx, emailKey).Result(); err != nil {
				return wrapUnavailable(err)
			} else if exists > 0 {
				return rentauth.ErrEmailExists
			}

			if s.config.EnforceUniquePhone && profile.Phone != "" {
				owner, err := tx.HGet(ctx, s.phoneIndexKey(), profile.Phone).Result()
				if err != nil && !errors.Is(err, redis.Nil) {
					return wrapUnavailable(err)
				}
				if owner != "" {
					return rentauth.ErrPhoneExists
				}
			}

			_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, s.accountKey(account.ID), doc, 0)
				pipe.Set(ctx, emailKey, account.ID, 0)
				if profile.Phone != "" {
					pipe.HSet(ctx, s.phoneIndexKey(), profile.Phone, account.ID)
				}
				return nil
			})
			return wrapUnavailable(err)
		}, emailKey, s.phoneIndexKey())

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrUnavailable
}

// AccountByID describes the accountbyid operation and its observable behavior.
//
// AccountByID may return an error when input validation, dependency calls, or security checks fail.
// AccountByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) AccountByID(ctx context.Context, id string) (*rentauth.Account, error) {
	rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	account := rec.Account
	return &account, nil
}

// AccountByEmail describes the accountbyemail operation and its observable behavior.
//
// AccountByEmail may return an error when input validation, dependency calls, or security checks fail.
// AccountByEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) AccountByEmail(ctx context.Context, email string) (*rentauth.Account, error) {
	id, err := s.redis.Get(ctx, s.emailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, rentauth.ErrAccountNotFound
	}
	if err != nil {
		return nil, wrapUnavailable(err)
	}
	return s.AccountByID(ctx, id)
}

// AccountByIdentifier describes the accountbyidentifier operation and its observable behavior.
//
// AccountByIdentifier may return an error when input validation, dependency calls, or security checks fail.
// AccountByIdentifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) AccountByIdentifier(ctx context.Context, q identifier.Query) (*rentauth.Account, error) {
	if q.Kind == identifier.KindEmail {
		return s.AccountByEmail(ctx, q.Email)
	}

	for _, phone := range q.Exact {
		id, err := s.redis.HGet(ctx, s.phoneIndexKey(), phone).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, wrapUnavailable(err)
		}
		return s.AccountByID(ctx, id)
	}

	if q.Suffix != "" {
		// The suffix rule cannot be answered by a point lookup; walk the
		// phone index instead.
		entries, err := s.redis.HGetAll(ctx, s.phoneIndexKey()).Result()
		if err != nil {
			return nil, wrapUnavailable(err)
		}
		for phone, id := range entries {
			if identifier.MatchesPhone(phone, q) {
				return s.AccountByID(ctx, id)
			}
		}
	}

	return nil, rentauth.ErrAccountNotFound
}

// AccountByResetTokenHash describes the accountbyresettokenhash operation and its observable behavior.
//
// AccountByResetTokenHash may return an error when input validation, dependency calls, or security checks fail.
// AccountByResetTokenHash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) AccountByResetTokenHash(ctx context.Context, hashHex string) (*rentauth.Account, error) {
	return s.accountByTokenIndex(ctx, s.resetKey(hashHex))
}

// AccountByVerificationTokenHash describes the accountbyverificationtokenhash operation and its observable behavior.
//
// AccountByVerificationTokenHash may return an error when input validation, dependency calls, or security checks fail.
// AccountByVerificationTokenHash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) AccountByVerificationTokenHash(ctx context.Context, hashHex string) (*rentauth.Account, error) {
	return s.accountByTokenIndex(ctx, s.verifyKey(hashHex))
}

func (s *Store) accountByTokenIndex(ctx context.Context, indexKey string) (*rentauth.Account, error) {
	id, err := s.redis.Get(ctx, indexKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, rentauth.ErrAccountNotFound
	}
	if err != nil {
		return nil, wrapUnavailable(err)
	}
	return s.AccountByID(ctx, id)
}

// UpdatePasswordHash describes the updatepasswordhash operation and its observable behavior.
//
// UpdatePasswordHash may return an error when input validation, dependency calls, or security checks fail.
// UpdatePasswordHash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) UpdatePasswordHash(ctx context.Context, id, newHash string) error {
	return s.mutate(ctx, id, func(rec *record, pipe redis.Pipeliner) {
		rec.Account.PasswordHash = newHash
		rec.Account.UpdatedAt = time.Now().UTC()
	})
}

// SetResetToken describes the setresettoken operation and its observable behavior.
//
// SetResetToken may return an error when input validation, dependency calls, or security checks fail.
// SetResetToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) SetResetToken(ctx context.Context, id, hashHex string, expiresAt time.Time) error {
	return s.mutate(ctx, id, func(rec *record, pipe redis.Pipeliner) {
		if rec.Account.ResetTokenHash != "" {
			pipe.Del(ctx, s.resetKey(rec.Account.ResetTokenHash))
		}
		rec.Account.ResetTokenHash = hashHex
		rec.Account.ResetTokenExpiresAt = expiresAt
		pipe.Set(ctx, s.resetKey(hashHex), id, time.Until(expiresAt)+tokenIndexGrace)
	})
}

// ConsumeResetToken describes the consumeresettoken operation and its observable behavior.
//
// ConsumeResetToken may return an error when input validation, dependency calls, or security checks fail.
// ConsumeResetToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) ConsumeResetToken(ctx context.Context, id, newPasswordHash string) error {
	return s.mutate(ctx, id, func(rec *record, pipe redis.Pipeliner) {
		if rec.Account.ResetTokenHash != "" {
			pipe.Del(ctx, s.resetKey(rec.Account.ResetTokenHash))
		}
		rec.Account.PasswordHash = newPasswordHash
		rec.Account.ResetTokenHash = ""
		rec.Account.ResetTokenExpiresAt = time.Time{}
		rec.Account.UpdatedAt = time.Now().UTC()
	})
}

// SetVerificationToken describes the setverificationtoken operation and its observable behavior.
//
// SetVerificationToken may return an error when input validation, dependency calls, or security checks fail.
// SetVerificationToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) SetVerificationToken(ctx context.Context, id, hashHex string, expiresAt time.Time) error {
	return s.mutate(ctx, id, func(rec *record, pipe redis.Pipeliner) {
		if rec.Account.VerificationTokenHash != "" {
			pipe.Del(ctx, s.verifyKey(rec.Account.VerificationTokenHash))
		}
		rec.Account.VerificationTokenHash = hashHex
		rec.Account.VerificationTokenExpiresAt = expiresAt
		pipe.Set(ctx, s.verifyKey(hashHex), id, time.Until(expiresAt)+tokenIndexGrace)
	})
}

// MarkEmailVerified describes the markemailverified operation and its observable behavior.
//
// MarkEmailVerified may return an error when input validation, dependency calls, or security checks fail.
// MarkEmailVerified does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) MarkEmailVerified(ctx context.Context, id string) error {
	return s.mutate(ctx, id, func(rec *record, pipe redis.Pipeliner) {
		if rec.Account.VerificationTokenHash != "" {
			pipe.Del(ctx, s.verifyKey(rec.Account.VerificationTokenHash))
		}
		rec.Account.EmailVerified = true
		rec.Account.VerificationTokenHash = ""
		rec.Account.VerificationTokenExpiresAt = time.Time{}
		rec.Account.UpdatedAt = time.Now().UTC()
	})
}

// CompleteVerification describes the completeverification operation and its observable behavior.
//
// CompleteVerification may return an error when input validation, dependency calls, or security checks fail.
// CompleteVerification does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) CompleteVerification(ctx context.Context, id string, rec rentauth.VerificationRecord) error {
	return s.mutate(ctx, id, func(stored *record, pipe redis.Pipeliner) {
		stored.Profile.NationalIDSealed = rec.NationalIDSealed
		stored.Profile.Gender = rec.Gender
		stored.Profile.Birthdate = rec.Birthdate
		stored.Account.FullyVerified = true
		stored.Account.UpdatedAt = time.Now().UTC()
	})
}

// ProfileByAccountID describes the profilebyaccountid operation and its observable behavior.
//
// ProfileByAccountID may return an error when input validation, dependency calls, or security checks fail.
// ProfileByAccountID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) ProfileByAccountID(ctx context.Context, id string) (*rentauth.Profile, error) {
	rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := rec.Profile
	return &profile, nil
}

// UpdateProfile describes the updateprofile operation and its observable behavior.
//
// UpdateProfile may return an error when input validation, dependency calls, or security checks fail.
// UpdateProfile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) UpdateProfile(ctx context.Context, id string, update rentauth.ProfileUpdate) (*rentauth.Profile, error) {
	var updated rentauth.Profile
	err := s.mutateErr(ctx, id, func(rec *record, pipe redis.Pipeliner) error {
		if update.Phone != nil && *update.Phone != rec.Profile.Phone {
			if s.config.EnforceUniquePhone && *update.Phone != "" {
				owner, err := s.redis.HGet(ctx, s.phoneIndexKey(), *update.Phone).Result()
				if err != nil && !errors.Is(err, redis.Nil) {
					return wrapUnavailable(err)
				}
				if owner != "" && owner != id {
					return rentauth.ErrPhoneExists
				}
			}
			if rec.Profile.Phone != "" {
				pipe.HDel(ctx, s.phoneIndexKey(), rec.Profile.Phone)
			}
			if *update.Phone != "" {
				pipe.HSet(ctx, s.phoneIndexKey(), *update.Phone, id)
			}
			rec.Profile.Phone = *update.Phone
		}
		if update.FirstName != nil {
			rec.Profile.FirstName = *update.FirstName
		}
		if update.LastName != nil {
			rec.Profile.LastName = *update.LastName
		}
		if update.Bio != nil {
			rec.Profile.Bio = *update.Bio
		}
		if update.AvatarURL != nil {
			rec.Profile.AvatarURL = *update.AvatarURL
		}
		if update.BudgetMin != nil {
			rec.Profile.BudgetMin = update.BudgetMin
		}
		if update.BudgetMax != nil {
			rec.Profile.BudgetMax = update.BudgetMax
		}
		updated = rec.Profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// -------- internals --------

func (s *Store) load(ctx context.Context, id string) (*record, error) {
	data, err := s.redis.Get(ctx, s.accountKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, rentauth.ErrAccountNotFound
	}
	if err != nil {
		return nil, wrapUnavailable(err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec.Account.Deleted() {
		return nil, rentauth.ErrAccountNotFound
	}
	return &rec, nil
}

func (s *Store) mutate(ctx context.Context, id string, apply func(*record, redis.Pipeliner)) error {
	return s.mutateErr(ctx, id, func(rec *record, pipe redis.Pipeliner) error {
		apply(rec, pipe)
		return nil
	})
}

// mutateErr re-reads the document under WATCH, applies the change, and
// writes it back with any secondary index updates in one MULTI/EXEC.
func (s *Store) mutateErr(ctx context.Context, id string, apply func(*record, redis.Pipeliner) error) error {
	key := s.accountKey(id)

	for i := 0; i < watchRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return rentauth.ErrAccountNotFound
			}
			if err != nil {
				return wrapUnavailable(err)
			}

			var rec record
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
			if rec.Account.Deleted() {
				return rentauth.ErrAccountNotFound
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if err := apply(&rec, pipe); err != nil {
					return err
				}
				doc, err := json.Marshal(rec)
				if err != nil {
					return err
				}
				pipe.Set(ctx, key, doc, 0)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrUnavailable
}

func wrapUnavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.TxFailedErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
