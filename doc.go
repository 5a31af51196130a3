// Package rentauth provides the account and credential lifecycle engine
// for a rental-platform backend: registration, login by email or phone,
// email verification, two-phase identity verification, password reset,
// federated (OAuth) login, and at-rest encryption of the national-ID
// profile field.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// rentauth is the public surface. It exposes [Engine], [Builder],
// [Config], the collaborator interfaces ([AccountStore],
// [NotificationSender], [IdentityProvider]), and value types. Flow
// orchestration and audit dispatch live under internal/ and are never
// exported. Cryptographic primitives live in the password, seal, and jwt
// sub-packages; shipped store implementations live under store/.
//
// # What this package must NOT do
//
//   - Perform HTTP framing, request validation, or transport concerns;
//     those belong to the boundary layer in front of the engine.
//   - Persist anything itself: all storage goes through [AccountStore],
//     which owns transactional atomicity and uniqueness enforcement.
//   - Hold mutable process-wide state: every secret is read-only after
//     Build, and construction via [Builder] is allocation-only.
package rentauth
