// Package middleware exposes gin middleware for session enforcement built
// on top of rentauth.Engine access-token validation.
//
// # Guards
//
//   - [RequireSession] — resolves the bearer token through
//     [rentauth.Engine.GetCurrentUser] and injects the authenticated user.
//
// Handlers read the injected identity back with [CurrentUser] and, when
// they need to re-present the token to the engine, [AccessToken].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// the engine.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Touch the account store (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from the engine.
package middleware
