// Package middleware exposes HTTP guard adapters for route protection built
// on top of the dashauth.Manager session state.
//
// # Guards
//
//   - [RequireAuth] — authenticated session, redirect (or 401) otherwise.
//   - [RequireMinRole] — authenticated session with a minimum role rank.
//   - [RequirePermission] — authenticated session holding a named permission.
//
// Each guard consults the Manager's current session snapshot and injects it
// into the request context for downstream handlers.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Manager queries. It does NOT
// implement authorization logic itself — all decisions are delegated to the
// Manager's session state.
//
// # What this package must NOT do
//
//   - Inspect or decode tokens (the Manager owns token handling).
//   - Access the persisted store (the Manager is the sole store client).
//   - Make authorization decisions beyond pass/reject from Manager queries.
package middleware
