// Package dashauth provides the client-side session manager for the ZCS
// document-RAG dashboard: login, logout, tenant switching, proactive token
// refresh, and role/permission queries backed by a persisted key-value store.
//
// The package is the single authority over authentication state. A [Manager]
// is constructed through [Builder.Build], brought to life with
// [Manager.Initialize], and observed through [Manager.Subscribe], which
// replays the current [Session] snapshot to every new subscriber. Credential
// verification always happens in the remote auth backend; the Manager only
// orchestrates it and mirrors the result locally.
//
// # Architecture boundaries
//
// dashauth is the public surface. It exposes [Manager], [Builder], [Config],
// and value types (Session, User, Tenant, LoginResult). Token claim decoding
// lives in token/, persisted state in store/, the HTTP backend client in
// authclient/, and permission semantics in permission/.
//
// # What this package must NOT do
//
//   - Verify token signatures. The bearer token is opaque to the client; a
//     decoded expiry is a refresh scheduling hint, never an access grant.
//   - Grant access to anything the backend does not independently re-check.
//   - Expose the Redis client or storage key layout in its public API.
//
// # Consistency contract
//
// Session.Authenticated is true iff a non-expired token and a user are
// present. Every transition that changes authentication status writes or
// clears all four persisted keys (token, refresh token, user, tenant) in one
// Redis transaction and bumps the session epoch, so stale async completions
// are discarded instead of applied.
package dashauth
