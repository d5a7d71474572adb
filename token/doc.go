// Package token decodes the claims the auth backend embeds in its bearer
// tokens. Decoding is deliberately unverified: the client holds no signing
// key and must not pretend to. The decoded expiry is a scheduling hint for
// proactive refresh; the backend re-checks every authenticated call itself.
//
// Sign exists for the in-process mock backend and tests only — production
// tokens are always minted server-side.
package token
