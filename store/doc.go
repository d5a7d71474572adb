// Package store persists the client's authentication state in a Redis
// key-value namespace: access token, refresh token, serialized user, and
// serialized tenant. The four keys always change together — Save and Clear
// run inside one Redis transaction — so a reader never observes a token
// without its user or vice versa.
package store
