// Package authclient implements the dashauth.Backend contract twice: Client
// speaks HTTP to the real auth backend, and Mock resolves against an
// in-process fixture table after a fixed delay. Both are interchangeable
// behind the interface, so the dashboard can run without a backend during
// development and swap in the real endpoints per build environment.
package authclient
