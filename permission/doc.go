// Package permission models the dashboard's coarse authorization primitives:
// the fixed role hierarchy and server-assigned permission name sets.
//
// Roles form a total order (guest < viewer < analyst < admin) used for
// minimum-role route guards. Permissions are opaque strings granted by the
// auth backend; the client only tests membership, never interprets them.
package permission
