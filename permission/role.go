package permission

// Role defines a public type used by dashauth APIs.
//
// Role instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Role string

const (
	// RoleGuest is an exported constant or variable used by the session manager.
	RoleGuest Role = "guest"
	// RoleViewer is an exported constant or variable used by the session manager.
	RoleViewer Role = "viewer"
	// RoleAnalyst is an exported constant or variable used by the session manager.
	RoleAnalyst Role = "analyst"
	// RoleAdmin is an exported constant or variable used by the session manager.
	RoleAdmin Role = "admin"
)

var roleRanks = map[Role]int{
	RoleGuest:   0,
	RoleViewer:  1,
	RoleAnalyst: 2,
	RoleAdmin:   3,
}

// Rank returns the role's position in the fixed total order
// guest(0) < viewer(1) < analyst(2) < admin(3). Unknown roles rank
// below guest so they never satisfy a minimum-role check.
func (r Role) Rank() int {
	rank, ok := roleRanks[r]
	if !ok {
		return -1
	}
	return rank
}

// Known reports whether the role is one of the four defined roles.
func (r Role) Known() bool {
	_, ok := roleRanks[r]
	return ok
}

// AtLeast reports whether r ranks greater than or equal to required.
// An unknown r is never sufficient; an unknown required is never satisfied.
func (r Role) AtLeast(required Role) bool {
	rr := r.Rank()
	req := required.Rank()
	if rr < 0 || req < 0 {
		return false
	}
	return rr >= req
}

// Outranks reports whether r ranks strictly above other.
func (r Role) Outranks(other Role) bool {
	rr := r.Rank()
	or := other.Rank()
	if rr < 0 || or < 0 {
		return false
	}
	return rr > or
}
