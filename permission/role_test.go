package permission

import "testing"

func TestRoleRankOrdering(t *testing.T) {
	ordered := []Role{RoleGuest, RoleViewer, RoleAnalyst, RoleAdmin}

	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Fatalf("expected %s to outrank %s", ordered[i], ordered[i-1])
		}
	}
}

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		required Role
		want     bool
	}{
		{name: "admin meets admin", role: RoleAdmin, required: RoleAdmin, want: true},
		{name: "admin meets viewer", role: RoleAdmin, required: RoleViewer, want: true},
		{name: "viewer fails admin", role: RoleViewer, required: RoleAdmin, want: false},
		{name: "viewer fails analyst", role: RoleViewer, required: RoleAnalyst, want: false},
		{name: "analyst meets viewer", role: RoleAnalyst, required: RoleViewer, want: true},
		{name: "guest meets guest", role: RoleGuest, required: RoleGuest, want: true},
		{name: "unknown role fails everything", role: Role("superuser"), required: RoleGuest, want: false},
		{name: "unknown requirement fails", role: RoleAdmin, required: Role("root"), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.role.AtLeast(tc.required); got != tc.want {
				t.Fatalf("AtLeast(%s, %s) = %v, want %v", tc.role, tc.required, got, tc.want)
			}
		})
	}
}

func TestRoleKnown(t *testing.T) {
	for _, role := range []Role{RoleGuest, RoleViewer, RoleAnalyst, RoleAdmin} {
		if !role.Known() {
			t.Fatalf("expected %s to be known", role)
		}
	}
	if Role("owner").Known() {
		t.Fatal("expected unknown role to report Known() == false")
	}
	if Role("Admin").Known() {
		t.Fatal("role names are case-sensitive")
	}
}

func TestRoleOutranks(t *testing.T) {
	if !RoleAdmin.Outranks(RoleAnalyst) {
		t.Fatal("admin should outrank analyst")
	}
	if RoleAdmin.Outranks(RoleAdmin) {
		t.Fatal("a role should not outrank itself")
	}
	if RoleGuest.Outranks(RoleViewer) {
		t.Fatal("guest should not outrank viewer")
	}
}
