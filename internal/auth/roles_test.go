package auth

import "testing"

func TestNormalizeRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{"Admin", RoleAdmin},
		{"ADMIN", RoleAdmin},
		{" tenant ", RoleTenant},
		{"provider", RoleServiceProvider},
		{"PROVIDER", RoleServiceProvider},
		{"maintenance_provider", RoleMaintenanceProvider},
	}
	for _, tc := range cases {
		if got := NormalizeRole(tc.in); got != tc.want {
			t.Fatalf("NormalizeRole(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleOwner, RoleTenant, RoleBroker, RoleRunner, RoleSupport, RoleServiceProvider, RoleMaintenanceProvider} {
		if !r.Valid() {
			t.Fatalf("%s should be valid", r)
		}
	}
	if Role("SUPERUSER").Valid() {
		t.Fatalf("unknown role should not be valid")
	}
	if Role("admin").Valid() {
		t.Fatalf("lower-case role is not canonical until normalized")
	}
}
