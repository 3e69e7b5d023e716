package authz

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role Role
		perm Permission
		want bool
	}{
		{RoleAdministrator, PermManageUsers, true},
		{RoleAdministrator, PermViewLogs, true},
		{RoleQualityManager, PermViewSurveys, true},
		{RoleQualityManager, PermManageUsers, false},
		{RoleQualityManager, PermViewLogs, false},
		{RoleGeneralManager, PermViewLogs, true},
		{RoleGeneralManager, PermManageDepartments, false},
		{Role("Intern"), PermViewSurveys, false},
		{Role(""), PermViewSurveys, false},
	}

	for _, tc := range tests {
		if got := HasPermission(tc.role, tc.perm); got != tc.want {
			t.Errorf("HasPermission(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestSuperAdminBypassesPolicy(t *testing.T) {
	for _, perm := range []Permission{
		PermViewSurveys,
		PermExportData,
		PermManageUsers,
		Permission("some-future-capability"),
	} {
		if !HasPermission(RoleSuperAdmin, perm) {
			t.Errorf("SuperAdmin denied %q", perm)
		}
	}
}

func TestValidAssignableRole(t *testing.T) {
	for _, role := range AssignableRoles {
		if !ValidAssignableRole(role) {
			t.Errorf("expected %q to be assignable", role)
		}
	}
	if ValidAssignableRole(RoleSuperAdmin) {
		t.Error("SuperAdmin must not be assignable")
	}
	if ValidAssignableRole(Role("Viewer")) {
		t.Error("unknown role must not be assignable")
	}
}
