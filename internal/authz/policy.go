package authz

// Role is the closed set of account roles. Roles are stored on the user row
// and act as the lookup key into the permission policy.
type Role string

const (
	RoleSuperAdmin     Role = "SuperAdmin"
	RoleAdministrator  Role = "Administrator"
	RoleQualityManager Role = "QualityManager"
	RoleGeneralManager Role = "GeneralManager"
)

// Permission names a capability checked by handlers and middleware.
type Permission string

const (
	PermViewSurveys       Permission = "view-surveys"
	PermExportData        Permission = "export-data"
	PermViewStatistics    Permission = "view-statistics"
	PermManageUsers       Permission = "manage-users"
	PermManageDepartments Permission = "manage-departments"
	PermViewLogs          Permission = "view-logs"
)

// rolePermissions maps each role to its granted permissions. SuperAdmin is
// intentionally absent: it is handled by an unconditional short-circuit in
// HasPermission so that new permissions never require a policy update.
var rolePermissions = map[Role]map[Permission]struct{}{
	RoleAdministrator: permSet(
		PermViewSurveys,
		PermExportData,
		PermViewStatistics,
		PermManageUsers,
		PermManageDepartments,
		PermViewLogs,
	),
	RoleQualityManager: permSet(
		PermViewSurveys,
		PermExportData,
		PermViewStatistics,
	),
	RoleGeneralManager: permSet(
		PermViewSurveys,
		PermExportData,
		PermViewStatistics,
		PermViewLogs,
	),
}

func permSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// HasPermission reports whether role may perform perm. Unknown roles are
// denied.
func HasPermission(role Role, perm Permission) bool {
	if role == RoleSuperAdmin {
		return true
	}
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = perms[perm]
	return ok
}

// AssignableRoles are the roles an administrator may grant when creating or
// updating an account. SuperAdmin exists only as the configured privileged
// identity and is never stored.
var AssignableRoles = []Role{
	RoleAdministrator,
	RoleQualityManager,
	RoleGeneralManager,
}

// ValidAssignableRole reports whether role can be stored on a user row.
func ValidAssignableRole(role Role) bool {
	for _, r := range AssignableRoles {
		if r == role {
			return true
		}
	}
	return false
}
