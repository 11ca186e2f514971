// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/edusphere/console/internal/app/system/auth"
	"github.com/edusphere/console/internal/domain/models"
)

// Role and feature checks are pure functions of (role code, feature) so
// they can be tested without any rendering. Enforcement here is UI-level
// only; the backend re-checks every mutation.

// IsAdminRole reports whether code carries organization-admin privileges.
func IsAdminRole(code string) bool {
	return code == models.RoleOrgAdmin || code == models.RoleSuperAdmin
}

// CanManageStaff reports whether a user with the role code may open the
// staff management page. Mirrors the backend's admin gate on /api/staff/.
func CanManageStaff(code string) bool {
	return IsAdminRole(code)
}

// CanEditPermissions reports whether a member's permission toggles are
// editable. ORG_ADMIN members are exempt from permission edits.
func CanEditPermissions(target models.StaffMember) bool {
	return target.RoleCode != models.RoleOrgAdmin
}

// CanDeleteMember reports whether a member may be removed through the UI.
// ORG_ADMIN members cannot be deleted here.
func CanDeleteMember(target models.StaffMember) bool {
	return target.RoleCode != models.RoleOrgAdmin
}

// IsAdmin reports whether the current request's user is an org or super
// admin.
func IsAdmin(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && IsAdminRole(u.RoleCode)
}

// UserCtx returns the current user's role code, name, and a found flag.
// Without a signed-in user it returns ("", "", false).
func UserCtx(r *http.Request) (roleCode string, name string, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return "", "", false
	}
	return u.RoleCode, u.Name, true
}

// MenuItem is one sidebar entry.
type MenuItem struct {
	Label string
	Path  string
	Icon  string
}

// MenuFor returns the sidebar entries visible to the user. Admins see
// everything; staff see only the modules their permission flags grant.
func MenuFor(u *models.User) []MenuItem {
	if u == nil {
		return nil
	}

	items := []MenuItem{{Label: "Dashboard", Path: "/", Icon: "dashboard"}}

	admin := IsAdminRole(u.RoleCode)
	if admin || u.Permissions[models.PermManageStudents] {
		items = append(items, MenuItem{Label: "Students", Path: "/students", Icon: "students"})
	}
	if admin || u.Permissions[models.PermManageFees] {
		items = append(items, MenuItem{Label: "Fees", Path: "/fees", Icon: "fees"})
	}
	if admin || u.Permissions[models.PermUploadData] {
		items = append(items, MenuItem{Label: "Upload Data", Path: "/upload", Icon: "upload"})
	}
	items = append(items, MenuItem{Label: "Research AI", Path: "/research", Icon: "research"})
	if admin {
		items = append(items, MenuItem{Label: "Staff", Path: "/staff", Icon: "staff"})
	}
	return items
}
