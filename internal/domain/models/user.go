// internal/domain/models/user.go
package models

// DefaultSiteName is used when no site branding has been configured.
const DefaultSiteName = "EduSphere"

// Role codes as issued by the EduSphere backend. The set is closed; anything
// else coming over the wire is treated as RoleStaff for UI purposes.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleOrgAdmin   = "ORG_ADMIN"
	RoleStaff      = "STAFF"
)

// User is the console's read-mostly copy of the backend's current-user
// record (GET /api/user/me/). It is rebuilt from the backend on each
// request; the console never persists it.
type User struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Role            string          `json:"role"`      // display label, e.g. "Organization Admin"
	RoleCode        string          `json:"role_code"` // SUPER_ADMIN | ORG_ADMIN | STAFF
	Organization    string          `json:"organization"`
	Designation     string          `json:"designation,omitempty"`
	OrgType         string          `json:"org_type,omitempty"`
	IsSetupComplete bool            `json:"is_setup_complete"`
	Permissions     map[string]bool `json:"permissions,omitempty"`
}
