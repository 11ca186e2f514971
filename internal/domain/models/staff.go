// internal/domain/models/staff.go
package models

// Feature flags that can be granted to a staff member. The backend stores
// them as a JSON mapping of flag name to bool; flags absent from the
// mapping are treated as false.
const (
	PermManageFees     = "can_manage_fees"
	PermUploadData     = "can_upload_data"
	PermManageStudents = "can_manage_students"
)

// FeatureFlags lists the toggleable permission flags in display order.
var FeatureFlags = []struct {
	Key   string
	Label string
}{
	{PermManageFees, "Fees"},
	{PermUploadData, "Uploads"},
	{PermManageStudents, "Students"},
}

// StaffMember is one row of GET /api/staff/. Membership is scoped to the
// caller's organization by the backend.
type StaffMember struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Role        string          `json:"role"`      // display label
	RoleCode    string          `json:"role_code"` // ORG_ADMIN | STAFF | ...
	Department  string          `json:"department,omitempty"`
	Status      string          `json:"status"` // "Active" | "Invited"
	Permissions map[string]bool `json:"permissions"`
}

// HasPermission reports whether the member's mapping grants the flag.
func (m StaffMember) HasPermission(flag string) bool {
	return m.Permissions[flag]
}
