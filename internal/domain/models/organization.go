// internal/domain/models/organization.go
package models

// Institute types accepted by POST /api/setup-organization/.
var OrgTypes = []string{"School", "College", "University", "Coaching"}

// Designations offered by the onboarding wizard. "Other" requires a
// custom designation typed by the user.
var Designations = []string{
	"Principal",
	"Director",
	"Vice Principal",
	"HOD",
	"Administrator",
	"IT Head",
	"Other",
}

// OrganizationSetup is the write-once onboarding record. Submitting it
// flips the current user's is_setup_complete flag on the backend.
type OrganizationSetup struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Address     string `json:"address,omitempty"`
	Designation string `json:"designation"`
}

// ValidOrgType reports whether t is one of the accepted institute types.
func ValidOrgType(t string) bool {
	for _, v := range OrgTypes {
		if v == t {
			return true
		}
	}
	return false
}
