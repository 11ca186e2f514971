package authz_test

import (
	"testing"

	"github.com/edusphere/console/internal/app/system/authz"
	"github.com/edusphere/console/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func TestCanManageStaff(t *testing.T) {
	assert.True(t, authz.CanManageStaff(models.RoleOrgAdmin))
	assert.True(t, authz.CanManageStaff(models.RoleSuperAdmin))
	assert.False(t, authz.CanManageStaff(models.RoleStaff))
	assert.False(t, authz.CanManageStaff(""))
}

func TestOrgAdminIsProtected(t *testing.T) {
	orgAdmin := models.StaffMember{RoleCode: models.RoleOrgAdmin}
	staff := models.StaffMember{RoleCode: models.RoleStaff}

	assert.False(t, authz.CanEditPermissions(orgAdmin))
	assert.False(t, authz.CanDeleteMember(orgAdmin))
	assert.True(t, authz.CanEditPermissions(staff))
	assert.True(t, authz.CanDeleteMember(staff))
}

func TestMenuFor_Admin(t *testing.T) {
	u := &models.User{RoleCode: models.RoleOrgAdmin}

	paths := menuPaths(authz.MenuFor(u))
	assert.Equal(t, []string{"/", "/students", "/fees", "/upload", "/research", "/staff"}, paths)
}

func TestMenuFor_StaffWithFlags(t *testing.T) {
	u := &models.User{
		RoleCode: models.RoleStaff,
		Permissions: map[string]bool{
			models.PermManageFees: true,
		},
	}

	paths := menuPaths(authz.MenuFor(u))
	assert.Equal(t, []string{"/", "/fees", "/research"}, paths)
	assert.NotContains(t, paths, "/staff")
}

func TestMenuFor_Nil(t *testing.T) {
	assert.Nil(t, authz.MenuFor(nil))
}

func menuPaths(items []authz.MenuItem) []string {
	paths := make([]string, 0, len(items))
	for _, it := range items {
		paths = append(paths, it.Path)
	}
	return paths
}
