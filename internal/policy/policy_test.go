package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teamflow/teamflow-api/internal/models"
)

func TestCan_Owner_AllActions(t *testing.T) {
	actions := []Action{ActionRead, ActionComment, ActionCreateChild, ActionUpdateMetadata, ActionManageMembers, ActionDelete}
	kinds := []Kind{KindTeam, KindProject, KindTask}

	for _, action := range actions {
		for _, kind := range kinds {
			assert.True(t, Can(models.RoleOwner, action, kind), "owner should be allowed %s on %s", action, kind)
		}
	}
}

func TestCan_Admin_CannotDeleteTeam(t *testing.T) {
	assert.False(t, Can(models.RoleAdmin, ActionDelete, KindTeam))
	assert.True(t, Can(models.RoleAdmin, ActionDelete, KindProject))
	assert.True(t, Can(models.RoleAdmin, ActionDelete, KindTask))
	assert.True(t, Can(models.RoleAdmin, ActionManageMembers, KindTeam))
	assert.True(t, Can(models.RoleAdmin, ActionUpdateMetadata, KindTeam))
}

func TestCan_Member(t *testing.T) {
	assert.True(t, Can(models.RoleMember, ActionRead, KindTeam))
	assert.True(t, Can(models.RoleMember, ActionComment, KindTask))

	// Members create tasks, not projects.
	assert.False(t, Can(models.RoleMember, ActionCreateChild, KindTeam))
	assert.True(t, Can(models.RoleMember, ActionCreateChild, KindProject))

	assert.False(t, Can(models.RoleMember, ActionUpdateMetadata, KindProject))
	assert.False(t, Can(models.RoleMember, ActionManageMembers, KindTeam))
	assert.False(t, Can(models.RoleMember, ActionDelete, KindTask))
}

func TestCan_NoMembership_DenyByDefault(t *testing.T) {
	actions := []Action{ActionRead, ActionComment, ActionCreateChild, ActionUpdateMetadata, ActionManageMembers, ActionDelete}
	for _, action := range actions {
		assert.False(t, Can("", action, KindTeam), "missing membership should deny %s", action)
		assert.False(t, Can("guest", action, KindTeam))
	}
}

func TestCanManageRoles(t *testing.T) {
	assert.True(t, CanManageRoles(models.RoleOwner))
	assert.False(t, CanManageRoles(models.RoleAdmin))
	assert.False(t, CanManageRoles(models.RoleMember))
	assert.False(t, CanManageRoles(""))
}

func TestAssignableRole(t *testing.T) {
	assert.True(t, AssignableRole(models.RoleAdmin))
	assert.True(t, AssignableRole(models.RoleMember))
	assert.False(t, AssignableRole(models.RoleOwner))
	assert.False(t, AssignableRole("superuser"))
}
