// Package policy is the single authorization table consulted by every entry
// point. It is a pure function over (role, action, resource kind); callers
// resolve the acting user's membership row first and treat a missing row as
// deny for every action.
package policy

import "github.com/teamflow/teamflow-api/internal/models"

type Action string

const (
	ActionRead           Action = "read"
	ActionComment        Action = "comment"
	ActionCreateChild    Action = "create_child"
	ActionUpdateMetadata Action = "update_metadata"
	ActionManageMembers  Action = "manage_members"
	ActionDelete         Action = "delete"
)

type Kind string

const (
	KindTeam    Kind = "team"
	KindProject Kind = "project"
	KindTask    Kind = "task"
)

// Can reports whether a holder of role may perform action on a resource of
// the given kind. An empty role (no membership) is always denied.
func Can(role string, action Action, kind Kind) bool {
	switch role {
	case models.RoleOwner:
		return true
	case models.RoleAdmin:
		// Admins may not delete the team itself.
		return !(action == ActionDelete && kind == KindTeam)
	case models.RoleMember:
		switch action {
		case ActionRead, ActionComment:
			return true
		case ActionCreateChild:
			// Members create tasks and comments, not projects.
			return kind != KindTeam
		default:
			return false
		}
	default:
		return false
	}
}

// CanManageRoles reports whether role may change other members' roles.
// Role changes require the owner, not merely an admin.
func CanManageRoles(role string) bool {
	return role == models.RoleOwner
}

// AssignableRole reports whether a role change may set the target to role.
// Owner is never assignable directly; ownership moves only via an atomic
// transfer that demotes the current owner in the same transaction.
func AssignableRole(role string) bool {
	return role == models.RoleAdmin || role == models.RoleMember
}
