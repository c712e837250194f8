package domain

// Action identifies a permission-gated operation.
type Action string

const (
	ActionCreateUser    Action = "create_user"
	ActionResetPassword Action = "reset_password"
	ActionCreateTask    Action = "create_task"
	ActionAssignTask    Action = "assign_task"
)

// permissions defines which roles may perform each gated action.
var permissions = map[Action][]Role{
	ActionCreateUser:    {RoleAdmin},
	ActionResetPassword: {RoleAdmin},
	ActionCreateTask:    {RoleSupervisor, RoleAdmin},
	ActionAssignTask:    {RoleSupervisor, RoleAdmin},
}

// PermissionContext carries per-operation details the matrix consults beyond
// the actor's role. TargetRole is the role of the user receiving a task
// assignment; other actions ignore it.
type PermissionContext struct {
	TargetRole Role
}

// Permitted reports whether role may perform action. Supervisors are further
// restricted on assignment: they may only assign tasks to plain users, while
// admins may assign to anyone.
func Permitted(role Role, action Action, pctx PermissionContext) bool {
	allowed := false
	for _, r := range permissions[action] {
		if r == role {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}
	if action == ActionAssignTask && role == RoleSupervisor && pctx.TargetRole != RoleUser {
		return false
	}
	return true
}
