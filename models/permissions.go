package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Action names a permission-checked operation, used in Forbidden log lines.
type Action string

const (
	ActionCreateProject Action = "project:create"
	ActionManageProject Action = "project:manage"
	ActionViewProject   Action = "project:view"
	ActionManageSprint  Action = "sprint:manage"
	ActionModifyTask    Action = "task:modify"
	ActionDeleteTask    Action = "task:delete"
	ActionLogTime       Action = "task:log-time"
	ActionUpdateUser    Action = "user:update"
	ActionAdminUser     Action = "user:admin"
)

func CanCreateProject(u *User) bool {
	return u != nil && u.IsManager()
}

// CanManageProject allows Admins and the owner. Manager team members are
// allowed too unless requireOwnerOrAdmin is set.
func CanManageProject(u *User, p *Project, requireOwnerOrAdmin bool) bool {
	if u == nil || p == nil {
		return false
	}
	if u.Role == UserRoleAdmin || p.OwnerID == u.ID {
		return true
	}
	if requireOwnerOrAdmin {
		return false
	}
	return u.Role == UserRoleManager && p.HasMember(u.ID)
}

func CanViewProject(u *User, p *Project) bool {
	if u == nil || p == nil {
		return false
	}
	return u.Role == UserRoleAdmin || p.OwnerID == u.ID || p.HasMember(u.ID)
}

func CanManageSprint(u *User, p *Project) bool {
	return CanManageProject(u, p, false)
}

func CanModifyTask(u *User, p *Project, t *Task, allowAssignee bool) bool {
	if u == nil || p == nil || t == nil {
		return false
	}
	if u.Role == UserRoleAdmin || p.OwnerID == u.ID || t.ReporterID == u.ID {
		return true
	}
	if allowAssignee && t.AssigneeID != nil && *t.AssigneeID == u.ID {
		return true
	}
	return (u.Role == UserRoleManager || u.Role == UserRoleDeveloper) && p.HasMember(u.ID)
}

func CanDeleteTask(u *User, p *Project, t *Task) bool {
	if u == nil || p == nil || t == nil {
		return false
	}
	if u.Role == UserRoleAdmin || p.OwnerID == u.ID || t.ReporterID == u.ID {
		return true
	}
	return u.Role == UserRoleManager && p.HasMember(u.ID)
}

// CanLogTime allows Admins, the owner and any team member.
func CanLogTime(u *User, p *Project) bool {
	return CanViewProject(u, p)
}

// CanUpdateUser allows users to edit themselves and Admins to edit anyone.
func CanUpdateUser(u *User, targetID primitive.ObjectID) bool {
	return u != nil && (u.ID == targetID || u.Role == UserRoleAdmin)
}

func CanAdministerUsers(u *User) bool {
	return u != nil && u.Role == UserRoleAdmin
}
