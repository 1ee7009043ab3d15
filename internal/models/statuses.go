package models

type UserRole string
type TaskStatus string

const (
	UserRoleClient     UserRole = "client"
	UserRoleFreelancer UserRole = "freelancer"
	UserRoleAdmin      UserRole = "admin"

	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// RegistrableRoles - роли, доступные при регистрации (admin создается только сидом)
var RegistrableRoles = []UserRole{UserRoleClient, UserRoleFreelancer}

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleClient, UserRoleFreelancer, UserRoleAdmin:
		return true
	}
	return false
}

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}
