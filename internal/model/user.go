package model

import "strings"

// Роли пользователя в группе
const (
	RoleStudent = "STUDENT"
	RoleLeader  = "GROUP_LEADER"
)

// User описывает студента так, как его хранит бэкенд
type User struct {
	ID        int64  `json:"id,omitempty"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Group     string `json:"groupName"`
	Role      string `json:"role,omitempty"`
}

// IsLeader проверяет, является ли пользователь старостой группы
func (u *User) IsLeader() bool {
	return u != nil && strings.EqualFold(u.Role, RoleLeader)
}

// FullName возвращает имя и фамилию через пробел
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
