package models

import "time"

// UserRole gates moderation actions. Only moderators and admins may
// validate AI answers or mark questions solved.
type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

// AIAssistantUsername is the reserved author account for AI-generated answers.
const AIAssistantUsername = "AI_Assistant"

// UserModel represents a site account.
type UserModel struct {
	Base
	Username      string     `json:"username"        gorm:"uniqueIndex;not null"`
	Name          string     `json:"name"`
	Avatar        string     `json:"avatar"`
	Password      string     `json:"-"`
	Mail          string     `json:"mail"`
	Role          UserRole   `json:"role"            gorm:"default:user;index"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
}

func (UserModel) TableName() string { return "users" }

// CanModerate reports whether the role may approve/reject AI answers
// and mark questions solved.
func (r UserRole) CanModerate() bool {
	return r == RoleModerator || r == RoleAdmin
}
