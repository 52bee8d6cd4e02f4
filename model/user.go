// model/user.go
package model

import (
	"time"
)

const (
	RoleAdministrator = "Administrator"
	RoleLeader        = "Leader"
	RoleOperator      = "Operator"
)

// ValidRole reports whether role is one of the three fixed roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdministrator, RoleLeader, RoleOperator:
		return true
	}
	return false
}

type User struct {
	UserID         int       `gorm:"column:user_id;primaryKey;autoIncrement" json:"user_id"`
	Username       string    `gorm:"column:username;type:varchar(80);uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"column:email;type:varchar(120);uniqueIndex;not null" json:"email"`
	HashedPassword string    `gorm:"column:hashed_password;type:varchar(256);not null" json:"-"`
	Role           string    `gorm:"column:role;type:varchar(20);not null" json:"role"`
	FCMToken       string    `gorm:"column:fcm_token;type:varchar(255)" json:"-"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
