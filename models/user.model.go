package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles. Role is the authority source for every gate in the engine.
const (
	RoleLearner   = "learner"
	RoleCandidate = "candidate"
	RoleEmployer  = "employer"
	RoleAdmin     = "admin"
)

// Account statuses
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusInactive  = "inactive"
)

// ValidRoles lists every role a user may sign up with.
var ValidRoles = []string{RoleLearner, RoleCandidate, RoleEmployer, RoleAdmin}

type User struct {
	gorm.Model
	Name               string     `json:"name" gorm:"default:''"`
	Email              string     `json:"email" gorm:"unique;not null"`
	Mobile             string     `json:"mobile" gorm:"default:''"`
	Role               string     `json:"role" gorm:"default:'learner'"`
	Status             string     `json:"status" gorm:"default:'active'"`
	Password           string     `json:"-" gorm:"not null"`
	SubscriptionActive bool       `json:"subscription_active" gorm:"default:false"`
	ProfileComplete    bool       `json:"profile_complete" gorm:"default:false"`
	LastLogin          *time.Time `json:"last_login"`
	IsDeleted          bool       `gorm:"default:false"`
}

// IsValidRole reports whether role is one of the known user roles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
