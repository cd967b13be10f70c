package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is an append-only record of privileged state changes. The engine
// writes entries but never reads them back for decisions.
type AuditLog struct {
	gorm.Model
	ActorID    string         `json:"actor_id" gorm:"index;default:'system'"`
	ActorRole  string         `json:"actor_role" gorm:"default:'system'"`
	Action     string         `json:"action" gorm:"index;not null"`
	EntityType string         `json:"entity_type" gorm:"not null"`
	EntityID   string         `json:"entity_id"`
	Changes    datatypes.JSON `json:"changes"`
}
