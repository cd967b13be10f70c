package utils

import (
	"encoding/json"
	"log"
	"skillhire/models"

	"gorm.io/gorm"
)

// WriteAuditLog appends one entry to the audit sink. The sink is best
// effort: a failed write is logged and never fails the caller.
func WriteAuditLog(db *gorm.DB, actorID, actorRole, action, entityType, entityID string, changes interface{}) {
	if actorID == "" {
		actorID = "system"
	}
	if actorRole == "" {
		actorRole = "system"
	}

	var payload []byte
	if changes != nil {
		var err error
		payload, err = json.Marshal(changes)
		if err != nil {
			log.Printf("[AUDIT] Failed to marshal changes for %s: %v", action, err)
			payload = nil
		}
	}

	entry := models.AuditLog{
		ActorID:    actorID,
		ActorRole:  actorRole,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    payload,
	}

	if err := db.Create(&entry).Error; err != nil {
		log.Printf("[AUDIT] Audit log write failed for %s: %v", action, err)
	}
}
