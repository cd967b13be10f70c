package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Module is one gated step in a course. OrderIndex is a dense positive
// integer, unique within the course; learners move through modules in
// OrderIndex order.
type Module struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
	OrderIndex  int    `json:"order_index" gorm:"default:1"`
	IsDeleted   bool   `gorm:"default:false"`
}

// ModuleQuestion is one multiple-choice quiz question with its answer key.
type ModuleQuestion struct {
	gorm.Model
	ModuleID     uint           `json:"module_id" gorm:"index;not null"`
	OrderIndex   int            `json:"order_index" gorm:"default:0"`
	Question     string         `json:"question"`
	Options      datatypes.JSON `json:"options"` // JSON array of option strings
	CorrectIndex int            `json:"correct_index"`
	IsDeleted    bool           `gorm:"default:false"`
}
