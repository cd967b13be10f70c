package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Progress is the single source of truth for a user's sequential access to
// a course. UnlockedModuleOrder starts at 1 and only ever increases, by
// exactly 1, when the module at the current order is fully passed.
type Progress struct {
	gorm.Model
	UserID              uint `json:"user_id" gorm:"uniqueIndex:idx_progress_user_course;not null"`
	CourseID            uint `json:"course_id" gorm:"uniqueIndex:idx_progress_user_course;not null"`
	UnlockedModuleOrder int  `json:"unlocked_module_order" gorm:"default:1"`
}

// ModuleProgress is the per-module completion state. A row may exist with
// the video watched but the quiz not yet passed. Quiz answer history is
// kept on failure so retries never lose the audit trail.
type ModuleProgress struct {
	gorm.Model
	ProgressID      uint           `json:"progress_id" gorm:"uniqueIndex:idx_module_progress;not null"`
	ModuleID        uint           `json:"module_id" gorm:"uniqueIndex:idx_module_progress;not null"`
	VideoCompleted  bool           `json:"video_completed" gorm:"default:false"`
	Answers         datatypes.JSON `json:"answers"` // per-question results from the last submission
	Score           int            `json:"score" gorm:"default:0"`
	QuizPassed      bool           `json:"quiz_passed" gorm:"default:false"`
	QuizSubmittedAt *time.Time     `json:"quiz_submitted_at"`
}
