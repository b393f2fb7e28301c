package training

import (
	"time"

	"gorm.io/datatypes"
)

// TrainingEvent is an analytics fact recorded by the player
type TrainingEvent struct {
	Base
	ProgramID    string         `json:"program_id" gorm:"type:varchar(36);index"`
	EnrollmentID string         `json:"enrollment_id" gorm:"type:varchar(36);index:idx_event_enrollment_time,priority:1"`
	ContentID    string         `json:"content_id,omitempty" gorm:"type:varchar(36)"`
	EventType    string         `json:"event_type" gorm:"index;not null"`
	Data         datatypes.JSON `json:"data"`
	OccurredAt   time.Time      `json:"occurred_at" gorm:"index:idx_event_enrollment_time,priority:2"`
}

func (TrainingEvent) TableName() string { return "training_events" }

// All lists every training table in migration order.
func All() []interface{} {
	return []interface{}{
		&Program{},
		&Module{},
		&Content{},
		&QuizQuestion{},
		&QuizOption{},
		&Enrollment{},
		&ContentProgress{},
		&QuizAttempt{},
		&QuizAnswer{},
		&TrainingEvent{},
	}
}
