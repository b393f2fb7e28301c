package training

import "time"

// Enrollment statuses
const (
	EnrollmentEnrolled   = "enrolled"
	EnrollmentInProgress = "in_progress"
	EnrollmentCompleted  = "completed"
)

// Progress statuses
const (
	ProgressNotStarted = "not_started"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

// Enrollment tracks a learner's enrollment in a program with progress
type Enrollment struct {
	Base
	ProgramID   string     `json:"program_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_enrollment_program_user"`
	UserID      string     `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_enrollment_program_user"`
	Status      string     `json:"status" gorm:"default:'enrolled'"` // enrolled, in_progress, completed
	Progress    float64    `json:"progress" gorm:"default:0"`        // Completion percentage (0-100)
	FinalScore  *float64   `json:"final_score"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	IsDeleted   bool       `gorm:"default:false"`

	Program Program `json:"-" gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE"`
}

func (Enrollment) TableName() string { return "training_enrollments" }
