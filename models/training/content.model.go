package training

import "time"

// Content types
const (
	ContentVideo    = "video"
	ContentDocument = "document"
)

// Content is one item of a module: a video or a document, optionally gated by a quiz
type Content struct {
	Base
	ProgramID          string  `json:"program_id" gorm:"type:varchar(36);index;not null"`
	ModuleID           string  `json:"module_id" gorm:"type:varchar(36);index;not null"`
	Title              string  `json:"title"`
	Description        string  `json:"description" gorm:"type:text"`
	ContentType        string  `json:"content_type" gorm:"not null"` // video, document
	VideoURL           string  `json:"video_url"`                    // For video type
	DocumentURL        string  `json:"document_url"`                 // For document type
	MinWatchPercentage float64 `json:"min_watch_percentage"`         // 0 means the default of 90
	SequenceOrder      int     `json:"sequence_order" gorm:"default:0"`
	HasQuiz            bool    `json:"has_quiz" gorm:"default:false"`
	IsDeleted          bool    `gorm:"default:false"`

	Questions []QuizQuestion `json:"questions,omitempty" gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE"`
}

func (Content) TableName() string { return "training_contents" }

// ContentProgress tracks one learner's progress on one content item
type ContentProgress struct {
	Base
	EnrollmentID        string     `json:"enrollment_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_enrollment_content"`
	ContentID           string     `json:"content_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_enrollment_content"`
	Status              string     `json:"status" gorm:"default:'not_started'"` // not_started, in_progress, completed
	WatchPercentage     float64    `json:"watch_percentage" gorm:"default:0"`
	LastPositionSeconds float64    `json:"last_position_seconds" gorm:"default:0"`
	QuizAttempts        int        `json:"quiz_attempts" gorm:"default:0"`
	QuizScore           *int       `json:"quiz_score"`
	CompletedAt         *time.Time `json:"completed_at"`
}

func (ContentProgress) TableName() string { return "training_content_progress" }
