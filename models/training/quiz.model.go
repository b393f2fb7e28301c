package training

import (
	"time"

	"gorm.io/datatypes"
)

// Question types
const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionMultiSelect    = "multi_select"
	QuestionShortAnswer    = "short_answer"
)

// Attempt statuses
const (
	AttemptInProgress = "in_progress"
	AttemptCompleted  = "completed"
	AttemptAbandoned  = "abandoned"
)

// QuizQuestion belongs to the quiz of one content item
type QuizQuestion struct {
	Base
	ContentID    string       `json:"content_id" gorm:"type:varchar(36);index;not null"`
	QuestionText string       `json:"question_text" gorm:"type:text"`
	QuestionType string       `json:"question_type" gorm:"not null"`
	Points       int          `json:"points"`
	TopicID      string       `json:"topic_id" gorm:"index"`
	Explanation  string       `json:"explanation" gorm:"type:text"`
	OrderIndex   int          `json:"order_index" gorm:"default:0"`
	IsDeleted    bool         `gorm:"default:false"`
	Options      []QuizOption `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (QuizQuestion) TableName() string { return "training_quiz_questions" }

// QuizOption is a selectable answer of a choice question
type QuizOption struct {
	Base
	QuestionID string `json:"question_id" gorm:"type:varchar(36);index;not null"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	IsDeleted  bool   `gorm:"default:false"`
}

func (QuizOption) TableName() string { return "training_quiz_options" }

// QuizAttempt is one pass through a content item's quiz
type QuizAttempt struct {
	Base
	EnrollmentID     string         `json:"enrollment_id" gorm:"type:varchar(36);index:idx_attempt_enrollment_content;not null"`
	ContentID        string         `json:"content_id" gorm:"type:varchar(36);index:idx_attempt_enrollment_content;not null"`
	AttemptNumber    int            `json:"attempt_number" gorm:"default:1"`
	Status           string         `json:"status" gorm:"default:'in_progress'"` // in_progress, completed, abandoned
	StartedAt        time.Time      `json:"started_at"`
	CompletedAt      *time.Time     `json:"completed_at"`
	TotalPoints      int            `json:"total_points"`
	EarnedPoints     int            `json:"earned_points"`
	Score            int            `json:"score"`
	Passed           bool           `json:"passed" gorm:"default:false"`
	WeakTopics       datatypes.JSON `json:"weak_topics"` // JSON array of topic ids
	TimeTakenSeconds float64        `json:"time_taken_seconds"`

	Answers []QuizAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE"`
}

func (QuizAttempt) TableName() string { return "training_quiz_attempts" }

// QuizAnswer is the recorded answer to one question of an attempt
type QuizAnswer struct {
	Base
	AttemptID        string         `json:"attempt_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_answer_attempt_question"`
	QuestionID       string         `json:"question_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_answer_attempt_question"`
	SelectedOptions  datatypes.JSON `json:"selected_options"` // JSON array of selected option IDs
	TextAnswer       string         `json:"text_answer" gorm:"type:text"`
	IsCorrect        bool           `json:"is_correct" gorm:"default:false"`
	PointsEarned     int            `json:"points_earned"`
	TimeTakenSeconds float64        `json:"time_taken_seconds"`
}

func (QuizAnswer) TableName() string { return "training_quiz_answers" }
