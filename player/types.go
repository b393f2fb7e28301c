// Package player is the interactive training delivery engine. It sequences a
// learner through a program's modules and content items, gates progression on
// watch completion and quiz results, scores quiz attempts and reports progress
// to the stores behind the interfaces in ports.go.
package player

import "time"

// ContentType values
const (
	ContentVideo    = "video"
	ContentDocument = "document"
)

// QuestionType values
const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionMultiSelect    = "multi_select"
	QuestionShortAnswer    = "short_answer"
)

// ProgressStatus values
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Enrollment status values
const (
	EnrollmentEnrolled   = "enrolled"
	EnrollmentInProgress = "in_progress"
	EnrollmentCompleted  = "completed"
)

// DefaultMinWatchPercentage applies to videos that don't set a threshold.
const DefaultMinWatchPercentage = 90

// Program is a training course. It is read-only while a session is open.
type Program struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Modules      []Module `json:"modules"`
	PassingScore int      `json:"passing_score"` // 0-100
	MaxAttempts  int      `json:"max_attempts"`  // 0 means unlimited
}

// Module is an ordered group of content items.
type Module struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	SequenceOrder int       `json:"sequence_order"`
	IsGateway     bool      `json:"is_gateway"` // informational only
	Contents      []Content `json:"contents"`
}

// Content is a single video or document unit, optionally carrying a quiz.
type Content struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	SequenceOrder      int     `json:"sequence_order"`
	ContentType        string  `json:"content_type"`
	VideoURL           string  `json:"video_url,omitempty"`
	MinWatchPercentage float64 `json:"min_watch_percentage"`
	HasQuiz            bool    `json:"has_quiz"`
	Description        string  `json:"description,omitempty"`
}

// WatchThreshold returns the effective minimum watch percentage.
func (c Content) WatchThreshold() float64 {
	if c.MinWatchPercentage <= 0 {
		return DefaultMinWatchPercentage
	}
	return c.MinWatchPercentage
}

func (c Content) IsVideo() bool { return c.ContentType == ContentVideo }

// QuizOption is one selectable answer of a question.
type QuizOption struct {
	ID         string `json:"id"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
}

// QuizQuestion belongs to the quiz of one content item.
type QuizQuestion struct {
	ID           string       `json:"id"`
	QuestionText string       `json:"question_text"`
	QuestionType string       `json:"question_type"`
	Points       int          `json:"points"`
	TopicID      string       `json:"topic_id,omitempty"`
	Options      []QuizOption `json:"options"`
	Explanation  string       `json:"explanation,omitempty"`
}

// Enrollment ties a learner to a program.
type Enrollment struct {
	ID          string     `json:"id"`
	ProgramID   string     `json:"program_id"`
	Status      string     `json:"status"`
	Progress    float64    `json:"progress"`
	FinalScore  *float64   `json:"final_score,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ContentProgress is the per enrollment and content progress record.
type ContentProgress struct {
	EnrollmentID        string  `json:"enrollment_id"`
	ContentID           string  `json:"content_id"`
	Status              string  `json:"status"`
	WatchPercentage     float64 `json:"watch_percentage"`
	LastPositionSeconds float64 `json:"last_position_seconds"`
	QuizAttempts        int     `json:"quiz_attempts"`
	QuizScore           *int    `json:"quiz_score,omitempty"`
}

func (p ContentProgress) IsCompleted() bool { return p.Status == StatusCompleted }

// AnswerInput is what the learner submitted for one question.
type AnswerInput struct {
	SelectedOptions []string `json:"selected_options,omitempty"`
	TextAnswer      string   `json:"text_answer,omitempty"`
}

// QuizAnswer is a scored answer.
type QuizAnswer struct {
	SelectedOptions  []string `json:"selected_options,omitempty"`
	TextAnswer       string   `json:"text_answer,omitempty"`
	IsCorrect        bool     `json:"is_correct"`
	PointsEarned     int      `json:"points_earned"`
	TimeTakenSeconds float64  `json:"time_taken_seconds"`
}

// QuizResults is the outcome of a completed attempt.
type QuizResults struct {
	TotalPoints      int                   `json:"total_points"`
	EarnedPoints     int                   `json:"earned_points"`
	Score            int                   `json:"score"`
	Passed           bool                  `json:"passed"`
	Answers          map[string]QuizAnswer `json:"answers"`
	WeakTopics       []string              `json:"weak_topics"`
	TimeTakenSeconds float64               `json:"time_taken_seconds"`
}

// Event types sent to the EventSink.
const (
	EventVideoComplete   = "video_complete"
	EventQuizStart       = "quiz_start"
	EventQuizComplete    = "quiz_complete"
	EventProgramComplete = "program_complete"
)

// Event is an analytics event.
type Event struct {
	ProgramID    string         `json:"program_id"`
	EnrollmentID string         `json:"enrollment_id"`
	ContentID    string         `json:"content_id,omitempty"`
	Type         string         `json:"event_type"`
	Data         map[string]any `json:"event_data,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
}
