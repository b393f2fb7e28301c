package player

import "context"

// ContentRepository supplies programs and quiz questions.
type ContentRepository interface {
	FetchProgram(ctx context.Context, programID string) (Program, error)
	FetchQuestions(ctx context.Context, contentID string) ([]QuizQuestion, error)
}

// ProgressStore persists per-content progress and quiz attempts.
//
// UpdateVideoProgress must apply a compare-and-set: a write whose
// watchPercentage is lower than the stored value must not lower it.
type ProgressStore interface {
	GetProgress(ctx context.Context, enrollmentID string) ([]ContentProgress, error)
	UpdateVideoProgress(ctx context.Context, enrollmentID, contentID string, watchPercentage, positionSeconds float64) error
	CompleteContent(ctx context.Context, enrollmentID, contentID string) error
	StartQuizAttempt(ctx context.Context, enrollmentID, contentID string) (string, error)
	SubmitQuizAnswer(ctx context.Context, attemptID, questionID string, answer QuizAnswer) error
	CompleteQuizAttempt(ctx context.Context, attemptID string, results QuizResults) error
}

// EnrollmentStore persists enrollment lifecycle changes. StartEnrollment must
// be idempotent.
type EnrollmentStore interface {
	GetEnrollment(ctx context.Context, enrollmentID string) (Enrollment, error)
	StartEnrollment(ctx context.Context, enrollmentID string) error
	UpdateEnrollmentProgress(ctx context.Context, enrollmentID string, progress float64) error
	CompleteEnrollment(ctx context.Context, enrollmentID string, finalScore float64) error
}

// EventSink receives analytics events. TrackEvent must not block on I/O.
type EventSink interface {
	TrackEvent(ctx context.Context, event Event)
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) TrackEvent(context.Context, Event) {}
