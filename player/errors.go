package player

import (
	"errors"
	"fmt"
)

var (
	// ErrProgramNotReady is returned when a program has no modules. Callers
	// should show a "not ready" state rather than an error page.
	ErrProgramNotReady     = errors.New("program has no modules")
	ErrEmptyQuiz           = errors.New("quiz has no questions")
	ErrAttemptInProgress   = errors.New("a quiz attempt is already in progress for this content")
	ErrNoActiveAttempt     = errors.New("no quiz attempt in progress for this content")
	ErrQuizNotEligible     = errors.New("quiz is not available until the video is watched")
	ErrNoQuiz              = errors.New("content has no quiz")
	ErrNotVideo            = errors.New("content is not a video")
	ErrNotDocument         = errors.New("content is not a document")
	ErrEnrollmentCompleted = errors.New("enrollment is already completed")
	ErrProgramIncomplete   = errors.New("last content item is not completed")
	ErrContentNotFound     = errors.New("content not found in program")
	ErrInvalidTransition   = errors.New("invalid state transition")
	// ErrSessionClosed is returned by a session that was closed while a
	// caller still held it. Callers reopen through the Registry.
	ErrSessionClosed = errors.New("player session is closed")
)

// Position addresses a content item by module and content index.
type Position struct {
	Module  int `json:"module_index"`
	Content int `json:"content_index"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Module, p.Content)
}

// LockedContentError is returned when navigating to or interacting with a
// locked content item. It is a user-facing warning.
type LockedContentError struct {
	Position  Position
	ContentID string
}

func (e *LockedContentError) Error() string {
	return fmt.Sprintf("content %s at %s is locked", e.ContentID, e.Position)
}

// UnknownQuestionError is returned for answers to questions outside the
// active attempt.
type UnknownQuestionError struct {
	QuestionID string
}

func (e *UnknownQuestionError) Error() string {
	return fmt.Sprintf("question %q does not belong to the active attempt", e.QuestionID)
}

// ConfigurationError reports a malformed program graph.
type ConfigurationError struct {
	ProgramID string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("program %s is misconfigured: %s", e.ProgramID, e.Reason)
}

// PersistenceError wraps a failed store call. The in-memory state that led to
// the call is kept so the operation can be retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ErrorKind groups errors by how callers should react to them.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindConfiguration
	KindUsage
	KindTransient
	KindNotReady
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindUsage:
		return "usage"
	case KindTransient:
		return "transient"
	case KindNotReady:
		return "not_ready"
	default:
		return "unknown"
	}
}

// Classify reports the kind of an engine error.
func Classify(err error) ErrorKind {
	var (
		locked  *LockedContentError
		unknown *UnknownQuestionError
		cfg     *ConfigurationError
		persist *PersistenceError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &cfg):
		return KindConfiguration
	case errors.As(err, &persist):
		return KindTransient
	case errors.Is(err, ErrProgramNotReady):
		return KindNotReady
	case errors.As(err, &locked), errors.As(err, &unknown),
		errors.Is(err, ErrEmptyQuiz),
		errors.Is(err, ErrAttemptInProgress),
		errors.Is(err, ErrNoActiveAttempt),
		errors.Is(err, ErrQuizNotEligible),
		errors.Is(err, ErrNoQuiz),
		errors.Is(err, ErrNotVideo),
		errors.Is(err, ErrNotDocument),
		errors.Is(err, ErrEnrollmentCompleted),
		errors.Is(err, ErrSessionClosed),
		errors.Is(err, ErrProgramIncomplete),
		errors.Is(err, ErrContentNotFound),
		errors.Is(err, ErrInvalidTransition):
		return KindUsage
	default:
		return KindUnknown
	}
}
