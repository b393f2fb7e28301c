package player

import (
	"fmt"
	"time"
)

// AttemptState is the lifecycle state of a quiz attempt.
type AttemptState int

const (
	AttemptNotStarted AttemptState = iota
	AttemptInProgress
	AttemptAnswerPending
	AttemptSubmitted
	AttemptComplete
)

func (s AttemptState) String() string {
	switch s {
	case AttemptNotStarted:
		return "not_started"
	case AttemptInProgress:
		return "in_progress"
	case AttemptAnswerPending:
		return "answer_pending"
	case AttemptSubmitted:
		return "submitted"
	case AttemptComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// attemptTransitions lists the legal moves out of each state.
var attemptTransitions = map[AttemptState][]AttemptState{
	AttemptNotStarted:    {AttemptInProgress},
	AttemptInProgress:    {AttemptAnswerPending, AttemptComplete},
	AttemptAnswerPending: {AttemptAnswerPending, AttemptSubmitted, AttemptComplete},
	AttemptSubmitted:     {AttemptAnswerPending, AttemptSubmitted, AttemptComplete},
	AttemptComplete:      nil,
}

// QuizAttempt is one learner's pass through a content item's quiz.
type QuizAttempt struct {
	ID           string
	EnrollmentID string
	ContentID    string
	Number       int // 1-based
	StartedAt    time.Time

	questions   []QuizQuestion
	byID        map[string]int
	state       AttemptState
	current     string
	presentedAt map[string]time.Time
	answers     map[string]QuizAnswer
	unsynced    map[string]bool

	completedAt   time.Time
	results       *QuizResults
	resultsSynced bool
}

func newQuizAttempt(id, enrollmentID, contentID string, number int, questions []QuizQuestion, now time.Time) (*QuizAttempt, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyQuiz
	}
	a := &QuizAttempt{
		ID:           id,
		EnrollmentID: enrollmentID,
		ContentID:    contentID,
		Number:       number,
		StartedAt:    now,
		questions:    append([]QuizQuestion(nil), questions...),
		byID:         make(map[string]int, len(questions)),
		presentedAt:  make(map[string]time.Time, len(questions)),
		answers:      make(map[string]QuizAnswer, len(questions)),
		unsynced:     make(map[string]bool),
	}
	for i, q := range a.questions {
		a.byID[q.ID] = i
	}
	if err := a.advance(AttemptInProgress); err != nil {
		return nil, err
	}
	if err := a.Present(a.questions[0].ID, now); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *QuizAttempt) advance(to AttemptState) error {
	for _, allowed := range attemptTransitions[a.state] {
		if allowed == to {
			a.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: attempt %s from %s to %s", ErrInvalidTransition, a.ID, a.state, to)
}

func (a *QuizAttempt) State() AttemptState { return a.state }

// Questions returns the attempt's questions in presentation order.
func (a *QuizAttempt) Questions() []QuizQuestion {
	return append([]QuizQuestion(nil), a.questions...)
}

// CurrentQuestion is the question awaiting an answer, if any.
func (a *QuizAttempt) CurrentQuestion() (QuizQuestion, bool) {
	if a.state != AttemptAnswerPending {
		return QuizQuestion{}, false
	}
	return a.questions[a.byID[a.current]], true
}

// Answers returns a copy of the answers submitted so far.
func (a *QuizAttempt) Answers() map[string]QuizAnswer {
	out := make(map[string]QuizAnswer, len(a.answers))
	for k, v := range a.answers {
		out[k] = v
	}
	return out
}

func (a *QuizAttempt) AnsweredCount() int { return len(a.answers) }

// Results is set once the attempt is complete.
func (a *QuizAttempt) Results() (QuizResults, bool) {
	if a.results == nil {
		return QuizResults{}, false
	}
	return *a.results, true
}

// Present makes questionID the current question and starts its timer.
func (a *QuizAttempt) Present(questionID string, now time.Time) error {
	if _, ok := a.byID[questionID]; !ok {
		return &UnknownQuestionError{QuestionID: questionID}
	}
	if a.state == AttemptAnswerPending && a.current == questionID {
		return nil
	}
	if err := a.advance(AttemptAnswerPending); err != nil {
		return err
	}
	a.current = questionID
	if _, seen := a.presentedAt[questionID]; !seen {
		a.presentedAt[questionID] = now
	}
	return nil
}

// Answer scores and records an answer, then presents the next unanswered
// question in order. Answering a question again replaces the earlier answer.
func (a *QuizAttempt) Answer(questionID string, in AnswerInput, now time.Time) (QuizAnswer, error) {
	idx, ok := a.byID[questionID]
	if !ok {
		return QuizAnswer{}, &UnknownQuestionError{QuestionID: questionID}
	}
	if a.state == AttemptComplete {
		return QuizAnswer{}, fmt.Errorf("%w: attempt %s is complete", ErrInvalidTransition, a.ID)
	}
	if err := a.Present(questionID, now); err != nil {
		return QuizAnswer{}, err
	}

	ans := ScoreAnswer(a.questions[idx], in)
	ans.TimeTakenSeconds = now.Sub(a.presentedAt[questionID]).Seconds()
	if err := a.advance(AttemptSubmitted); err != nil {
		return QuizAnswer{}, err
	}
	a.answers[questionID] = ans
	a.unsynced[questionID] = true

	for _, q := range a.questions[idx+1:] {
		if _, done := a.answers[q.ID]; !done {
			if err := a.Present(q.ID, now); err != nil {
				return QuizAnswer{}, err
			}
			break
		}
	}
	return ans, nil
}

// Complete scores the attempt. Unanswered questions count as incorrect.
// Calling Complete again returns the same results.
func (a *QuizAttempt) Complete(passingScore int, now time.Time) (QuizResults, error) {
	if a.results != nil {
		return *a.results, nil
	}
	if err := a.advance(AttemptComplete); err != nil {
		return QuizResults{}, err
	}
	res := Aggregate(a.questions, a.answers, passingScore)
	a.completedAt = now
	res.TimeTakenSeconds = now.Sub(a.StartedAt).Seconds()
	a.results = &res
	return res, nil
}

func (a *QuizAttempt) unsyncedAnswers() []string {
	var ids []string
	for _, q := range a.questions {
		if a.unsynced[q.ID] {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

func (a *QuizAttempt) markSynced(questionID string) { delete(a.unsynced, questionID) }

// QuizEngine owns at most one active attempt per content item for a single
// enrollment.
type QuizEngine struct {
	passingScore int
	maxAttempts  int
	active       map[string]*QuizAttempt
}

func NewQuizEngine(passingScore, maxAttempts int) *QuizEngine {
	return &QuizEngine{
		passingScore: passingScore,
		maxAttempts:  maxAttempts,
		active:       make(map[string]*QuizAttempt),
	}
}

// Active returns the attempt for contentID that has not been finished yet.
func (e *QuizEngine) Active(contentID string) (*QuizAttempt, bool) {
	a, ok := e.active[contentID]
	return a, ok
}

// CanStart reports whether a new attempt may begin for contentID. An attempt
// that is complete but not yet persisted still blocks a new one.
func (e *QuizEngine) CanStart(contentID string) error {
	if _, ok := e.active[contentID]; ok {
		return ErrAttemptInProgress
	}
	return nil
}

// Begin registers a new attempt whose id was issued by the progress store.
func (e *QuizEngine) Begin(attemptID, enrollmentID, contentID string, number int, questions []QuizQuestion, now time.Time) (*QuizAttempt, error) {
	if err := e.CanStart(contentID); err != nil {
		return nil, err
	}
	a, err := newQuizAttempt(attemptID, enrollmentID, contentID, number, questions, now)
	if err != nil {
		return nil, err
	}
	e.active[contentID] = a
	return a, nil
}

func (e *QuizEngine) Answer(contentID, questionID string, in AnswerInput, now time.Time) (QuizAnswer, error) {
	a, ok := e.active[contentID]
	if !ok {
		return QuizAnswer{}, ErrNoActiveAttempt
	}
	return a.Answer(questionID, in, now)
}

func (e *QuizEngine) Complete(contentID string, now time.Time) (QuizResults, error) {
	a, ok := e.active[contentID]
	if !ok {
		return QuizResults{}, ErrNoActiveAttempt
	}
	return a.Complete(e.passingScore, now)
}

// Finish releases a completed attempt so the next one can start.
func (e *QuizEngine) Finish(contentID string) {
	if a, ok := e.active[contentID]; ok && a.state == AttemptComplete {
		delete(e.active, contentID)
	}
}

// RemainingAttempts reports how many attempts are left after used ones, or -1
// when attempts are unlimited. The engine never blocks a retake itself.
func (e *QuizEngine) RemainingAttempts(used int) int {
	if e.maxAttempts <= 0 {
		return -1
	}
	if left := e.maxAttempts - used; left > 0 {
		return left
	}
	return 0
}

func (e *QuizEngine) PassingScore() int { return e.passingScore }

func (e *QuizEngine) MaxAttempts() int { return e.maxAttempts }
