package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Dependencies are the collaborators a Session talks to.
type Dependencies struct {
	Content     ContentRepository
	Progress    ProgressStore
	Enrollments EnrollmentStore
	Events      EventSink
	Logger      *slog.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
	// WatchWriteInterval is the minimum spacing of watch-progress writes per
	// content item. Zero writes every sample.
	WatchWriteInterval time.Duration
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Events == nil {
		d.Events = NopSink{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return d
}

// VideoUpdate is the result of one recorded video sample.
type VideoUpdate struct {
	WatchSample
	Ignored          bool    `json:"ignored"`
	Persisted        bool    `json:"persisted"`
	QuizEligible     bool    `json:"quiz_eligible"`
	ContentCompleted bool    `json:"content_completed"`
	OverallProgress  float64 `json:"overall_progress"`
}

// QuizStatus describes the quiz of one content item for the learner.
type QuizStatus struct {
	ContentID         string         `json:"content_id"`
	AttemptID         string         `json:"attempt_id,omitempty"`
	AttemptNumber     int            `json:"attempt_number,omitempty"`
	State             string         `json:"state"`
	AttemptsUsed      int            `json:"attempts_used"`
	MaxAttempts       int            `json:"max_attempts"`
	RemainingAttempts int            `json:"remaining_attempts"` // -1 when unlimited
	PassingScore      int            `json:"passing_score"`
	QuizScore         *int           `json:"quiz_score,omitempty"`
	CurrentQuestionID string         `json:"current_question_id,omitempty"`
	Answered          int            `json:"answered"`
	Questions         []QuizQuestion `json:"questions,omitempty"`
}

// Session is one learner's player session for an enrollment. It coordinates
// the graph, navigation, video monitors and quiz engine, and is the only
// writer of the enrollment's progress while open. All methods are serialized.
type Session struct {
	mu   sync.Mutex
	deps Dependencies
	log  *slog.Logger

	enrollment Enrollment
	program    Program
	graph      *ContentGraph
	nav        *NavigationController
	quiz       *QuizEngine
	monitors   map[string]*VideoWatchMonitor
	progress   map[string]*ContentProgress
	throttle   *watchThrottle

	// pendingCompletions holds content completed in memory whose
	// CompleteContent call failed.
	pendingCompletions map[string]bool

	overall         float64
	programFinished bool
	completed       bool
	finalScore      float64
	// closed is set once Close has flushed; the Registry no longer holds
	// the session and every call fails with ErrSessionClosed.
	closed bool
}

// Open loads the enrollment, its program and its progress, starts the
// enrollment if needed and places the cursor on the first unlocked item that
// is not completed.
func Open(ctx context.Context, deps Dependencies, enrollmentID string) (*Session, error) {
	deps = deps.withDefaults()

	enrollment, err := deps.Enrollments.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, &PersistenceError{Op: "get enrollment", Err: err}
	}
	program, err := deps.Content.FetchProgram(ctx, enrollment.ProgramID)
	if err != nil {
		return nil, &PersistenceError{Op: "fetch program", Err: err}
	}
	graph := NewContentGraph(program)
	if !graph.Ready() {
		return nil, ErrProgramNotReady
	}
	rows, err := deps.Progress.GetProgress(ctx, enrollmentID)
	if err != nil {
		return nil, &PersistenceError{Op: "get progress", Err: err}
	}

	s := &Session{
		deps:               deps,
		log:                deps.Logger.With("enrollment_id", enrollmentID, "program_id", program.ID),
		enrollment:         enrollment,
		program:            program,
		graph:              graph,
		quiz:               NewQuizEngine(program.PassingScore, program.MaxAttempts),
		monitors:           make(map[string]*VideoWatchMonitor),
		progress:           make(map[string]*ContentProgress, len(rows)),
		throttle:           newWatchThrottle(deps.WatchWriteInterval),
		pendingCompletions: make(map[string]bool),
		completed:          enrollment.Status == EnrollmentCompleted,
	}
	for i := range rows {
		row := rows[i]
		s.progress[row.ContentID] = &row
	}
	if s.completed {
		s.programFinished = true
		if enrollment.FinalScore != nil {
			s.finalScore = *enrollment.FinalScore
		}
	} else {
		s.reconcileWatchedVideos()
	}

	first, ok := graph.First()
	if !ok {
		return nil, &ConfigurationError{ProgramID: program.ID, Reason: "program has no content"}
	}
	s.nav, err = NewNavigationController(graph, s.isCompleted, first)
	if err != nil {
		return nil, err
	}
	if resume, err := s.nav.ResumePosition(); err != nil {
		s.log.Warn("cannot compute resume position", "error", err)
	} else if _, err := s.nav.JumpTo(resume.Module, resume.Content); err != nil {
		s.log.Warn("cannot move to resume position", "position", resume.String(), "error", err)
	}
	s.overall = s.computeOverall()

	if err := s.start(ctx); err != nil {
		return nil, err
	}
	s.log.Info("player session opened", "cursor", s.nav.Cursor().String(), "progress", s.overall)
	return s, nil
}

// Start marks the enrollment started. It is safe to call on every open and
// never resets progress.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.start(ctx)
}

func (s *Session) start(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.completed {
		return nil
	}
	if err := s.deps.Enrollments.StartEnrollment(ctx, s.enrollment.ID); err != nil {
		persistenceFailures.WithLabelValues("start_enrollment").Inc()
		return &PersistenceError{Op: "start enrollment", Err: err}
	}
	if s.enrollment.Status == "" || s.enrollment.Status == EnrollmentEnrolled {
		s.enrollment.Status = EnrollmentInProgress
	}
	return nil
}

func (s *Session) EnrollmentID() string { return s.enrollment.ID }

func (s *Session) Program() Program { return s.program }

func (s *Session) Cursor() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Cursor()
}

// OverallProgress is completed content over total content, as a percentage.
func (s *Session) OverallProgress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overall
}

func (s *Session) IsCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// FinalScore is meaningful once the enrollment is completed.
func (s *Session) FinalScore() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalScore
}

// Progress returns a copy of the progress of one content item.
func (s *Session) Progress(contentID string) (ContentProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[contentID]
	if !ok {
		return ContentProgress{}, false
	}
	return *p, true
}

func (s *Session) guard() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.completed {
		return ErrEnrollmentCompleted
	}
	return nil
}

func (s *Session) isCompleted(contentID string) bool {
	p, ok := s.progress[contentID]
	return ok && p.IsCompleted()
}

func (s *Session) progressFor(contentID string) *ContentProgress {
	p, ok := s.progress[contentID]
	if !ok {
		p = &ContentProgress{
			EnrollmentID: s.enrollment.ID,
			ContentID:    contentID,
			Status:       StatusNotStarted,
		}
		s.progress[contentID] = p
	}
	return p
}

func (s *Session) touch(p *ContentProgress) {
	if p.Status == StatusNotStarted || p.Status == "" {
		p.Status = StatusInProgress
	}
}

// unlockedContent resolves contentID and rejects it when it is locked.
func (s *Session) unlockedContent(contentID string) (Content, Position, error) {
	pos, ok := s.graph.Locate(contentID)
	if !ok {
		return Content{}, Position{}, fmt.Errorf("%w: %s", ErrContentNotFound, contentID)
	}
	content, _ := s.graph.ContentAt(pos.Module, pos.Content)
	if err := s.nav.CheckUnlocked(pos); err != nil {
		s.noteLocked(err)
		return Content{}, Position{}, err
	}
	return content, pos, nil
}

func (s *Session) noteLocked(err error) {
	var locked *LockedContentError
	if errors.As(err, &locked) {
		lockedRejections.Inc()
		s.log.Warn("locked content rejected", "content_id", locked.ContentID, "position", locked.Position.String())
	}
}

func (s *Session) monitorFor(c Content) *VideoWatchMonitor {
	m, ok := s.monitors[c.ID]
	if !ok {
		var persisted float64
		if p, ok := s.progress[c.ID]; ok {
			persisted = p.WatchPercentage
		}
		m = NewVideoWatchMonitor(c.WatchThreshold(), persisted)
		s.monitors[c.ID] = m
	}
	return m
}

func (s *Session) track(ctx context.Context, contentID, eventType string, data map[string]any) {
	s.deps.Events.TrackEvent(ctx, Event{
		ProgramID:    s.program.ID,
		EnrollmentID: s.enrollment.ID,
		ContentID:    contentID,
		Type:         eventType,
		Data:         data,
		OccurredAt:   s.deps.Clock(),
	})
}

// RecordVideoSample feeds one player time update for a video. The threshold is
// evaluated on every sample; writes to the progress store are throttled.
func (s *Session) RecordVideoSample(ctx context.Context, contentID string, currentSeconds, durationSeconds float64) (VideoUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return VideoUpdate{}, err
	}
	content, _, err := s.unlockedContent(contentID)
	if err != nil {
		return VideoUpdate{}, err
	}
	if !content.IsVideo() {
		return VideoUpdate{}, fmt.Errorf("%w: %s", ErrNotVideo, contentID)
	}

	m := s.monitorFor(content)
	sample, ok := m.Sample(currentSeconds, durationSeconds)
	if !ok {
		return VideoUpdate{Ignored: true, OverallProgress: s.overall}, nil
	}

	p := s.progressFor(contentID)
	s.touch(p)
	p.WatchPercentage = sample.MaxWatched
	p.LastPositionSeconds = sample.PositionSeconds

	upd := VideoUpdate{WatchSample: sample, QuizEligible: content.HasQuiz && m.Reached()}
	now := s.deps.Clock()
	var errs []error
	if sample.Completed || s.throttle.allow(contentID, now) {
		if err := s.deps.Progress.UpdateVideoProgress(ctx, s.enrollment.ID, contentID, sample.MaxWatched, sample.PositionSeconds); err != nil {
			persistenceFailures.WithLabelValues("update_video_progress").Inc()
			s.throttle.hold(contentID, pendingWatch{percentage: sample.MaxWatched, position: sample.PositionSeconds})
			errs = append(errs, &PersistenceError{Op: "update video progress", Err: err})
		} else {
			s.throttle.clear(contentID)
			upd.Persisted = true
		}
	} else {
		s.throttle.hold(contentID, pendingWatch{percentage: sample.MaxWatched, position: sample.PositionSeconds})
	}

	if sample.Completed {
		videoCompletions.Inc()
		s.log.Info("video watch threshold reached", "content_id", contentID, "max_watched", sample.MaxWatched, "threshold", m.Threshold())
		s.track(ctx, contentID, EventVideoComplete, map[string]any{
			"watch_percentage": sample.MaxWatched,
			"threshold":        m.Threshold(),
		})
		if !content.HasQuiz {
			if err := s.completeContent(ctx, contentID); err != nil {
				errs = append(errs, err)
			}
			upd.ContentCompleted = true
		}
	}
	upd.OverallProgress = s.overall
	return upd, errors.Join(errs...)
}

// CompleteDocument records that the learner read a document. Documents
// without a quiz complete immediately; documents with a quiz complete when
// the quiz is passed, so completed is false for them.
func (s *Session) CompleteDocument(ctx context.Context, contentID string) (completed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return false, err
	}
	content, _, err := s.unlockedContent(contentID)
	if err != nil {
		return false, err
	}
	if content.ContentType != ContentDocument {
		return false, fmt.Errorf("%w: %s", ErrNotDocument, contentID)
	}
	p := s.progressFor(contentID)
	if p.IsCompleted() {
		return true, nil
	}
	s.touch(p)
	if content.HasQuiz {
		return false, nil
	}
	if err := s.completeContent(ctx, contentID); err != nil {
		return true, err
	}
	return true, nil
}

// completeContent marks contentID completed in memory and in the store, then
// refreshes overall progress. A failed store call is kept for Flush.
func (s *Session) completeContent(ctx context.Context, contentID string) error {
	p := s.progressFor(contentID)
	p.Status = StatusCompleted
	s.overall = s.computeOverall()

	var errs []error
	if err := s.deps.Progress.CompleteContent(ctx, s.enrollment.ID, contentID); err != nil {
		persistenceFailures.WithLabelValues("complete_content").Inc()
		s.pendingCompletions[contentID] = true
		errs = append(errs, &PersistenceError{Op: "complete content", Err: err})
	} else {
		delete(s.pendingCompletions, contentID)
	}
	s.log.Info("content completed", "content_id", contentID, "progress", s.overall)

	if err := s.deps.Enrollments.UpdateEnrollmentProgress(ctx, s.enrollment.ID, s.overall); err != nil {
		persistenceFailures.WithLabelValues("update_enrollment_progress").Inc()
		s.log.Warn("enrollment progress not saved", "error", err)
	}
	return errors.Join(errs...)
}

// reconcileWatchedVideos completes quiz-less videos whose stored watch
// percentage already meets the threshold but whose completion was never
// recorded. The store write is left to Flush.
func (s *Session) reconcileWatchedVideos() {
	s.graph.Each(func(_ Position, c Content) {
		p, ok := s.progress[c.ID]
		if !ok || !c.IsVideo() || c.HasQuiz || p.IsCompleted() {
			return
		}
		if p.WatchPercentage >= c.WatchThreshold() {
			p.Status = StatusCompleted
			s.pendingCompletions[c.ID] = true
			s.log.Info("completing video watched in an earlier session", "content_id", c.ID)
		}
	})
}

func (s *Session) computeOverall() float64 {
	total := s.graph.TotalContent()
	if total == 0 {
		return 0
	}
	done := 0
	s.graph.Each(func(_ Position, c Content) {
		if s.isCompleted(c.ID) {
			done++
		}
	})
	return float64(done) / float64(total) * 100
}

// StartQuiz begins a new attempt for the quiz of contentID.
func (s *Session) StartQuiz(ctx context.Context, contentID string) (QuizStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return QuizStatus{}, err
	}
	content, _, err := s.unlockedContent(contentID)
	if err != nil {
		return QuizStatus{}, err
	}
	if !content.HasQuiz {
		return QuizStatus{}, fmt.Errorf("%w: %s", ErrNoQuiz, contentID)
	}
	if content.IsVideo() && !s.monitorFor(content).Reached() {
		return QuizStatus{}, fmt.Errorf("%w: %s", ErrQuizNotEligible, contentID)
	}
	if err := s.quiz.CanStart(contentID); err != nil {
		return QuizStatus{}, err
	}

	questions, err := s.deps.Content.FetchQuestions(ctx, contentID)
	if err != nil {
		return QuizStatus{}, &PersistenceError{Op: "fetch questions", Err: err}
	}
	if len(questions) == 0 {
		return QuizStatus{}, fmt.Errorf("%w: %s", ErrEmptyQuiz, contentID)
	}
	attemptID, err := s.deps.Progress.StartQuizAttempt(ctx, s.enrollment.ID, contentID)
	if err != nil {
		persistenceFailures.WithLabelValues("start_quiz_attempt").Inc()
		return QuizStatus{}, &PersistenceError{Op: "start quiz attempt", Err: err}
	}

	p := s.progressFor(contentID)
	attempt, err := s.quiz.Begin(attemptID, s.enrollment.ID, contentID, p.QuizAttempts+1, questions, s.deps.Clock())
	if err != nil {
		return QuizStatus{}, err
	}
	s.touch(p)
	s.log.Info("quiz attempt started", "content_id", contentID, "attempt_id", attemptID, "attempt_number", attempt.Number)
	s.track(ctx, contentID, EventQuizStart, map[string]any{
		"attempt_id":     attemptID,
		"attempt_number": attempt.Number,
	})

	st := s.quizStatus(contentID)
	st.Questions = attempt.Questions()
	return st, nil
}

// SubmitAnswer scores and records one answer of the active attempt. When the
// store call fails the answer is kept and re-sent by CompleteQuiz.
func (s *Session) SubmitAnswer(ctx context.Context, contentID, questionID string, in AnswerInput) (QuizAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return QuizAnswer{}, err
	}
	attempt, ok := s.quiz.Active(contentID)
	if !ok {
		return QuizAnswer{}, ErrNoActiveAttempt
	}
	ans, err := attempt.Answer(questionID, in, s.deps.Clock())
	if err != nil {
		return QuizAnswer{}, err
	}
	if err := s.deps.Progress.SubmitQuizAnswer(ctx, attempt.ID, questionID, ans); err != nil {
		persistenceFailures.WithLabelValues("submit_quiz_answer").Inc()
		return ans, &PersistenceError{Op: "submit quiz answer", Err: err}
	}
	attempt.markSynced(questionID)
	return ans, nil
}

// CompleteQuiz scores the active attempt, persists the results and completes
// the content when the attempt passed. Unanswered questions score zero.
func (s *Session) CompleteQuiz(ctx context.Context, contentID string) (QuizResults, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return QuizResults{}, err
	}
	attempt, ok := s.quiz.Active(contentID)
	if !ok {
		return QuizResults{}, ErrNoActiveAttempt
	}

	answers := attempt.Answers()
	for _, qid := range attempt.unsyncedAnswers() {
		if err := s.deps.Progress.SubmitQuizAnswer(ctx, attempt.ID, qid, answers[qid]); err != nil {
			persistenceFailures.WithLabelValues("submit_quiz_answer").Inc()
			return QuizResults{}, &PersistenceError{Op: "submit quiz answer", Err: err}
		}
		attempt.markSynced(qid)
	}

	res, err := s.quiz.Complete(contentID, s.deps.Clock())
	if err != nil {
		return QuizResults{}, err
	}
	if !attempt.resultsSynced {
		if err := s.deps.Progress.CompleteQuizAttempt(ctx, attempt.ID, res); err != nil {
			persistenceFailures.WithLabelValues("complete_quiz_attempt").Inc()
			return res, &PersistenceError{Op: "complete quiz attempt", Err: err}
		}
		attempt.resultsSynced = true
	}
	s.quiz.Finish(contentID)

	p := s.progressFor(contentID)
	p.QuizAttempts++
	if p.QuizScore == nil || res.Score > *p.QuizScore {
		score := res.Score
		p.QuizScore = &score
	}
	observeQuiz(res)
	s.log.Info("quiz attempt completed",
		"content_id", contentID,
		"attempt_id", attempt.ID,
		"score", res.Score,
		"passed", res.Passed,
		"weak_topics", res.WeakTopics,
	)
	s.track(ctx, contentID, EventQuizComplete, map[string]any{
		"attempt_id":     attempt.ID,
		"attempt_number": attempt.Number,
		"score":          res.Score,
		"passed":         res.Passed,
		"weak_topics":    res.WeakTopics,
	})

	if res.Passed && !p.IsCompleted() {
		if err := s.completeContent(ctx, contentID); err != nil {
			return res, err
		}
	}
	return res, nil
}

// QuizStatus reports attempt bookkeeping for the quiz of contentID.
func (s *Session) QuizStatus(contentID string) (QuizStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return QuizStatus{}, ErrSessionClosed
	}
	pos, ok := s.graph.Locate(contentID)
	if !ok {
		return QuizStatus{}, fmt.Errorf("%w: %s", ErrContentNotFound, contentID)
	}
	if c, _ := s.graph.ContentAt(pos.Module, pos.Content); !c.HasQuiz {
		return QuizStatus{}, fmt.Errorf("%w: %s", ErrNoQuiz, contentID)
	}
	return s.quizStatus(contentID), nil
}

func (s *Session) quizStatus(contentID string) QuizStatus {
	st := QuizStatus{
		ContentID:    contentID,
		State:        AttemptNotStarted.String(),
		MaxAttempts:  s.quiz.MaxAttempts(),
		PassingScore: s.quiz.PassingScore(),
	}
	if p, ok := s.progress[contentID]; ok {
		st.AttemptsUsed = p.QuizAttempts
		st.QuizScore = p.QuizScore
	}
	st.RemainingAttempts = s.quiz.RemainingAttempts(st.AttemptsUsed)
	if a, ok := s.quiz.Active(contentID); ok {
		st.AttemptID = a.ID
		st.AttemptNumber = a.Number
		st.State = a.State().String()
		st.Answered = a.AnsweredCount()
		if q, ok := a.CurrentQuestion(); ok {
			st.CurrentQuestionID = q.ID
		}
		// the running attempt counts against the ceiling
		st.RemainingAttempts = s.quiz.RemainingAttempts(a.Number)
	}
	return st
}

// Next advances the cursor. At the end of the program it completes the
// enrollment.
func (s *Session) Next(ctx context.Context) (NavOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return NavOutcome{Cursor: s.nav.Cursor()}, ErrSessionClosed
	}

	out, err := s.nav.Next()
	if err != nil {
		s.noteLocked(err)
		return out, err
	}
	if out.ProgramComplete {
		s.programFinished = true
		if !s.completed {
			if _, err := s.completeProgram(ctx); err != nil {
				return out, err
			}
		}
	}
	return out, nil
}

func (s *Session) Previous() (NavOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return NavOutcome{Cursor: s.nav.Cursor()}, ErrSessionClosed
	}
	return s.nav.Previous()
}

// JumpTo moves the cursor to (m, c). A locked target fails with a
// LockedContentError and the cursor stays put.
func (s *Session) JumpTo(m, c int) (NavOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return NavOutcome{Cursor: s.nav.Cursor()}, ErrSessionClosed
	}
	out, err := s.nav.JumpTo(m, c)
	if err != nil {
		s.noteLocked(err)
	}
	return out, err
}

// CompleteProgram finalizes the enrollment once Next has reported the end of
// the program. It can be called again to retry a failed store call.
func (s *Session) CompleteProgram(ctx context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return 0, err
	}
	if !s.programFinished {
		return 0, ErrProgramIncomplete
	}
	return s.completeProgram(ctx)
}

func (s *Session) completeProgram(ctx context.Context) (float64, error) {
	if err := s.flush(ctx); err != nil {
		s.log.Warn("pending progress not flushed before completion", "error", err)
	}

	final := s.computeFinalScore()
	if err := s.deps.Enrollments.CompleteEnrollment(ctx, s.enrollment.ID, final); err != nil {
		persistenceFailures.WithLabelValues("complete_enrollment").Inc()
		return final, &PersistenceError{Op: "complete enrollment", Err: err}
	}

	s.completed = true
	s.finalScore = final
	now := s.deps.Clock()
	s.enrollment.Status = EnrollmentCompleted
	s.enrollment.FinalScore = &final
	s.enrollment.CompletedAt = &now

	programCompletions.Inc()
	s.log.Info("program completed", "final_score", final)
	s.track(ctx, "", EventProgramComplete, map[string]any{"final_score": final})
	return final, nil
}

// computeFinalScore averages quiz scores of completed content. It is 0 when no
// completed content has a quiz score.
func (s *Session) computeFinalScore() float64 {
	var sum, n int
	s.graph.Each(func(_ Position, c Content) {
		p, ok := s.progress[c.ID]
		if ok && p.IsCompleted() && p.QuizScore != nil {
			sum += *p.QuizScore
			n++
		}
	})
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// Flush writes throttled watch progress and retries failed content
// completions.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush(ctx)
}

// close flushes and marks the session closed. A failed flush leaves it open.
func (s *Session) close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if err := s.flush(ctx); err != nil {
		return err
	}
	s.closed = true
	s.log.Info("player session closed")
	return nil
}

func (s *Session) flush(ctx context.Context) error {
	var errs []error
	for contentID, w := range s.throttle.drain() {
		if err := s.deps.Progress.UpdateVideoProgress(ctx, s.enrollment.ID, contentID, w.percentage, w.position); err != nil {
			persistenceFailures.WithLabelValues("update_video_progress").Inc()
			s.throttle.hold(contentID, w)
			errs = append(errs, &PersistenceError{Op: "update video progress", Err: err})
		}
	}
	for contentID := range s.pendingCompletions {
		if err := s.deps.Progress.CompleteContent(ctx, s.enrollment.ID, contentID); err != nil {
			persistenceFailures.WithLabelValues("complete_content").Inc()
			errs = append(errs, &PersistenceError{Op: "complete content", Err: err})
			continue
		}
		delete(s.pendingCompletions, contentID)
	}
	return errors.Join(errs...)
}

// HasPendingWrites reports whether Flush has anything to do.
func (s *Session) HasPendingWrites() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.throttle.hasPending() || len(s.pendingCompletions) > 0
}
