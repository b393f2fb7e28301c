package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var errStoreDown = errors.New("store unavailable")

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type memContent struct {
	programs  map[string]Program
	questions map[string][]QuizQuestion
}

func (m *memContent) FetchProgram(_ context.Context, id string) (Program, error) {
	p, ok := m.programs[id]
	if !ok {
		return Program{}, fmt.Errorf("program %s not found", id)
	}
	return p, nil
}

func (m *memContent) FetchQuestions(_ context.Context, contentID string) ([]QuizQuestion, error) {
	return m.questions[contentID], nil
}

type videoWrite struct {
	contentID  string
	percentage float64
	position   float64
}

type memProgress struct {
	mu        sync.Mutex
	rows      map[string]*ContentProgress
	writes    []videoWrite
	answers   map[string]map[string]QuizAnswer
	results   map[string]QuizResults
	attemptOf map[string]string
	nextID    int
	completes int

	failVideo    bool
	failComplete bool
	failAnswer   bool
	failResults  bool
}

func newMemProgress() *memProgress {
	return &memProgress{
		rows:      make(map[string]*ContentProgress),
		answers:   make(map[string]map[string]QuizAnswer),
		results:   make(map[string]QuizResults),
		attemptOf: make(map[string]string),
	}
}

func (m *memProgress) row(enrollmentID, contentID string) *ContentProgress {
	r, ok := m.rows[contentID]
	if !ok {
		r = &ContentProgress{EnrollmentID: enrollmentID, ContentID: contentID, Status: StatusNotStarted}
		m.rows[contentID] = r
	}
	return r
}

func (m *memProgress) GetProgress(_ context.Context, enrollmentID string) ([]ContentProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ContentProgress
	for _, r := range m.rows {
		if r.EnrollmentID == enrollmentID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memProgress) UpdateVideoProgress(_ context.Context, enrollmentID, contentID string, pct, pos float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failVideo {
		return errStoreDown
	}
	m.writes = append(m.writes, videoWrite{contentID: contentID, percentage: pct, position: pos})
	r := m.row(enrollmentID, contentID)
	if pct < r.WatchPercentage {
		return nil
	}
	r.WatchPercentage = pct
	r.LastPositionSeconds = pos
	if r.Status == StatusNotStarted {
		r.Status = StatusInProgress
	}
	return nil
}

func (m *memProgress) CompleteContent(_ context.Context, enrollmentID, contentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failComplete {
		return errStoreDown
	}
	m.completes++
	m.row(enrollmentID, contentID).Status = StatusCompleted
	return nil
}

func (m *memProgress) StartQuizAttempt(_ context.Context, enrollmentID, contentID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("attempt-%d", m.nextID)
	m.attemptOf[id] = contentID
	m.row(enrollmentID, contentID)
	return id, nil
}

func (m *memProgress) SubmitQuizAnswer(_ context.Context, attemptID, questionID string, ans QuizAnswer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAnswer {
		return errStoreDown
	}
	if m.answers[attemptID] == nil {
		m.answers[attemptID] = make(map[string]QuizAnswer)
	}
	m.answers[attemptID][questionID] = ans
	return nil
}

func (m *memProgress) CompleteQuizAttempt(_ context.Context, attemptID string, res QuizResults) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failResults {
		return errStoreDown
	}
	m.results[attemptID] = res
	r := m.rows[m.attemptOf[attemptID]]
	r.QuizAttempts++
	if r.QuizScore == nil || res.Score > *r.QuizScore {
		score := res.Score
		r.QuizScore = &score
	}
	return nil
}

type memEnrollments struct {
	mu          sync.Mutex
	enrollments map[string]*Enrollment
	starts      int
	progress    []float64
	completions int
	failDone    bool
}

func (m *memEnrollments) GetEnrollment(_ context.Context, id string) (Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[id]
	if !ok {
		return Enrollment{}, fmt.Errorf("enrollment %s not found", id)
	}
	return *e, nil
}

func (m *memEnrollments) StartEnrollment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts++
	if e := m.enrollments[id]; e.Status == EnrollmentEnrolled {
		e.Status = EnrollmentInProgress
	}
	return nil
}

func (m *memEnrollments) UpdateEnrollmentProgress(_ context.Context, id string, progress float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = append(m.progress, progress)
	m.enrollments[id].Progress = progress
	return nil
}

func (m *memEnrollments) CompleteEnrollment(_ context.Context, id string, final float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDone {
		return errStoreDown
	}
	m.completions++
	e := m.enrollments[id]
	e.Status = EnrollmentCompleted
	e.FinalScore = &final
	return nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSink) TrackEvent(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// fixture wires a session against in-memory stores.
type fixture struct {
	content     *memContent
	progress    *memProgress
	enrollments *memEnrollments
	sink        *recordingSink
	clock       *fakeClock
}

func newFixture(p Program, questions map[string][]QuizQuestion) *fixture {
	return &fixture{
		content:  &memContent{programs: map[string]Program{p.ID: p}, questions: questions},
		progress: newMemProgress(),
		enrollments: &memEnrollments{enrollments: map[string]*Enrollment{
			"enr-1": {ID: "enr-1", ProgramID: p.ID, Status: EnrollmentEnrolled},
		}},
		sink:  &recordingSink{},
		clock: newFakeClock(),
	}
}

func (f *fixture) deps() Dependencies {
	return Dependencies{
		Content:     f.content,
		Progress:    f.progress,
		Enrollments: f.enrollments,
		Events:      f.sink,
		Clock:       f.clock.Now,
	}
}

// videoThenQuizProgram has one module: a video followed by a document quiz.
func videoThenQuizProgram() (Program, map[string][]QuizQuestion) {
	p := Program{
		ID:           "prog-1",
		Title:        "Workplace Safety",
		PassingScore: 80,
		MaxAttempts:  3,
		Modules: []Module{{
			ID: "mod-1", Title: "Basics", SequenceOrder: 1,
			Contents: []Content{
				{ID: "video-1", Title: "Intro", SequenceOrder: 1, ContentType: ContentVideo, MinWatchPercentage: 90},
				{ID: "quiz-1", Title: "Check", SequenceOrder: 2, ContentType: ContentDocument, HasQuiz: true},
			},
		}},
	}
	questions := map[string][]QuizQuestion{
		"quiz-1": {
			{ID: "q1", QuestionType: QuestionMultipleChoice, Points: 5, Options: []QuizOption{
				{ID: "a", IsCorrect: true}, {ID: "b"},
			}},
			{ID: "q2", QuestionType: QuestionTrueFalse, Points: 5, Options: []QuizOption{
				{ID: "t"}, {ID: "f", IsCorrect: true},
			}},
		},
	}
	return p, questions
}
