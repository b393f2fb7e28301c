package player

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeQuestions() []QuizQuestion {
	return []QuizQuestion{
		{ID: "q1", QuestionType: QuestionMultipleChoice, Points: 10, TopicID: "fire", Options: []QuizOption{{ID: "a", IsCorrect: true}, {ID: "b"}}},
		{ID: "q2", QuestionType: QuestionMultipleChoice, Points: 20, TopicID: "fire", Options: []QuizOption{{ID: "a", IsCorrect: true}, {ID: "b"}}},
		{ID: "q3", QuestionType: QuestionMultipleChoice, Points: 30, TopicID: "fire", Options: []QuizOption{{ID: "a", IsCorrect: true}, {ID: "b"}}},
	}
}

func TestQuizEngine_BeginRejectsEmptyQuiz(t *testing.T) {
	e := NewQuizEngine(80, 3)
	_, err := e.Begin("att", "enr", "c1", 1, nil, time.Now())
	assert.ErrorIs(t, err, ErrEmptyQuiz)
	assert.NoError(t, e.CanStart("c1"), "a failed start leaves no attempt behind")
}

func TestQuizEngine_OneActiveAttemptPerContent(t *testing.T) {
	e := NewQuizEngine(80, 3)
	now := time.Now()
	_, err := e.Begin("att-1", "enr", "c1", 1, threeQuestions(), now)
	require.NoError(t, err)

	_, err = e.Begin("att-2", "enr", "c1", 2, threeQuestions(), now)
	assert.ErrorIs(t, err, ErrAttemptInProgress)

	_, err = e.Begin("att-3", "enr", "c2", 1, threeQuestions(), now)
	assert.NoError(t, err, "other content is independent")
}

func TestQuizEngine_FinishAllowsRetake(t *testing.T) {
	e := NewQuizEngine(80, 3)
	now := time.Now()
	_, err := e.Begin("att-1", "enr", "c1", 1, threeQuestions(), now)
	require.NoError(t, err)

	e.Finish("c1")
	assert.ErrorIs(t, e.CanStart("c1"), ErrAttemptInProgress, "incomplete attempts are not released")

	_, err = e.Complete("c1", now)
	require.NoError(t, err)
	e.Finish("c1")
	assert.NoError(t, e.CanStart("c1"))
}

func TestQuizAttempt_UnknownQuestion(t *testing.T) {
	e := NewQuizEngine(80, 3)
	_, err := e.Begin("att", "enr", "c1", 1, threeQuestions(), time.Now())
	require.NoError(t, err)

	_, err = e.Answer("c1", "nope", AnswerInput{SelectedOptions: []string{"a"}}, time.Now())
	var unknown *UnknownQuestionError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "nope", unknown.QuestionID)
}

func TestQuizAttempt_AnswerWithoutAttempt(t *testing.T) {
	e := NewQuizEngine(80, 3)
	_, err := e.Answer("c1", "q1", AnswerInput{}, time.Now())
	assert.ErrorIs(t, err, ErrNoActiveAttempt)
}

func TestQuizAttempt_StateMachine(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	a, err := newQuizAttempt("att", "enr", "c1", 1, threeQuestions(), start)
	require.NoError(t, err)

	assert.Equal(t, AttemptAnswerPending, a.State())
	q, ok := a.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, "q1", q.ID)

	_, err = a.Answer("q1", AnswerInput{SelectedOptions: []string{"a"}}, start.Add(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, AttemptAnswerPending, a.State(), "next question is presented")
	q, _ = a.CurrentQuestion()
	assert.Equal(t, "q2", q.ID)

	_, err = a.Answer("q2", AnswerInput{SelectedOptions: []string{"a"}}, start.Add(12*time.Second))
	require.NoError(t, err)
	_, err = a.Answer("q3", AnswerInput{SelectedOptions: []string{"b"}}, start.Add(20*time.Second))
	require.NoError(t, err)
	assert.Equal(t, AttemptSubmitted, a.State())

	res, err := a.Complete(80, start.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, AttemptComplete, a.State())
	assert.Equal(t, 50, res.Score)
	assert.False(t, res.Passed)
	assert.Equal(t, 30.0, res.TimeTakenSeconds)
	assert.Equal(t, []string{"fire"}, res.WeakTopics)

	_, err = a.Answer("q1", AnswerInput{SelectedOptions: []string{"a"}}, start.Add(31*time.Second))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	again, err := a.Complete(80, start.Add(99*time.Second))
	require.NoError(t, err)
	assert.Equal(t, res, again, "completion is computed once")
}

func TestQuizAttempt_PerQuestionTiming(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	a, err := newQuizAttempt("att", "enr", "c1", 1, threeQuestions(), start)
	require.NoError(t, err)

	ans1, err := a.Answer("q1", AnswerInput{SelectedOptions: []string{"a"}}, start.Add(4*time.Second))
	require.NoError(t, err)
	ans2, err := a.Answer("q2", AnswerInput{SelectedOptions: []string{"a"}}, start.Add(10*time.Second))
	require.NoError(t, err)

	assert.Equal(t, 4.0, ans1.TimeTakenSeconds)
	assert.Equal(t, 6.0, ans2.TimeTakenSeconds, "q2 became current when q1 was submitted")
}

func TestQuizAttempt_CompleteWithUnansweredQuestions(t *testing.T) {
	start := time.Now()
	a, err := newQuizAttempt("att", "enr", "c1", 1, threeQuestions(), start)
	require.NoError(t, err)

	_, err = a.Answer("q2", AnswerInput{SelectedOptions: []string{"a"}}, start)
	require.NoError(t, err)

	res, err := a.Complete(80, start)
	require.NoError(t, err)
	assert.Equal(t, 33, res.Score)
	assert.Equal(t, 20, res.EarnedPoints)
	assert.Equal(t, 60, res.TotalPoints)
	assert.False(t, res.Answers["q1"].IsCorrect)
	assert.False(t, res.Answers["q3"].IsCorrect)
}

func TestQuizAttempt_ReanswerReplaces(t *testing.T) {
	start := time.Now()
	a, err := newQuizAttempt("att", "enr", "c1", 1, threeQuestions(), start)
	require.NoError(t, err)

	_, err = a.Answer("q1", AnswerInput{SelectedOptions: []string{"b"}}, start)
	require.NoError(t, err)
	_, err = a.Answer("q1", AnswerInput{SelectedOptions: []string{"a"}}, start)
	require.NoError(t, err)

	assert.Equal(t, 1, a.AnsweredCount())
	assert.True(t, a.Answers()["q1"].IsCorrect)
}

func TestQuizEngine_RemainingAttempts(t *testing.T) {
	tests := []struct {
		max, used, want int
	}{
		{3, 0, 3},
		{3, 2, 1},
		{3, 3, 0},
		{3, 5, 0},
		{0, 10, -1},
	}
	for _, tt := range tests {
		e := NewQuizEngine(80, tt.max)
		assert.Equal(t, tt.want, e.RemainingAttempts(tt.used), "max=%d used=%d", tt.max, tt.used)
	}
}
