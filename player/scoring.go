package player

import (
	"math"
	"sort"
	"strings"
)

// weakTopicRatio is the correct-answer ratio below which a topic is weak.
const weakTopicRatio = 0.7

// shortAnswerMinLength is the trimmed length a short answer must exceed to
// count as correct. This is a placeholder for human review, not grading.
const shortAnswerMinLength = 10

// ScoreAnswer checks one answer against its question. TimeTakenSeconds is left
// for the caller to fill in.
func ScoreAnswer(q QuizQuestion, in AnswerInput) QuizAnswer {
	ans := QuizAnswer{
		SelectedOptions: append([]string(nil), in.SelectedOptions...),
		TextAnswer:      in.TextAnswer,
	}

	switch q.QuestionType {
	case QuestionMultipleChoice, QuestionTrueFalse:
		if len(in.SelectedOptions) == 1 {
			for _, opt := range q.Options {
				if opt.ID == in.SelectedOptions[0] {
					ans.IsCorrect = opt.IsCorrect
					break
				}
			}
		}
	case QuestionMultiSelect:
		ans.IsCorrect = sameOptionSet(correctOptionIDs(q), in.SelectedOptions)
	case QuestionShortAnswer:
		ans.IsCorrect = len([]rune(strings.TrimSpace(in.TextAnswer))) > shortAnswerMinLength
	}

	if ans.IsCorrect {
		ans.PointsEarned = q.Points
	}
	return ans
}

func correctOptionIDs(q QuizQuestion) map[string]bool {
	ids := make(map[string]bool)
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids[opt.ID] = true
		}
	}
	return ids
}

// sameOptionSet compares the selected ids as a set against correct. Duplicate
// selections count once.
func sameOptionSet(correct map[string]bool, selected []string) bool {
	seen := make(map[string]bool, len(selected))
	for _, id := range selected {
		if !correct[id] {
			return false
		}
		seen[id] = true
	}
	return len(seen) == len(correct)
}

// Aggregate computes attempt-level results from the question set and the
// submitted answers. Questions without an answer score zero. A quiz worth zero
// points scores zero.
func Aggregate(questions []QuizQuestion, answers map[string]QuizAnswer, passingScore int) QuizResults {
	res := QuizResults{
		Answers: make(map[string]QuizAnswer, len(questions)),
	}
	for _, q := range questions {
		res.TotalPoints += q.Points
		ans, ok := answers[q.ID]
		if !ok {
			ans = QuizAnswer{}
		}
		res.EarnedPoints += ans.PointsEarned
		res.Answers[q.ID] = ans
	}
	if res.TotalPoints > 0 {
		res.Score = int(math.Round(float64(res.EarnedPoints) / float64(res.TotalPoints) * 100))
	}
	res.Passed = res.Score >= passingScore
	res.WeakTopics = WeakTopics(questions, answers)
	return res
}

// WeakTopics returns the sorted ids of topics whose correct ratio is below
// 0.7. Questions without a topic are ignored.
func WeakTopics(questions []QuizQuestion, answers map[string]QuizAnswer) []string {
	type tally struct{ correct, total int }
	topics := make(map[string]*tally)
	for _, q := range questions {
		if q.TopicID == "" {
			continue
		}
		t, ok := topics[q.TopicID]
		if !ok {
			t = &tally{}
			topics[q.TopicID] = t
		}
		t.total++
		if answers[q.ID].IsCorrect {
			t.correct++
		}
	}

	weak := []string{}
	for id, t := range topics {
		if float64(t.correct)/float64(t.total) < weakTopicRatio {
			weak = append(weak, id)
		}
	}
	sort.Strings(weak)
	return weak
}
