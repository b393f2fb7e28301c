package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"hrtraining/models/training"
	"hrtraining/player"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a program, enrollment or attempt does not exist.
var ErrNotFound = errors.New("record not found")

// notFound maps gorm.ErrRecordNotFound to ErrNotFound.
func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", what, id, err)
}

func toPlayerProgram(p training.Program) player.Program {
	out := player.Program{
		ID:           p.ID,
		Title:        p.Title,
		PassingScore: p.PassingScore,
		MaxAttempts:  p.MaxAttempts,
		Modules:      make([]player.Module, 0, len(p.Modules)),
	}
	for _, m := range p.Modules {
		pm := player.Module{
			ID:            m.ID,
			Title:         m.Title,
			SequenceOrder: m.SequenceOrder,
			IsGateway:     m.IsGateway,
			Contents:      make([]player.Content, 0, len(m.Contents)),
		}
		for _, c := range m.Contents {
			pm.Contents = append(pm.Contents, player.Content{
				ID:                 c.ID,
				Title:              c.Title,
				SequenceOrder:      c.SequenceOrder,
				ContentType:        c.ContentType,
				VideoURL:           c.VideoURL,
				MinWatchPercentage: c.MinWatchPercentage,
				HasQuiz:            c.HasQuiz,
				Description:        c.Description,
			})
		}
		out.Modules = append(out.Modules, pm)
	}
	return out
}

func toPlayerQuestion(q training.QuizQuestion) player.QuizQuestion {
	out := player.QuizQuestion{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		Points:       q.Points,
		TopicID:      q.TopicID,
		Explanation:  q.Explanation,
		Options:      make([]player.QuizOption, 0, len(q.Options)),
	}
	for _, o := range q.Options {
		out.Options = append(out.Options, player.QuizOption{ID: o.ID, OptionText: o.OptionText, IsCorrect: o.IsCorrect})
	}
	return out
}

func toPlayerProgress(p training.ContentProgress) player.ContentProgress {
	return player.ContentProgress{
		EnrollmentID:        p.EnrollmentID,
		ContentID:           p.ContentID,
		Status:              p.Status,
		WatchPercentage:     p.WatchPercentage,
		LastPositionSeconds: p.LastPositionSeconds,
		QuizAttempts:        p.QuizAttempts,
		QuizScore:           p.QuizScore,
	}
}

func toPlayerEnrollment(e training.Enrollment) player.Enrollment {
	return player.Enrollment{
		ID:          e.ID,
		ProgramID:   e.ProgramID,
		Status:      e.Status,
		Progress:    e.Progress,
		FinalScore:  e.FinalScore,
		StartedAt:   e.StartedAt,
		CompletedAt: e.CompletedAt,
	}
}

// jsonStrings encodes ids as a JSON array column; nil becomes [].
func jsonStrings(ids []string) datatypes.JSON {
	if ids == nil {
		ids = []string{}
	}
	b, _ := json.Marshal(ids)
	return datatypes.JSON(b)
}

// DecodeStrings reads a JSON array column written by jsonStrings.
func DecodeStrings(raw datatypes.JSON) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
