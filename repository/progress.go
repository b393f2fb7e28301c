package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hrtraining/models/training"
	"hrtraining/player"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressStore persists content progress, quiz attempts and answers.
type ProgressStore struct {
	db  *gorm.DB
	log *slog.Logger
	now func() time.Time
}

func NewProgressStore(db *gorm.DB, logger *slog.Logger) *ProgressStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressStore{db: db, log: logger, now: time.Now}
}

func (s *ProgressStore) GetProgress(ctx context.Context, enrollmentID string) ([]player.ContentProgress, error) {
	var rows []training.ContentProgress
	if err := s.db.WithContext(ctx).Where("enrollment_id = ?", enrollmentID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]player.ContentProgress, 0, len(rows))
	for _, r := range rows {
		out = append(out, toPlayerProgress(r))
	}
	return out, nil
}

// ensureRow creates the progress row for the pair if it is missing.
func ensureRow(tx *gorm.DB, enrollmentID, contentID string) error {
	row := training.ContentProgress{
		EnrollmentID: enrollmentID,
		ContentID:    contentID,
		Status:       training.ProgressNotStarted,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "content_id"}},
		DoNothing: true,
	}).Create(&row).Error
}

// startedStatus moves not_started to in_progress and leaves other statuses alone.
func startedStatus() clause.Expr {
	return gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", training.ProgressNotStarted, training.ProgressInProgress)
}

// UpdateVideoProgress stores the watch maximum with a compare-and-set, so a
// late or reordered write never lowers the stored percentage.
func (s *ProgressStore) UpdateVideoProgress(ctx context.Context, enrollmentID, contentID string, watchPercentage, positionSeconds float64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRow(tx, enrollmentID, contentID); err != nil {
			return err
		}
		res := tx.Model(&training.ContentProgress{}).
			Where("enrollment_id = ? AND content_id = ? AND watch_percentage <= ?", enrollmentID, contentID, watchPercentage).
			Updates(map[string]interface{}{
				"watch_percentage":      watchPercentage,
				"last_position_seconds": positionSeconds,
				"status":                startedStatus(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			s.log.Debug("stale watch write ignored", "enrollment_id", enrollmentID, "content_id", contentID, "watch_percentage", watchPercentage)
		}
		return nil
	})
}

func (s *ProgressStore) CompleteContent(ctx context.Context, enrollmentID, contentID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRow(tx, enrollmentID, contentID); err != nil {
			return err
		}
		return tx.Model(&training.ContentProgress{}).
			Where("enrollment_id = ? AND content_id = ? AND status <> ?", enrollmentID, contentID, training.ProgressCompleted).
			Updates(map[string]interface{}{
				"status":       training.ProgressCompleted,
				"completed_at": s.now(),
			}).Error
	})
}

// StartQuizAttempt creates a new attempt. Attempts of the same pair still
// in_progress are marked abandoned; their answers are kept.
func (s *ProgressStore) StartQuizAttempt(ctx context.Context, enrollmentID, contentID string) (string, error) {
	var attempt training.QuizAttempt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&training.QuizAttempt{}).
			Where("enrollment_id = ? AND content_id = ? AND status = ?", enrollmentID, contentID, training.AttemptInProgress).
			Update("status", training.AttemptAbandoned)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			s.log.Info("abandoned stale quiz attempts", "enrollment_id", enrollmentID, "content_id", contentID, "count", res.RowsAffected)
		}

		var completed int64
		if err := tx.Model(&training.QuizAttempt{}).
			Where("enrollment_id = ? AND content_id = ? AND status = ?", enrollmentID, contentID, training.AttemptCompleted).
			Count(&completed).Error; err != nil {
			return err
		}

		attempt = training.QuizAttempt{
			EnrollmentID:  enrollmentID,
			ContentID:     contentID,
			AttemptNumber: int(completed) + 1,
			Status:        training.AttemptInProgress,
			StartedAt:     s.now(),
			WeakTopics:    jsonStrings(nil),
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}

		if err := ensureRow(tx, enrollmentID, contentID); err != nil {
			return err
		}
		return tx.Model(&training.ContentProgress{}).
			Where("enrollment_id = ? AND content_id = ?", enrollmentID, contentID).
			Update("status", startedStatus()).Error
	})
	if err != nil {
		return "", err
	}
	return attempt.ID, nil
}

// upsertAnswer writes one answer, replacing an earlier answer to the same question.
func upsertAnswer(tx *gorm.DB, attemptID, questionID string, ans player.QuizAnswer) error {
	row := training.QuizAnswer{
		AttemptID:        attemptID,
		QuestionID:       questionID,
		SelectedOptions:  jsonStrings(ans.SelectedOptions),
		TextAnswer:       ans.TextAnswer,
		IsCorrect:        ans.IsCorrect,
		PointsEarned:     ans.PointsEarned,
		TimeTakenSeconds: ans.TimeTakenSeconds,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_options", "text_answer", "is_correct", "points_earned", "time_taken_seconds", "updated_at"}),
	}).Create(&row).Error
}

func (s *ProgressStore) loadAttempt(tx *gorm.DB, attemptID string) (training.QuizAttempt, error) {
	var a training.QuizAttempt
	if err := tx.Where("id = ?", attemptID).First(&a).Error; err != nil {
		return a, notFound(err, "quiz attempt", attemptID)
	}
	return a, nil
}

func (s *ProgressStore) SubmitQuizAnswer(ctx context.Context, attemptID, questionID string, answer player.QuizAnswer) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := s.loadAttempt(tx, attemptID)
		if err != nil {
			return err
		}
		if a.Status == training.AttemptCompleted {
			return fmt.Errorf("quiz attempt %s is already completed", attemptID)
		}
		return upsertAnswer(tx, attemptID, questionID, answer)
	})
}

// CompleteQuizAttempt stores the results, every answer including unanswered
// questions, and rolls the attempt into the content progress. Completing an
// attempt twice is a no-op.
func (s *ProgressStore) CompleteQuizAttempt(ctx context.Context, attemptID string, results player.QuizResults) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := s.loadAttempt(tx, attemptID)
		if err != nil {
			return err
		}
		if a.Status == training.AttemptCompleted {
			return nil
		}

		for qid, ans := range results.Answers {
			if err := upsertAnswer(tx, attemptID, qid, ans); err != nil {
				return err
			}
		}

		now := s.now()
		err = tx.Model(&training.QuizAttempt{}).Where("id = ?", attemptID).Updates(map[string]interface{}{
			"status":             training.AttemptCompleted,
			"completed_at":       now,
			"total_points":       results.TotalPoints,
			"earned_points":      results.EarnedPoints,
			"score":              results.Score,
			"passed":             results.Passed,
			"weak_topics":        jsonStrings(results.WeakTopics),
			"time_taken_seconds": results.TimeTakenSeconds,
		}).Error
		if err != nil {
			return err
		}

		if err := ensureRow(tx, a.EnrollmentID, a.ContentID); err != nil {
			return err
		}
		res := tx.Model(&training.ContentProgress{}).
			Where("enrollment_id = ? AND content_id = ?", a.EnrollmentID, a.ContentID).
			Updates(map[string]interface{}{
				"quiz_attempts": gorm.Expr("quiz_attempts + 1"),
				"quiz_score":    gorm.Expr("CASE WHEN quiz_score IS NULL OR quiz_score < ? THEN ? ELSE quiz_score END", results.Score, results.Score),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("content progress row missing after upsert")
		}
		return nil
	})
}

// Attempts lists the attempts of one enrollment and content pair, newest first.
func (s *ProgressStore) Attempts(ctx context.Context, enrollmentID, contentID string) ([]training.QuizAttempt, error) {
	var out []training.QuizAttempt
	err := s.db.WithContext(ctx).
		Preload("Answers").
		Where("enrollment_id = ? AND content_id = ?", enrollmentID, contentID).
		Order("attempt_number DESC, created_at DESC").
		Find(&out).Error
	return out, err
}
