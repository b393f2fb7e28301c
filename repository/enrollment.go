package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hrtraining/models/training"
	"hrtraining/player"

	"gorm.io/gorm"
)

// EnrollmentStore persists the enrollment lifecycle.
type EnrollmentStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewEnrollmentStore(db *gorm.DB) *EnrollmentStore {
	return &EnrollmentStore{db: db, now: time.Now}
}

func (s *EnrollmentStore) GetEnrollment(ctx context.Context, enrollmentID string) (player.Enrollment, error) {
	var e training.Enrollment
	if err := s.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&e).Error; err != nil {
		return player.Enrollment{}, notFound(err, "enrollment", enrollmentID)
	}
	return toPlayerEnrollment(e), nil
}

// Enroll returns the learner's enrollment in the program, creating it when
// missing. Unpublished or deleted programs cannot be enrolled in.
func (s *EnrollmentStore) Enroll(ctx context.Context, programID, userID string) (player.Enrollment, bool, error) {
	var (
		e       training.Enrollment
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p training.Program
		if err := tx.Where("id = ? AND is_deleted = ? AND is_published = ?", programID, false, true).First(&p).Error; err != nil {
			return notFound(err, "program", programID)
		}
		err := tx.Where("program_id = ? AND user_id = ?", programID, userID).First(&e).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		e = training.Enrollment{
			ProgramID: programID,
			UserID:    userID,
			Status:    training.EnrollmentEnrolled,
		}
		created = true
		return tx.Create(&e).Error
	})
	if err != nil {
		return player.Enrollment{}, false, err
	}
	return toPlayerEnrollment(e), created, nil
}

// StartEnrollment moves enrolled to in_progress. Any other status is left as is.
func (s *EnrollmentStore) StartEnrollment(ctx context.Context, enrollmentID string) error {
	res := s.db.WithContext(ctx).Model(&training.Enrollment{}).
		Where("id = ? AND status = ?", enrollmentID, training.EnrollmentEnrolled).
		Updates(map[string]interface{}{
			"status":     training.EnrollmentInProgress,
			"started_at": s.now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.exists(ctx, enrollmentID)
	}
	return nil
}

func (s *EnrollmentStore) UpdateEnrollmentProgress(ctx context.Context, enrollmentID string, progress float64) error {
	return s.db.WithContext(ctx).Model(&training.Enrollment{}).
		Where("id = ? AND status <> ?", enrollmentID, training.EnrollmentCompleted).
		Update("progress", progress).Error
}

// CompleteEnrollment is terminal. A second call keeps the first final score.
func (s *EnrollmentStore) CompleteEnrollment(ctx context.Context, enrollmentID string, finalScore float64) error {
	res := s.db.WithContext(ctx).Model(&training.Enrollment{}).
		Where("id = ? AND status <> ?", enrollmentID, training.EnrollmentCompleted).
		Updates(map[string]interface{}{
			"status":       training.EnrollmentCompleted,
			"progress":     100,
			"final_score":  finalScore,
			"completed_at": s.now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.exists(ctx, enrollmentID)
	}
	return nil
}

func (s *EnrollmentStore) exists(ctx context.Context, enrollmentID string) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&training.Enrollment{}).Where("id = ?", enrollmentID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("enrollment %s: %w", enrollmentID, ErrNotFound)
	}
	return nil
}
