package repository

import (
	"context"

	"hrtraining/models/training"
	"hrtraining/player"

	"gorm.io/gorm"
)

// ContentRepository reads programs and questions from the training tables.
type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// FetchProgram loads a program with its live modules and contents. Ordering is
// left to the player's content graph.
func (r *ContentRepository) FetchProgram(ctx context.Context, programID string) (player.Program, error) {
	var p training.Program
	err := r.db.WithContext(ctx).
		Preload("Modules", "is_deleted = ?", false).
		Preload("Modules.Contents", "is_deleted = ?", false).
		Where("id = ? AND is_deleted = ?", programID, false).
		First(&p).Error
	if err != nil {
		return player.Program{}, notFound(err, "program", programID)
	}
	return toPlayerProgram(p), nil
}

// FetchQuestions returns the quiz questions of a content item in presentation order.
func (r *ContentRepository) FetchQuestions(ctx context.Context, contentID string) ([]player.QuizQuestion, error) {
	var rows []training.QuizQuestion
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_deleted = ?", false).Order("order_index ASC")
		}).
		Where("content_id = ? AND is_deleted = ?", contentID, false).
		Order("order_index ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]player.QuizQuestion, 0, len(rows))
	for _, q := range rows {
		out = append(out, toPlayerQuestion(q))
	}
	return out, nil
}
