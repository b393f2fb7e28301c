package analytics

import (
	"context"
	"time"

	"hrtraining/models/training"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// Activity counts the events of a program by type over two windows.
type Activity struct {
	ProgramID string           `json:"program_id"`
	Today     map[string]int64 `json:"today"`
	ThisWeek  map[string]int64 `json:"this_week"`
}

// Summarize reports program activity for the calendar day and week that
// contain at, in at's location. Weeks start on Monday.
func Summarize(ctx context.Context, db *gorm.DB, programID string, at time.Time) (Activity, error) {
	cfg := &now.Config{WeekStartDay: time.Monday, TimeLocation: at.Location()}
	n := cfg.With(at)

	today, err := countByType(ctx, db, programID, n.BeginningOfDay(), n.EndOfDay())
	if err != nil {
		return Activity{}, err
	}
	week, err := countByType(ctx, db, programID, n.BeginningOfWeek(), n.EndOfWeek())
	if err != nil {
		return Activity{}, err
	}
	return Activity{ProgramID: programID, Today: today, ThisWeek: week}, nil
}

func countByType(ctx context.Context, db *gorm.DB, programID string, from, to time.Time) (map[string]int64, error) {
	var rows []struct {
		EventType string
		Count     int64
	}
	err := db.WithContext(ctx).
		Model(&training.TrainingEvent{}).
		Select("event_type, COUNT(*) AS count").
		Where("program_id = ? AND occurred_at BETWEEN ? AND ?", programID, from.UTC(), to.UTC()).
		Group("event_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.EventType] = r.Count
	}
	return out, nil
}
