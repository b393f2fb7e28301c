package analytics

import (
	"context"
	"encoding/json"
	"log/slog"

	"hrtraining/models/training"
	"hrtraining/player"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DBSink stores events in the training_events table.
type DBSink struct {
	db *gorm.DB
	q  *queue
}

func NewDBSink(db *gorm.DB, logger *slog.Logger) *DBSink {
	s := &DBSink{db: db}
	s.q = newQueue("database", defaultQueueSize, 0, logger, s.insert)
	return s
}

func (s *DBSink) TrackEvent(_ context.Context, e player.Event) { s.q.push(e) }

func (s *DBSink) insert(ctx context.Context, e player.Event) error {
	data := datatypes.JSON("{}")
	if len(e.Data) > 0 {
		b, err := json.Marshal(e.Data)
		if err != nil {
			return err
		}
		data = datatypes.JSON(b)
	}
	return s.db.WithContext(ctx).Create(&training.TrainingEvent{
		ProgramID:    e.ProgramID,
		EnrollmentID: e.EnrollmentID,
		ContentID:    e.ContentID,
		EventType:    e.Type,
		Data:         data,
		OccurredAt:   e.OccurredAt.UTC(),
	}).Error
}

// Close flushes queued events.
func (s *DBSink) Close(ctx context.Context) error { return s.q.close(ctx) }
