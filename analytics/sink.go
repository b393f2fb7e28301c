package analytics

import (
	"context"
	"errors"
	"log/slog"

	"hrtraining/player"
)

// LogSink writes events to the structured log.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) TrackEvent(ctx context.Context, e player.Event) {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "training event",
		"event_type", e.Type,
		"program_id", e.ProgramID,
		"enrollment_id", e.EnrollmentID,
		"content_id", e.ContentID,
		"data", e.Data,
	)
}

// Fanout sends each event to every sink in order.
type Fanout []player.EventSink

func (f Fanout) TrackEvent(ctx context.Context, e player.Event) {
	for _, s := range f {
		s.TrackEvent(ctx, e)
	}
}

// Close closes every sink that has a Close(ctx) method.
func (f Fanout) Close(ctx context.Context) error {
	var errs []error
	for _, s := range f {
		if c, ok := s.(interface{ Close(context.Context) error }); ok {
			errs = append(errs, c.Close(ctx))
		}
	}
	return errors.Join(errs...)
}
