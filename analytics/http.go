package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hrtraining/player"

	"github.com/go-resty/resty/v2"
)

// HTTPSink posts every event as JSON to a collector endpoint.
type HTTPSink struct {
	client *resty.Client
	url    string
	q      *queue
}

func NewHTTPSink(url string, timeout time.Duration, logger *slog.Logger) *HTTPSink {
	s := &HTTPSink{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetRetryCount(2).
			SetRetryWaitTime(200 * time.Millisecond),
		url: url,
	}
	s.q = newQueue("http", defaultQueueSize, timeout, logger, s.post)
	return s
}

func (s *HTTPSink) TrackEvent(_ context.Context, e player.Event) { s.q.push(e) }

func (s *HTTPSink) post(ctx context.Context, e player.Event) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(e).
		Post(s.url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("collector returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// Close flushes queued events.
func (s *HTTPSink) Close(ctx context.Context) error { return s.q.close(ctx) }
