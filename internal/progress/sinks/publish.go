package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fullstack/catalog-sync/internal/progress"
	"github.com/fullstack/catalog-sync/internal/publisher"
)

// PublishSink forwards cycle completion summaries to a
// publisher.Publisher. Product-level events are not forwarded; the
// topic carries one message per finished cycle.
type PublishSink struct {
	pub publisher.Publisher
}

// NewPublishSink wraps the publisher.
func NewPublishSink(pub publisher.Publisher) *PublishSink {
	return &PublishSink{pub: pub}
}

type cycleSummary struct {
	CycleID   string `json:"cycle_id"`
	Result    string `json:"result"`
	Fetched   int    `json:"fetched"`
	Saved     int    `json:"saved"`
	Errors    int    `json:"errors"`
	DurMillis int64  `json:"duration_ms"`
	Timestamp string `json:"timestamp"`
	Note      string `json:"note,omitempty"`
}

// Consume publishes one summary per cycle completion event in the
// batch.
func (s *PublishSink) Consume(ctx context.Context, batch []progress.Event) error {
	if s == nil || s.pub == nil {
		return nil
	}
	for _, evt := range batch {
		var result string
		switch evt.Stage {
		case progress.StageCycleDone:
			result = "success"
		case progress.StageCycleSkipped:
			result = "skipped"
		case progress.StageCycleError:
			result = "error"
		default:
			continue
		}
		data, err := json.Marshal(cycleSummary{
			CycleID:   evt.CycleID.String(),
			Result:    result,
			Fetched:   evt.Fetched,
			Saved:     evt.Saved,
			Errors:    evt.Errors,
			DurMillis: evt.Dur.Milliseconds(),
			Timestamp: evt.TS.Format(time.RFC3339),
			Note:      evt.Note,
		})
		if err != nil {
			return fmt.Errorf("marshal cycle summary: %w", err)
		}
		attrs := map[string]string{"result": result}
		if _, err := s.pub.Publish(ctx, data, attrs); err != nil {
			return fmt.Errorf("publish cycle summary: %w", err)
		}
	}
	return nil
}

// Close releases the underlying publisher.
func (s *PublishSink) Close(context.Context) error {
	if s == nil || s.pub == nil {
		return nil
	}
	if err := s.pub.Close(); err != nil {
		return fmt.Errorf("close publisher: %w", err)
	}
	return nil
}
