package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const EventTypeAnalysisCompleted = "cv_analysis_completed"

// UsageEvent is published once per successful, paid CV analysis.
type UsageEvent struct {
	AnalysisID       int64
	UserAddress      string
	TxHash           string
	CreditsRemaining int64
	Model            string
	PromptTokens     int
	CompletionTokens int
	TraceID          *string
}

type Producer interface {
	Publish(ctx context.Context, event UsageEvent) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

// NewRedisProducer appends usage events to a Redis stream.
func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Publish(ctx context.Context, event UsageEvent) error {
	fields := map[string]any{
		"event_type":        EventTypeAnalysisCompleted,
		"analysis_id":       event.AnalysisID,
		"user_address":      event.UserAddress,
		"tx_hash":           event.TxHash,
		"credits_remaining": event.CreditsRemaining,
		"model":             event.Model,
		"prompt_tokens":     event.PromptTokens,
		"completion_tokens": event.CompletionTokens,
	}

	if event.TraceID != nil && *event.TraceID != "" {
		fields["trace_id"] = *event.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("publish usage event: %w", err)
	}

	p.logger.InfoContext(ctx, "published usage event", "analysis_id", event.AnalysisID, "stream", p.stream)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}

type noopProducer struct{}

// NewNoopProducer is used when no usage stream is configured.
func NewNoopProducer() Producer {
	return noopProducer{}
}

func (noopProducer) Publish(context.Context, UsageEvent) error { return nil }

func (noopProducer) Close() error { return nil }
