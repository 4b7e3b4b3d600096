// Package kafka consumes event batches from a Kafka topic. Each record holds
// one JSON batch and is processed as one unit of work.
package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"herald/internal/ingest"
)

// Client is the subset of *kgo.Client the consumer needs.
type Client interface {
	PollFetches(ctx context.Context) kgo.Fetches
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
}

// Processor runs a decoded batch as one unit of work.
type Processor interface {
	Process(ctx context.Context, batch ingest.Batch, entries []ingest.Entry) (ingest.Result, error)
}

// NewClient opens a group consumer on topic. Offsets are committed by the
// Consumer once a record's unit of work has completed.
func NewClient(brokers []string, topic, group string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topic),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// Consumer polls records and hands each to the processor in order.
type Consumer struct {
	client    Client
	processor Processor
	logger    *slog.Logger
}

func NewConsumer(client Client, processor Processor, logger *slog.Logger) *Consumer {
	return &Consumer{
		client:    client,
		processor: processor,
		logger:    logger,
	}
}

// Run polls until ctx is cancelled or the client is closed.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.WarnContext(ctx, "kafka fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		var handled []*kgo.Record
		fetches.EachRecord(func(rec *kgo.Record) {
			_ = c.Handle(ctx, rec)
			handled = append(handled, rec)
		})
		if len(handled) == 0 {
			continue
		}

		if err := c.client.CommitRecords(ctx, handled...); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.ErrorContext(ctx, "failed to commit kafka offsets",
				"records", len(handled),
				"error", err,
			)
		}
	}
}

// Handle processes one record. Malformed batches are logged and skipped so
// they do not block the partition. A rolled-back unit is logged and its
// notifications are already discarded; the record is not retried.
func (c *Consumer) Handle(ctx context.Context, rec *kgo.Record) error {
	batch, entries, err := ingest.Decode(rec.Value)
	if err != nil {
		c.logger.ErrorContext(ctx, "skipping malformed event batch",
			"topic", rec.Topic,
			"partition", rec.Partition,
			"offset", rec.Offset,
			"error", err,
		)
		return err
	}

	if _, err := c.processor.Process(ctx, batch, entries); err != nil {
		c.logger.ErrorContext(ctx, "event batch rolled back",
			"topic", rec.Topic,
			"offset", rec.Offset,
			"realm", batch.Realm,
			"error", err,
		)
		return err
	}
	return nil
}
