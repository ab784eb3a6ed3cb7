// Package publisher emits ingestion status events onto a Redis stream so
// other processes (the WebSocket fanout in particular) can follow runs.
package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatusStream is the stream carrying ingestion run status events.
const StatusStream = "nbadaily.ingest.status"

// maxStreamLen bounds the stream; old runs are not interesting.
const maxStreamLen = 1000

// RedisStreamPublisher publishes events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
	}
}

// PublishIngestStatus publishes one run status snapshot to the stream.
func (p *RedisStreamPublisher) PublishIngestStatus(ctx context.Context, report interface{}) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StatusStream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

// ReadStatus blocks for the next status events after lastID. Pass "$" to
// start from new events only.
func (p *RedisStreamPublisher) ReadStatus(ctx context.Context, lastID string, block time.Duration) ([]redis.XMessage, string, error) {
	streams, err := p.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{StatusStream, lastID},
		Count:   100,
		Block:   block,
	}).Result()
	if err == redis.Nil {
		// Block timeout, nothing new.
		return nil, lastID, nil
	}
	if err != nil {
		return nil, lastID, err
	}
	for _, s := range streams {
		if s.Stream == StatusStream && len(s.Messages) > 0 {
			return s.Messages, s.Messages[len(s.Messages)-1].ID, nil
		}
	}
	return nil, lastID, nil
}
