package jobs

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
)

// Client enqueues background tasks.
type Client struct {
	inner *asynq.Client
}

// NewClient constructs a Client from Redis connection options.
func NewClient(opts asynq.RedisClientOpt) *Client {
	return &Client{inner: asynq.NewClient(opts)}
}

// EnqueueMirrorOrphan queues an orphaned-identity record.
func (c *Client) EnqueueMirrorOrphan(ctx context.Context, userID, externalID, reason string) error {
	task, err := NewMirrorOrphanTask(MirrorOrphanPayload{
		UserID:     userID,
		ExternalID: externalID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	_, err = c.inner.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.inner.Close()
}
