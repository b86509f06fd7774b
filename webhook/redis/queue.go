package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/moverly/leadgate/provider"
	"github.com/moverly/leadgate/webhook"
	"github.com/redis/go-redis/v9"
)

/* Redis Streams implementation of webhook.Queue
 * One stream per provider with a consumer group, so ordering is only
 * per-stream and redelivery of unacknowledged jobs is handled by the
 * consumer group, never by the verification path.
 */

const (
	streamPrefix        = "leads"        // Stream naming: leads:{provider}
	msgIDPrefix         = "lead"         // Message ID key naming: lead:{call_id}:msgid
	consumerGroupPrefix = "lead-workers" // Consumer group naming: lead-workers-{provider}
	consumerName        = "worker"       // Consumer name (can be made dynamic for multiple workers)
)

type Queue struct {
	client *redis.Client
}

// NewQueue creates a new Redis-backed queue
func NewQueue(addr, password string, db int) (*Queue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Queue{
		client: client,
	}, nil
}

// Enqueue adds a verified delivery to the provider's stream
func (q *Queue) Enqueue(ctx context.Context, job webhook.Job) error {
	streamKey := getStreamKey(job.Provider)
	groupName := getGroupName(job.Provider)

	// Create consumer group if it doesn't exist
	q.client.XGroupCreateMkStream(ctx, streamKey, groupName, "0")
	// Ignore error if group already exists

	deliveryJSON, err := json.Marshal(job.Delivery)
	if err != nil {
		return fmt.Errorf("marshaling delivery: %w", err)
	}

	streamData := map[string]interface{}{
		"call_id":  job.CallID,
		"provider": job.Provider.String(),
		"delivery": string(deliveryJSON),
	}

	_, err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		Values: streamData,
	}).Result()
	if err != nil {
		return fmt.Errorf("adding to stream: %w", err)
	}

	return nil
}

// Consume reads jobs from a provider's stream
func (q *Queue) Consume(ctx context.Context, p provider.Provider) ([]webhook.Job, error) {
	streamKey := getStreamKey(p)
	groupName := getGroupName(p)

	// Create consumer group if it doesn't exist
	q.client.XGroupCreateMkStream(ctx, streamKey, groupName, "0")
	// Ignore error if group already exists

	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    groupName,
		Consumer: consumerName,
		Streams:  []string{streamKey, ">"},
		Count:    1,
		Block:    1 * time.Second, // Shorter timeout for better responsiveness
	}).Result()
	if err == redis.Nil {
		// No messages available
		return []webhook.Job{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading from stream: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return []webhook.Job{}, nil
	}

	var jobs []webhook.Job
	for _, msg := range streams[0].Messages {
		callID, ok := msg.Values["call_id"].(string)
		if !ok {
			continue
		}
		deliveryJSON, ok := msg.Values["delivery"].(string)
		if !ok {
			continue
		}

		var delivery webhook.Delivery
		if err := json.Unmarshal([]byte(deliveryJSON), &delivery); err != nil {
			continue
		}

		// Store the stream message ID so Acknowledge can find it later
		msgIDKey := getMsgIDKey(callID)
		q.client.Set(ctx, msgIDKey, msg.ID, 24*time.Hour)

		jobs = append(jobs, webhook.Job{
			CallID:   callID,
			Provider: delivery.Provider,
			Delivery: delivery,
		})
	}

	return jobs, nil
}

// Acknowledge marks a job as successfully processed
func (q *Queue) Acknowledge(ctx context.Context, p provider.Provider, callID string) error {
	streamKey := getStreamKey(p)
	groupName := getGroupName(p)

	msgIDKey := getMsgIDKey(callID)
	msgID, err := q.client.Get(ctx, msgIDKey).Result()
	if err == redis.Nil {
		// Message ID not found, might have been already acknowledged or expired
		return nil
	}
	if err != nil {
		return fmt.Errorf("getting message ID: %w", err)
	}

	err = q.client.XAck(ctx, streamKey, groupName, msgID).Err()
	if err != nil {
		return fmt.Errorf("acknowledging message: %w", err)
	}

	// Clean up the message ID key
	q.client.Del(ctx, msgIDKey)

	return nil
}

// Len returns the number of entries currently in a provider's stream
func (q *Queue) Len(ctx context.Context, p provider.Provider) (int64, error) {
	length, err := q.client.XLen(ctx, getStreamKey(p)).Result()
	if err != nil && err != redis.Nil {
		return 0, fmt.Errorf("getting stream length: %w", err)
	}
	return length, nil
}

// Close closes the Redis connection
func (q *Queue) Close(ctx context.Context) error {
	return q.client.Close()
}

// GetClient returns the underlying Redis client for advanced operations
func (q *Queue) GetClient() *redis.Client {
	return q.client
}

// Helper functions

func getStreamKey(p provider.Provider) string {
	return fmt.Sprintf("%s:%s", streamPrefix, p.String())
}

func getGroupName(p provider.Provider) string {
	return fmt.Sprintf("%s-%s", consumerGroupPrefix, p.String())
}

func getMsgIDKey(callID string) string {
	return fmt.Sprintf("%s:%s:msgid", msgIDPrefix, callID)
}
