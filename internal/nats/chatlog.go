package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/borderbuddy/travel-platform/internal/model"
)

const (
	// StreamName is the name of the chat log stream.
	StreamName = "BORDERBUDDY_CHAT"

	// SubjectPrefix is the prefix for all chat log subjects.
	SubjectPrefix = "bb"

	fetchBatchSize = 100
)

// ChatLog is the append-only per-buddy message log, backed by a
// JetStream stream with deletion disabled. Messages are immutable once
// appended; the log assigns id, timestamp and sequence.
type ChatLog struct {
	client *Client
}

// NewChatLog creates a chat log on the given client.
func NewChatLog(client *Client) *ChatLog {
	return &ChatLog{client: client}
}

// EnsureStream ensures the chat stream exists with proper configuration.
func (l *ChatLog) EnsureStream(ctx context.Context) error {
	js := l.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      365 * 24 * time.Hour,
		MaxBytes:    10 * 1024 * 1024 * 1024,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		DenyDelete:  true,
		DenyPurge:   true,
		Description: "BorderBuddy chat messages",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// messageSubject returns the subject for one message.
func messageSubject(buddyID string, role model.Role) string {
	return fmt.Sprintf("%s.%s.msg.%s", SubjectPrefix, buddyID, role)
}

// buddyFilter returns the filter subject for all messages of a buddy.
func buddyFilter(buddyID string) string {
	return fmt.Sprintf("%s.%s.msg.>", SubjectPrefix, buddyID)
}

// Append stores one message at the tail of the buddy's log and returns
// it with id, timestamp and stream sequence assigned.
func (l *ChatLog) Append(ctx context.Context, buddyID string, role model.Role, kind, content string) (*model.ChatMessage, error) {
	msg := &model.ChatMessage{
		ID:        uuid.Must(uuid.NewV7()).String(),
		BuddyID:   buddyID,
		Role:      role,
		Kind:      kind,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	ack, err := l.client.JetStream().Publish(ctx, messageSubject(buddyID, role), data)
	if err != nil {
		return nil, fmt.Errorf("failed to publish message: %w", err)
	}

	msg.Sequence = ack.Sequence
	return msg, nil
}

// ListRecent returns up to limit of the most recent messages for a
// buddy, newest-first.
func (l *ChatLog) ListRecent(ctx context.Context, buddyID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	js := l.client.JetStream()

	consumer, err := js.CreateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		FilterSubject: buddyFilter(buddyID),
		AckPolicy:     jetstream.AckNonePolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	// Walk the log oldest-first, keeping a tail of the last limit
	// entries. Per-buddy logs are short; batching bounds each fetch.
	var tail []model.ChatMessage
	for {
		batch, err := consumer.Fetch(fetchBatchSize, jetstream.FetchMaxWait(2*time.Second))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch messages: %w", err)
		}

		count := 0
		for raw := range batch.Messages() {
			count++

			var msg model.ChatMessage
			if err := json.Unmarshal(raw.Data(), &msg); err != nil {
				continue
			}
			if meta, err := raw.Metadata(); err == nil {
				msg.Sequence = meta.Sequence.Stream
			}

			tail = append(tail, msg)
			if len(tail) > limit {
				tail = tail[1:]
			}
		}

		if batch.Error() != nil && batch.Error() != context.DeadlineExceeded {
			return nil, fmt.Errorf("batch error: %w", batch.Error())
		}

		if count < fetchBatchSize {
			break
		}
	}

	// Reverse to newest-first.
	out := make([]model.ChatMessage, 0, len(tail))
	for i := len(tail) - 1; i >= 0; i-- {
		out = append(out, tail[i])
	}
	return out, nil
}
