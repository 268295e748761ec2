package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"

	"github.com/tpbkitchens/maintsync/internal/portal"
)

// PubSubConfig identifies the topic synced records are announced on.
type PubSubConfig struct {
	ProjectID string
	TopicID   string
}

// PubSubPublisher publishes records to a Google Cloud Pub/Sub topic.
type PubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
}

// NewPubSub connects a client and verifies the topic exists before first use.
func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSubPublisher, error) {
	if cfg.ProjectID == "" || cfg.TopicID == "" {
		return nil, fmt.Errorf("project id and topic id are required")
	}
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	topicName := fmt.Sprintf("projects/%s/topics/%s", cfg.ProjectID, cfg.TopicID)
	request := &pubsubpb.GetTopicRequest{Topic: topicName}
	topic, err := client.TopicAdminClient.GetTopic(ctx, request)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("verify topic %s: %w", topicName, err)
	}
	if topic.State != pubsubpb.Topic_ACTIVE {
		_ = client.Close()
		return nil, fmt.Errorf("topic %s is not active", topicName)
	}

	return &PubSubPublisher{
		client:    client,
		publisher: client.Publisher(topicName),
	}, nil
}

// PublishRecord marshals the record to JSON and publishes it, waiting for the
// server-assigned message ID so sync failures surface immediately.
func (p *PubSubPublisher) PublishRecord(ctx context.Context, rec portal.JobRecord) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"job_number": rec.JobNumber,
		},
	}
	id, err := p.publisher.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish record: %w", err)
	}
	return id, nil
}

// Close stops the publisher and releases the client.
func (p *PubSubPublisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}
