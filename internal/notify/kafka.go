package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"casegate/internal/request"
)

// event is the wire shape published for every lifecycle transition.
type event struct {
	Event       string               `json:"event"`
	RequestID   string               `json:"requestId"`
	CaseID      string               `json:"caseId"`
	Type        string               `json:"type"`
	Status      string               `json:"status"`
	Actor       string               `json:"actor"`
	Timestamp   time.Time            `json:"timestamp"`
	ApplyResult *request.ApplyResult `json:"applyResult,omitempty"`
}

var _ request.Notifier = (*KafkaDispatcher)(nil)

// KafkaDispatcher publishes lifecycle events to a Kafka topic. It satisfies
// the request service's Notifier port.
type KafkaDispatcher struct {
	client *kgo.Client
	config *Config
	logger *slog.Logger
}

// NewKafkaDispatcher connects to the given brokers and ensures the configured
// topic exists. Topic creation failures on already-existing topics are
// ignored.
func NewKafkaDispatcher(ctx context.Context, brokers []string, cfg *Config, logger *slog.Logger) (*KafkaDispatcher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProduceRequestTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	topic := cfg.Current().Topic
	if _, err := admin.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
		logger.WarnContext(ctx, "topic creation skipped",
			"topic", topic,
			"error", err,
		)
	}

	return &KafkaDispatcher{
		client: client,
		config: cfg,
		logger: logger,
	}, nil
}

// RequestSubmitted publishes a request.submitted event.
func (d *KafkaDispatcher) RequestSubmitted(ctx context.Context, req *request.ChangeRequest) error {
	return d.publish(ctx, event{
		Event:     "request.submitted",
		RequestID: req.ID,
		CaseID:    req.CaseID,
		Type:      string(req.Type),
		Status:    string(req.Status),
		Actor:     req.SubmittedBy,
		Timestamp: req.SubmittedAt,
	})
}

// RequestApproved publishes a request.approved event with its apply result.
func (d *KafkaDispatcher) RequestApproved(ctx context.Context, req *request.ChangeRequest, result request.ApplyResult) error {
	evt := event{
		Event:       "request.approved",
		RequestID:   req.ID,
		CaseID:      req.CaseID,
		Type:        string(req.Type),
		Status:      string(req.Status),
		Actor:       req.ApprovedBy,
		ApplyResult: &result,
	}
	if req.ApprovedAt != nil {
		evt.Timestamp = *req.ApprovedAt
	}
	return d.publish(ctx, evt)
}

func (d *KafkaDispatcher) publish(ctx context.Context, evt event) error {
	settings := d.config.Current()
	if !settings.Enabled {
		return nil
	}

	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	record := &kgo.Record{
		Topic: settings.Topic,
		Key:   []byte(evt.CaseID),
		Value: value,
	}
	if err := d.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce %s: %w", evt.Event, err)
	}

	d.logger.DebugContext(ctx, "lifecycle event published",
		"event", evt.Event,
		"id", evt.RequestID,
		"topic", settings.Topic,
	)
	return nil
}

// Close flushes pending records and releases the client.
func (d *KafkaDispatcher) Close() {
	d.client.Close()
}
