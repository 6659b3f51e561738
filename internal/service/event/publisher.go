package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
)

const DefaultDeliveryTopic = "notification.delivery"

// DeliveryEvent 一次分发完成后的投递事件，供报表等下游消费。
type DeliveryEvent struct {
	EventId      string                      `json:"event_id"`
	Channel      domain.Channel              `json:"channel"`
	Template     domain.TemplateKey          `json:"template"`
	Priority     domain.Priority             `json:"priority"`
	SchoolId     uint64                      `json:"school_id,omitempty"`
	SenderId     uint64                      `json:"sender_id,omitempty"`
	SuccessCount int                         `json:"success_count"`
	FailureCount int                         `json:"failure_count"`
	Results      []domain.NotificationResult `json:"results"`
	OccurredAt   time.Time                   `json:"occurred_at"`
}

// NewDeliveryEvent 根据载荷和发送结果构造事件
func NewDeliveryEvent(payload domain.NotificationPayload, results []domain.NotificationResult, at time.Time) DeliveryEvent {
	success, failure := domain.CountResults(results)
	return DeliveryEvent{
		EventId:      uuid.NewString(),
		Channel:      payload.Channel,
		Template:     payload.Template,
		Priority:     payload.Priority,
		SchoolId:     payload.SchoolId,
		SenderId:     payload.SenderId,
		SuccessCount: success,
		FailureCount: failure,
		Results:      results,
		OccurredAt:   at,
	}
}

//go:generate mockgen -source=./publisher.go -destination=./mock/publisher.mock.go -package=eventmock -typed Publisher

// Publisher 投递事件发布器
type Publisher interface {
	Publish(ctx context.Context, evt DeliveryEvent) error
}

// MessageWriter kafka.Writer 中用到的方法
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

var _ MessageWriter = (*kafka.Writer)(nil)

var _ Publisher = (*KafkaPublisher)(nil)

type KafkaPublisher struct {
	writer MessageWriter
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt DeliveryEvent) error {
	val, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("[educafric] marshal delivery event: %w", err)
	}

	// 以模板作为 key，同一模板的事件落在同一分区保证顺序
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.Template.String()),
		Value: val,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(evt.EventId)},
			{Key: "channel", Value: []byte(evt.Channel.String())},
		},
	})
	if err != nil {
		return fmt.Errorf("[educafric] publish delivery event: %w", err)
	}
	return nil
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{
		writer: writer,
	}
}

// NewKafkaWriter 创建投递事件使用的 kafka.Writer
func NewKafkaWriter(brokers []string, topic string, batchTimeout time.Duration) *kafka.Writer {
	if topic == "" {
		topic = DefaultDeliveryTopic
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: batchTimeout,
	}
}

var _ Publisher = NopPublisher{}

// NopPublisher 未配置 kafka 时使用，丢弃所有事件
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, DeliveryEvent) error {
	return nil
}
