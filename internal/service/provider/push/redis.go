package push

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider"
)

const channelPrefix = "push:"

// Envelope 推送到客户端订阅频道的消息体
type Envelope struct {
	Id       string            `json:"id"`
	Template string            `json:"template"`
	Priority string            `json:"priority"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

var _ provider.Provider = (*RedisProvider)(nil)

// RedisProvider 通过 redis pub/sub 把推送消息投递给在线客户端网关
type RedisProvider struct {
	client redis.Cmdable
}

func (p *RedisProvider) Name() string {
	return "redis_push"
}

func (p *RedisProvider) Send(ctx context.Context, msg provider.Message) (provider.Receipt, error) {
	env := Envelope{
		Id:       uuid.NewString(),
		Template: msg.Template.String(),
		Priority: msg.Priority.String(),
		Title:    msg.Subject,
		Body:     msg.Body,
		Metadata: msg.Metadata,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return provider.Receipt{}, fmt.Errorf("[educafric] marshal push envelope: %w", err)
	}

	if err = p.client.Publish(ctx, ChannelOf(msg.Recipient.Id), data).Err(); err != nil {
		return provider.Receipt{}, fmt.Errorf("[educafric] publish push message: %w", err)
	}
	return provider.Receipt{
		MessageId: env.Id,
		Provider:  p.Name(),
	}, nil
}

// ChannelOf 收件人订阅的推送频道
func ChannelOf(recipientId string) string {
	return channelPrefix + recipientId
}

func NewRedisProvider(client redis.Cmdable) *RedisProvider {
	return &RedisProvider{
		client: client,
	}
}
