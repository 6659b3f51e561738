package email

import (
	"context"
	"fmt"

	"github.com/mrz1836/postmark"
	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider"
)

// Client Postmark 客户端中用到的方法
type Client interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

var _ Client = (*postmark.Client)(nil)

var _ provider.Provider = (*PostmarkProvider)(nil)

// PostmarkProvider 基于 Postmark 事务邮件接口的邮件供应商
type PostmarkProvider struct {
	client  Client
	from    string
	replyTo string
}

func (p *PostmarkProvider) Name() string {
	return "postmark"
}

func (p *PostmarkProvider) Send(ctx context.Context, msg provider.Message) (provider.Receipt, error) {
	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:     p.from,
		ReplyTo:  p.replyTo,
		To:       msg.Recipient.Email,
		Subject:  msg.Subject,
		Tag:      msg.Template.String(),
		TextBody: msg.Body,
		Metadata: msg.Metadata,
	})
	if err != nil {
		return provider.Receipt{}, fmt.Errorf("[educafric] postmark request failed: %w", err)
	}
	if resp.ErrorCode > 0 {
		return provider.Receipt{}, fmt.Errorf("%w: postmark error: %d - %s", errs.ErrProviderFailure, resp.ErrorCode, resp.Message)
	}

	return provider.Receipt{
		MessageId: resp.MessageID,
		Provider:  p.Name(),
	}, nil
}

func NewPostmarkProvider(client Client, from, replyTo string) *PostmarkProvider {
	return &PostmarkProvider{
		client:  client,
		from:    from,
		replyTo: replyTo,
	}
}
