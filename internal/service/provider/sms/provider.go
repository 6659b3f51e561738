package sms

import (
	"context"
	"fmt"
	"strings"

	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider"
)

const statusOk = "Ok"

var _ provider.Provider = (*Provider)(nil)

// Provider 短信供应商。
//
// 供应商侧配置一个只含单个变量的通用模板，渲染好的消息正文作为唯一参数传入。
type Provider struct {
	name       string
	client     Client
	signName   string
	templateId string
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) Send(ctx context.Context, msg provider.Message) (provider.Receipt, error) {
	phone := msg.Recipient.Phone
	resp, err := p.client.Send(ctx, SendReq{
		PhoneNumbers:   []string{phone},
		SignName:       p.signName,
		TemplateId:     p.templateId,
		TemplateParams: []string{msg.Body},
	})
	if err != nil {
		return provider.Receipt{}, err
	}

	status, ok := resp.PhoneNumbers[phone]
	if !ok {
		return provider.Receipt{}, fmt.Errorf("%w: no send status for phone, request id = %s", errs.ErrProviderFailure, resp.RequestId)
	}
	if !strings.EqualFold(status.Code, statusOk) {
		return provider.Receipt{}, fmt.Errorf(
			"%w: Response Code = %s, Response Message = %s", errs.ErrProviderFailure, status.Code, status.Message,
		)
	}

	return provider.Receipt{
		MessageId: status.SerialNo,
		Provider:  p.name,
	}, nil
}

func NewProvider(name string, client Client, signName, templateId string) *Provider {
	return &Provider{
		name:       name,
		client:     client,
		signName:   signName,
		templateId: templateId,
	}
}
