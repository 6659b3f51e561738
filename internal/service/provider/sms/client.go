package sms

import (
	"context"
	"fmt"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	tsms "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/sms/v20210111"
)

type SendReq struct {
	PhoneNumbers   []string
	SignName       string
	TemplateId     string
	TemplateParams []string
}

// SendStatus 单个号码的发送状态
type SendStatus struct {
	SerialNo    string
	PhoneNumber string
	Code        string
	Message     string
	Fee         uint64
}

type SendResp struct {
	RequestId    string
	PhoneNumbers map[string]SendStatus
}

//go:generate mockgen -source=./client.go -destination=./mock/client.mock.go -package=smsmock -typed Client

// Client 短信服务商客户端
type Client interface {
	Send(ctx context.Context, req SendReq) (SendResp, error)
}

var _ Client = (*TencentClient)(nil)

// TencentClient 腾讯云短信客户端
type TencentClient struct {
	client *tsms.Client
	appId  string
}

func (c *TencentClient) Send(ctx context.Context, req SendReq) (SendResp, error) {
	request := tsms.NewSendSmsRequest()
	request.SmsSdkAppId = common.StringPtr(c.appId)
	request.SignName = common.StringPtr(req.SignName)
	request.TemplateId = common.StringPtr(req.TemplateId)
	request.TemplateParamSet = common.StringPtrs(req.TemplateParams)
	request.PhoneNumberSet = common.StringPtrs(req.PhoneNumbers)

	response, err := c.client.SendSmsWithContext(ctx, request)
	if err != nil {
		return SendResp{}, fmt.Errorf("[educafric] tencent sms request failed: %w", err)
	}
	if response.Response == nil {
		return SendResp{}, fmt.Errorf("[educafric] tencent sms empty response")
	}

	resp := SendResp{
		RequestId:    deref(response.Response.RequestId),
		PhoneNumbers: make(map[string]SendStatus, len(response.Response.SendStatusSet)),
	}
	for _, status := range response.Response.SendStatusSet {
		if status == nil {
			continue
		}
		s := SendStatus{
			SerialNo:    deref(status.SerialNo),
			PhoneNumber: deref(status.PhoneNumber),
			Code:        deref(status.Code),
			Message:     deref(status.Message),
		}
		if status.Fee != nil {
			s.Fee = *status.Fee
		}
		resp.PhoneNumbers[s.PhoneNumber] = s
	}
	return resp, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func NewTencentClient(regionId, appId, secretId, secretKey string) (*TencentClient, error) {
	cred := common.NewCredential(secretId, secretKey)
	client, err := tsms.NewClient(cred, regionId, profile.NewClientProfile())
	if err != nil {
		return nil, fmt.Errorf("[educafric] failed to create tencent sms client: %w", err)
	}
	return &TencentClient{
		client: client,
		appId:  appId,
	}, nil
}
