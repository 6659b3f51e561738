package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider"
)

const DefaultBaseURL = "https://graph.facebook.com/v18.0"

type textBody struct {
	Body string `json:"body"`
}

type sendReq struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type sendResp struct {
	Messages []struct {
		Id string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

var _ provider.Provider = (*CloudProvider)(nil)

// CloudProvider WhatsApp Cloud API 供应商
type CloudProvider struct {
	client        *http.Client
	baseURL       string
	phoneNumberId string
	accessToken   string
}

func (p *CloudProvider) Name() string {
	return "whatsapp_cloud"
}

func (p *CloudProvider) Send(ctx context.Context, msg provider.Message) (provider.Receipt, error) {
	payload, err := json.Marshal(sendReq{
		MessagingProduct: "whatsapp",
		// Cloud API 要求号码不带 "+"
		To:   strings.TrimPrefix(msg.Recipient.Phone, "+"),
		Type: "text",
		Text: textBody{Body: msg.Body},
	})
	if err != nil {
		return provider.Receipt{}, err
	}

	url := fmt.Sprintf("%s/%s/messages", p.baseURL, p.phoneNumberId)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return provider.Receipt{}, err
	}
	req.Header.Set("Authorization", "Bearer "+p.accessToken)
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(req)
	if err != nil {
		return provider.Receipt{}, fmt.Errorf("[educafric] whatsapp request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return provider.Receipt{}, fmt.Errorf("[educafric] read whatsapp response: %w", err)
	}

	var resp sendResp
	if len(body) > 0 {
		if err = json.Unmarshal(body, &resp); err != nil {
			return provider.Receipt{}, fmt.Errorf("[educafric] decode whatsapp response: %w", err)
		}
	}

	if resp.Error != nil {
		return provider.Receipt{}, fmt.Errorf(
			"%w: whatsapp error: %d - %s", errs.ErrProviderFailure, resp.Error.Code, resp.Error.Message,
		)
	}
	if httpResp.StatusCode >= http.StatusInternalServerError {
		// 服务端错误可重试
		return provider.Receipt{}, fmt.Errorf("[educafric] whatsapp server error: status = %d", httpResp.StatusCode)
	}
	if httpResp.StatusCode >= http.StatusBadRequest || len(resp.Messages) == 0 {
		return provider.Receipt{}, fmt.Errorf("%w: whatsapp status = %d", errs.ErrProviderFailure, httpResp.StatusCode)
	}

	return provider.Receipt{
		MessageId: resp.Messages[0].Id,
		Provider:  p.Name(),
	}, nil
}

func NewCloudProvider(baseURL, phoneNumberId, accessToken string, timeout time.Duration) *CloudProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &CloudProvider{
		client:        &http.Client{Timeout: timeout},
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		phoneNumberId: phoneNumberId,
		accessToken:   accessToken,
	}
}
