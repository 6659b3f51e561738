package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	resp SendResp
	err  error
	req  SendReq
}

func (f *fakeClient) Send(_ context.Context, req SendReq) (SendResp, error) {
	f.req = req
	return f.resp, f.err
}

func TestProvider_Send(t *testing.T) {
	t.Parallel()

	const phone = "+237600000000"
	msg := provider.Message{
		Channel:   domain.ChannelSMS,
		Recipient: domain.Recipient{Id: "1", Phone: phone},
		Body:      "Junior absent 09:30.",
	}

	tcs := []struct {
		name    string
		client  *fakeClient
		wantId  string
		wantErr error
	}{
		{
			name: "ok",
			client: &fakeClient{resp: SendResp{
				RequestId:    "req-1",
				PhoneNumbers: map[string]SendStatus{phone: {SerialNo: "serial-1", PhoneNumber: phone, Code: "Ok"}},
			}},
			wantId: "serial-1",
		}, {
			name: "provider rejected",
			client: &fakeClient{resp: SendResp{
				PhoneNumbers: map[string]SendStatus{phone: {PhoneNumber: phone, Code: "LimitExceeded.PhoneNumberDailyLimit"}},
			}},
			wantErr: errs.ErrProviderFailure,
		}, {
			name:    "missing status",
			client:  &fakeClient{resp: SendResp{PhoneNumbers: map[string]SendStatus{}}},
			wantErr: errs.ErrProviderFailure,
		}, {
			name:   "transport error",
			client: &fakeClient{err: errors.New("connection reset")},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := NewProvider("tencent", tc.client, "Educafric", "100001")
			receipt, err := p.Send(t.Context(), msg)

			assert.Equal(t, []string{phone}, tc.client.req.PhoneNumbers)
			assert.Equal(t, []string{msg.Body}, tc.client.req.TemplateParams)

			if tc.client.err != nil {
				assert.ErrorIs(t, err, tc.client.err)
				return
			}
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantId, receipt.MessageId)
			assert.Equal(t, "tencent", receipt.Provider)
		})
	}
}
