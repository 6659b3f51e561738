package sender

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSendService struct {
	calls atomic.Int32
	send  func(payload domain.NotificationPayload) ([]domain.NotificationResult, error)
}

func (f *fakeSendService) Send(_ context.Context, payload domain.NotificationPayload) ([]domain.NotificationResult, error) {
	f.calls.Add(1)
	return f.send(payload)
}

func echo(success bool) func(payload domain.NotificationPayload) ([]domain.NotificationResult, error) {
	return func(payload domain.NotificationPayload) ([]domain.NotificationResult, error) {
		results := make([]domain.NotificationResult, 0, len(payload.Recipients))
		for _, r := range payload.Recipients {
			results = append(results, domain.NotificationResult{Success: success, RecipientId: r.Id, TransportFailure: !success})
		}
		return results, nil
	}
}

type sleepRecorder struct {
	mu     sync.Mutex
	pauses []time.Duration
	err    error
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pauses = append(r.pauses, d)
	return r.err
}

func bulkPayloads(n int) []domain.NotificationPayload {
	payloads := make([]domain.NotificationPayload, n)
	for i := range payloads {
		payloads[i] = domain.NotificationPayload{
			Channel:    domain.ChannelSMS,
			Template:   domain.TemplateSchoolAnnouncement,
			Recipients: []domain.Recipient{{Id: strconv.Itoa(i), Phone: "+237650000000"}},
			Priority:   domain.PriorityMedium,
		}
	}
	return payloads
}

func TestDefaultBulkSender_BulkSendPacing(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name       string
		cnt        int
		wantPauses []time.Duration
	}{
		{
			name:       "empty",
			cnt:        0,
			wantPauses: nil,
		}, {
			name:       "single batch",
			cnt:        10,
			wantPauses: nil,
		}, {
			name:       "two batches",
			cnt:        11,
			wantPauses: []time.Duration{time.Second},
		}, {
			name:       "three batches",
			cnt:        25,
			wantPauses: []time.Duration{time.Second, time.Second},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := &sleepRecorder{}
			svc := &fakeSendService{send: echo(true)}
			bs := NewDefaultBulkSender(svc, Config{}, zap.NewNop(), WithSleep(rec.sleep))

			payloads := bulkPayloads(tc.cnt)
			results, err := bs.BulkSend(t.Context(), payloads)
			require.NoError(t, err)
			require.Len(t, results, tc.cnt)
			assert.Equal(t, int32(tc.cnt), svc.calls.Load())
			assert.Equal(t, tc.wantPauses, rec.pauses)

			for i, res := range results {
				require.Len(t, res, 1)
				assert.Equal(t, strconv.Itoa(i), res[0].RecipientId)
			}
		})
	}
}

func TestDefaultBulkSender_BulkSendInvalidPayload(t *testing.T) {
	t.Parallel()

	payloads := bulkPayloads(12)
	payloads[11].Recipients = nil

	svc := &fakeSendService{send: echo(true)}
	rec := &sleepRecorder{}
	bs := NewDefaultBulkSender(svc, Config{}, zap.NewNop(), WithSleep(rec.sleep))

	results, err := bs.BulkSend(t.Context(), payloads)
	assert.ErrorIs(t, err, errs.ErrInvalidParam)
	assert.Nil(t, results)
	assert.Zero(t, svc.calls.Load())
	assert.Empty(t, rec.pauses)
}

func TestDefaultBulkSender_BulkSendIsolatesFailures(t *testing.T) {
	t.Parallel()

	ok := echo(true)
	svc := &fakeSendService{send: func(payload domain.NotificationPayload) ([]domain.NotificationResult, error) {
		if payload.Recipients[0].Id == "3" {
			return nil, errs.ErrInvalidChannel
		}
		return ok(payload)
	}}
	bs := NewDefaultBulkSender(svc, Config{}, zap.NewNop(), WithSleep((&sleepRecorder{}).sleep))

	results, err := bs.BulkSend(t.Context(), bulkPayloads(5))
	require.NoError(t, err)
	require.Len(t, results, 5)

	for i, res := range results {
		require.Len(t, res, 1)
		assert.Equal(t, strconv.Itoa(i), res[0].RecipientId)
		assert.Equal(t, i != 3, res[0].Success)
	}
	assert.Contains(t, results[3][0].Error, errs.ErrInvalidChannel.Error())
}

func TestDefaultBulkSender_BulkSendBackoff(t *testing.T) {
	t.Parallel()

	rec := &sleepRecorder{}
	svc := &fakeSendService{send: echo(false)}
	bs := NewDefaultBulkSender(svc, Config{
		BatchSize:        10,
		BatchInterval:    time.Second,
		MaxBatchInterval: 3 * time.Second,
	}, zap.NewNop(), WithSleep(rec.sleep))

	results, err := bs.BulkSend(t.Context(), bulkPayloads(25))
	require.NoError(t, err)
	require.Len(t, results, 25)

	// 每批全部失败，暂停时间翻倍
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, rec.pauses)
}

func TestDefaultBulkSender_BulkSendCallerErrorsKeepPace(t *testing.T) {
	t.Parallel()

	rec := &sleepRecorder{}
	svc := &fakeSendService{send: func(payload domain.NotificationPayload) ([]domain.NotificationResult, error) {
		results := make([]domain.NotificationResult, 0, len(payload.Recipients))
		for _, r := range payload.Recipients {
			results = append(results, domain.FailedResult(r.Id, errs.ErrMissingContact))
		}
		return results, nil
	}}
	bs := NewDefaultBulkSender(svc, Config{
		BatchSize:        10,
		BatchInterval:    time.Second,
		MaxBatchInterval: 3 * time.Second,
	}, zap.NewNop(), WithSleep(rec.sleep))

	results, err := bs.BulkSend(t.Context(), bulkPayloads(25))
	require.NoError(t, err)
	require.Len(t, results, 25)
	assert.False(t, results[0][0].Success)

	// 收件人缺少手机号不影响批次间隔
	assert.Equal(t, []time.Duration{time.Second, time.Second}, rec.pauses)
}

func TestDefaultBulkSender_BulkSendCanceled(t *testing.T) {
	t.Parallel()

	rec := &sleepRecorder{err: context.Canceled}
	svc := &fakeSendService{send: echo(true)}
	bs := NewDefaultBulkSender(svc, Config{}, zap.NewNop(), WithSleep(rec.sleep))

	results, err := bs.BulkSend(t.Context(), bulkPayloads(15))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, results)
	assert.Equal(t, int32(10), svc.calls.Load())
}

func TestSleepCtx(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepCtx(t.Context(), time.Millisecond))
}
