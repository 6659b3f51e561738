//go:build e2e

package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clientv3 "go.etcd.io/etcd/client/v3"
)

func TestEtcdRegistry(t *testing.T) {
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   []string{"127.0.0.1:2379"},
		DialTimeout: 3 * time.Second,
	})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	r, err := NewEtcdRegistry(client)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	events := r.Subscribe("notifier-test")
	// 等待 watch 建立
	time.Sleep(100 * time.Millisecond)

	si := ServiceInstance{Name: "notifier-test", Addr: "127.0.0.1:9090", Group: "default"}
	require.NoError(t, r.Register(ctx, si))

	e := <-events
	assert.Equal(t, EventTypePut, e.Type)

	instances, err := r.ListService(ctx, "notifier-test")
	require.NoError(t, err)
	assert.Equal(t, []ServiceInstance{si}, instances)

	require.NoError(t, r.Unregister(ctx, si))
	e = <-events
	assert.Equal(t, EventTypeDelete, e.Type)

	instances, err = r.ListService(ctx, "notifier-test")
	require.NoError(t, err)
	assert.Empty(t, instances)
}
