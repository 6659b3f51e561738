package policy

import (
	"context"
	"encoding/json"

	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const DefaultRateKey = "/educafric/config/sms_rates"

var _ RateSource = (*EtcdRateSource)(nil)

// EtcdRateSource 从 etcd 单个 key 读取 json 编码的费率表
type EtcdRateSource struct {
	client *clientv3.Client
	key    string
}

func (s *EtcdRateSource) Load(ctx context.Context) (RateTable, bool, error) {
	resp, err := s.client.Get(ctx, s.key)
	if err != nil {
		return RateTable{}, false, err
	}
	if len(resp.Kvs) == 0 {
		return RateTable{}, false, nil
	}

	table, err := decodeRateTable(resp.Kvs[0].Value)
	if err != nil {
		return RateTable{}, false, err
	}
	return table, true, nil
}

func (s *EtcdRateSource) Watch(ctx context.Context) <-chan RateUpdate {
	ch := s.client.Watch(clientv3.WithRequireLeader(ctx), s.key)
	res := make(chan RateUpdate)

	go func() {
		defer close(res)
		for {
			select {
			case <-ctx.Done():
				return
			case resp, ok := <-ch:
				if !ok || resp.Canceled {
					return
				}
				if resp.Err() != nil {
					continue
				}

				for _, e := range resp.Events {
					// 删除 key 时保留当前费率
					if e.Type != mvccpb.PUT {
						continue
					}
					table, err := decodeRateTable(e.Kv.Value)
					select {
					case res <- RateUpdate{Table: table, Err: err}:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return res
}

func decodeRateTable(val []byte) (RateTable, error) {
	var table RateTable
	if err := json.Unmarshal(val, &table); err != nil {
		return RateTable{}, err
	}
	return table, nil
}

func NewEtcdRateSource(client *clientv3.Client, key string) *EtcdRateSource {
	if key == "" {
		key = DefaultRateKey
	}
	return &EtcdRateSource{
		client: client,
		key:    key,
	}
}
