package idempotent

import "context"

const keyPrefix = "educafric:idempotent:"

//go:generate mockgen -source=./types.go -destination=./mock/idempotent.mock.go -package=idempotentmock -typed Strategy

// Strategy 幂等策略
//
// Claim 首次占用 key 时返回 true，key 已被占用（且未过期）时返回 false。
// Release 释放 key，用于业务失败后允许重试。
type Strategy interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}
