package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	ErrLockFailed  = errors.New("获取分布式锁失败")
	ErrLockExpired = errors.New("锁已过期")
)

// DistributedLock 基于 Redis SETNX 的分布式锁
type DistributedLock struct {
	client     *redis.Client
	key        string
	value      string // 持有者标识，释放时校验防止误删他人的锁
	expiration time.Duration
}

func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryLock 尝试获取锁（非阻塞）
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	success, err := l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
	if err != nil {
		return false, err
	}
	return success, nil
}

// Lock 阻塞式获取锁（带重试）
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		success, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if success {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return ErrLockFailed
}

// Unlock 释放锁，Lua 脚本保证「校验+删除」原子执行
func (l *DistributedLock) Unlock(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	return err
}

// NewGiftLock 按用户维度的送礼锁，同一用户的扣款串行执行
func NewGiftLock(client *redis.Client, userID int64, requestID string) *DistributedLock {
	key := fmt.Sprintf("gift:lock:user:%d", userID)
	return NewDistributedLock(client, key, requestID, 30*time.Second)
}

// NewSchedulerLease 调度器 tick 租约，多实例部署时只有一个实例执行到期任务
func NewSchedulerLease(client *redis.Client, instanceID string, ttl time.Duration) *DistributedLock {
	return NewDistributedLock(client, "scheduler:tick:lease", instanceID, ttl)
}
