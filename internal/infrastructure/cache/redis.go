package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"livesystem/internal/config"

	"github.com/go-redis/redis/v8"
)

var RedisClient *redis.Client

func InitRedis(cfg *config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("连接 Redis 失败: %v", err)
	}

	RedisClient = client
	log.Println("Redis 连接成功")
	return client
}

// ---- 验证码 ----

func vcodeKey(mobile string) string {
	return "vcode:" + mobile
}

func vcodeCooldownKey(mobile string) string {
	return "vcode:cooldown:" + mobile
}

// SetVcode 写入验证码并开启冷却窗口；冷却中返回 false
func SetVcode(ctx context.Context, client *redis.Client, mobile, code string, ttl, cooldown time.Duration) (bool, error) {
	ok, err := client.SetNX(ctx, vcodeCooldownKey(mobile), "1", cooldown).Result()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := client.Set(ctx, vcodeKey(mobile), code, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// GetVcode 读取验证码；不存在返回空串
func GetVcode(ctx context.Context, client *redis.Client, mobile string) (string, error) {
	code, err := client.Get(ctx, vcodeKey(mobile)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return code, err
}

// DelVcode 验证通过后销毁，防止重放
func DelVcode(ctx context.Context, client *redis.Client, mobile string) error {
	return client.Del(ctx, vcodeKey(mobile)).Err()
}

// ---- 余额缓存 ----

func balanceKey(kind string, userID int64) string {
	return fmt.Sprintf("balance:%s:%d", kind, userID)
}

// InvalidateBalance 账务落库后失效缓存，读路径回源重算
func InvalidateBalance(ctx context.Context, client *redis.Client, kind string, userID int64) error {
	return client.Del(ctx, balanceKey(kind, userID)).Err()
}

func GetCachedBalance(ctx context.Context, client *redis.Client, kind string, userID int64) (string, bool, error) {
	val, err := client.Get(ctx, balanceKey(kind, userID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func SetCachedBalance(ctx context.Context, client *redis.Client, kind string, userID int64, val string) error {
	return client.Set(ctx, balanceKey(kind, userID), val, 5*time.Minute).Err()
}
