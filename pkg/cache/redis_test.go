package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache connects to TOPODRAW_TEST_REDIS or skips.
func redisCache(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("TOPODRAW_TEST_REDIS")
	if addr == "" {
		t.Skip("TOPODRAW_TEST_REDIS not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisCache(t *testing.T) {
	c := redisCache(t)
	ctx := context.Background()
	key := NewScopedKeyer(nil, "topodraw:test:").LayoutKey(Hash([]byte(t.Name())), LayoutKeyOpts{})

	if err := c.Set(ctx, key, []byte("diagram"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "diagram" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, err := c.Get(ctx, key); hit || err != nil {
		t.Errorf("Get after Delete: hit=%v err=%v", hit, err)
	}
}

func TestNewRedisCacheRequiresAddr(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), RedisConfig{}); err == nil {
		t.Error("NewRedisCache without address should fail")
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	if IsRetryable(classify(redis.Nil)) {
		t.Error("redis.Nil is a miss, not a transient failure")
	}
	netErr := &net.OpError{Op: "dial", Err: errors.New("refused")}
	if !IsRetryable(classify(netErr)) {
		t.Error("network errors should be retryable")
	}
	if IsRetryable(classify(errors.New("WRONGTYPE"))) {
		t.Error("server errors should not be retryable")
	}
}
