package relay

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mediahub/vhub/errors"
	"github.com/mediahub/vhub/retry"
)

// redisRetry governs how many times a Redis op is retried on a transient
// failure (connection reset, timeout) before the hook gives up.
var redisRetry = errors.DefaultRetryConfig().ToRetryConfig()

// Redis key scheme for the four hooks of spec §6. devNamesKey is a Set so
// AddDevName is naturally idempotent; loadKey is a Sorted Set scored by
// current viewer count so GetBestDarwin can pick the minimum with one
// ZRangeWithScores call instead of scanning every relay's load counter.
const (
	devNamesKey = "vhub:devnames"
	loadKey     = "vhub:darwin:load"
)

func assocKey(serial, channel string) string {
	return "vhub:assoc:" + serial + ":" + channel
}

func streamKey(id string) string {
	return "vhub:stream:" + id
}

// RedisHooks backs Hooks with a shared Redis instance, grounded on
// SPEC_FULL.md §3's domain-stack table entry for relay/go-redis.
type RedisHooks struct {
	client *redis.Client
}

// NewRedisHooks wraps an already-constructed client. Callers build the
// client from config.RelayStoreConfig (addr/password/db) at startup.
func NewRedisHooks(client *redis.Client) *RedisHooks {
	return &RedisHooks{client: client}
}

func (h *RedisHooks) AddDevName(ctx context.Context, serial string) error {
	err := retry.Do(ctx, redisRetry, func() error {
		return h.client.SAdd(ctx, devNamesKey, serial).Err()
	})
	if err != nil {
		return errors.WrapTransient(err, "relay", "AddDevName", "SADD "+devNamesKey)
	}
	return nil
}

func (h *RedisHooks) GetAssociatedDarwin(ctx context.Context, serial, channel string) (string, string, bool, error) {
	var addr string
	var notFound bool
	err := retry.Do(ctx, redisRetry, func() error {
		var getErr error
		addr, getErr = h.client.Get(ctx, assocKey(serial, channel)).Result()
		if getErr == redis.Nil {
			notFound = true
			return nil
		}
		return getErr
	})
	if notFound {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, errors.WrapTransient(err, "relay", "GetAssociatedDarwin", "GET "+assocKey(serial, channel))
	}
	ip, port, ok := splitAddr(addr)
	return ip, port, ok, nil
}

func (h *RedisHooks) GetBestDarwin(ctx context.Context) (string, string, bool, error) {
	var results []redis.Z
	err := retry.Do(ctx, redisRetry, func() error {
		var zErr error
		results, zErr = h.client.ZRangeWithScores(ctx, loadKey, 0, 0).Result()
		return zErr
	})
	if err != nil {
		return "", "", false, errors.WrapTransient(err, "relay", "GetBestDarwin", "ZRANGE "+loadKey)
	}
	if len(results) == 0 {
		return "", "", false, nil
	}
	addr, ok := results[0].Member.(string)
	if !ok {
		return "", "", false, nil
	}
	ip, port, ok := splitAddr(addr)
	return ip, port, ok, nil
}

func (h *RedisHooks) GenStreamID(ctx context.Context, timeout time.Duration) (string, error) {
	id := uuid.NewString()
	err := retry.Do(ctx, redisRetry, func() error {
		return h.client.Set(ctx, streamKey(id), "1", timeout).Err()
	})
	if err != nil {
		return "", errors.WrapTransient(err, "relay", "GenStreamID", "SET "+streamKey(id))
	}
	return id, nil
}

// splitAddr splits a stored "ip:port" value, tolerating IPv6 addresses by
// splitting on the last colon rather than the first.
func splitAddr(addr string) (ip, port string, ok bool) {
	i := strings.LastIndexByte(addr, ':')
	if i < 0 || i == len(addr)-1 {
		return "", "", false
	}
	return addr[:i], addr[i+1:], true
}
