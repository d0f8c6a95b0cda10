package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:active:"

// touchScript refreshes last-seen and the idle TTL only for the holder.
var touchScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then return 0 end
local s = cjson.decode(v)
if s.sessionId ~= ARGV[1] then return 0 end
s.lastSeenAt = ARGV[2]
redis.call('SET', KEYS[1], cjson.encode(s), 'PX', ARGV[3])
return 1
`)

var deleteScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then return 0 end
if cjson.decode(v).sessionId ~= ARGV[1] then return 0 end
return redis.call('DEL', KEYS[1])
`)

// RedisStore keeps each user's session under one key that expires after
// the idle TTL, so idle sessions vanish without a cleanup job.
type RedisStore struct {
	rdb     *redis.Client
	idleTTL time.Duration
}

func NewRedisStore(rdb *redis.Client, idleTTL time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, idleTTL: idleTTL}
}

func (s *RedisStore) Put(ctx context.Context, next *ActiveSession) (*ActiveSession, error) {
	data, err := json.Marshal(next)
	if err != nil {
		return nil, err
	}

	old, err := s.rdb.SetArgs(ctx, redisKeyPrefix+next.UserID, data, redis.SetArgs{
		TTL: s.idleTTL,
		Get: true,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(old)
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*ActiveSession, error) {
	v, err := s.rdb.Get(ctx, redisKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(v)
}

func (s *RedisStore) Touch(ctx context.Context, userID, sessionID string, at time.Time) error {
	ttl := strconv.FormatInt(s.idleTTL.Milliseconds(), 10)
	return touchScript.Run(ctx, s.rdb, []string{redisKeyPrefix + userID},
		sessionID, at.UTC().Format(time.RFC3339Nano), ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, userID, sessionID string) (bool, error) {
	n, err := deleteScript.Run(ctx, s.rdb, []string{redisKeyPrefix + userID}, sessionID).Int64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteIdle is a no-op: keys expire on their own.
func (s *RedisStore) DeleteIdle(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func decodeSession(v string) (*ActiveSession, error) {
	var a ActiveSession
	if err := json.Unmarshal([]byte(v), &a); err != nil {
		return nil, err
	}
	return &a, nil
}
