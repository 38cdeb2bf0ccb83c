package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rotationKeyPrefix = "inkwell:refresh:"

// rotateScript swaps the stored id only if it still equals ARGV[1].
var rotateScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
end
return 0
`)

// RedisRotationStore keeps the refresh chain in Redis, one key per subject
// that expires together with the newest refresh token.
type RedisRotationStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisRotationStore(client redis.UniversalClient) *RedisRotationStore {
	return &RedisRotationStore{
		client: client,
		now:    time.Now,
	}
}

func (s *RedisRotationStore) RecordRefresh(
	ctx context.Context,
	subject string,
	tokenID string,
	expiration time.Time,
) error {
	ttl := s.ttl(expiration)
	if err := s.client.Set(ctx, rotationKey(subject), tokenID, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisRotationStore) RotateRefresh(
	ctx context.Context,
	subject string,
	presentedID string,
	nextID string,
	expiration time.Time,
) (
	bool,
	error,
) {
	ttl := s.ttl(expiration)
	swapped, err := rotateScript.Run(
		ctx,
		s.client,
		[]string{rotationKey(subject)},
		presentedID,
		nextID,
		ttl.Milliseconds(),
	).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("redis rotate: %w", err)
	}
	return swapped == 1, nil
}

func (s *RedisRotationStore) ForgetRefresh(
	ctx context.Context,
	subject string,
) error {
	if err := s.client.Del(ctx, rotationKey(subject)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisRotationStore) ttl(expiration time.Time) time.Duration {
	ttl := expiration.Sub(s.now())
	if ttl < time.Millisecond {
		return time.Millisecond
	}
	return ttl
}

func rotationKey(subject string) string {
	return rotationKeyPrefix + subject
}
