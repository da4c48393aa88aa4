package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saas-webapp/web/internal/config"
	"github.com/saas-webapp/web/internal/model"
)

const redisNamespace = "session"

// RedisStore keeps sessions as JSON values under "session:<key>". Keys expire
// when the cookie does: ttl after the session's CreatedAt.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(cfg config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	db, err := strconv.Atoi(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       db,
	})
	return NewRedisStoreWithClient(client, ttl), nil
}

func NewRedisStoreWithClient(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Save(ctx context.Context, sess *model.Session) error {
	if sess == nil || sess.Key == "" {
		return fmt.Errorf("session key cannot be empty")
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	expiry := r.ttl
	if r.ttl > 0 && !sess.CreatedAt.IsZero() {
		expiry = sess.CreatedAt.Add(r.ttl).Sub(r.now())
		if expiry <= 0 {
			return r.client.Del(ctx, redisKey(sess.Key)).Err()
		}
	}
	return r.client.Set(ctx, redisKey(sess.Key), payload, expiry).Err()
}

func (r *RedisStore) Load(ctx context.Context, key string) (*model.Session, error) {
	raw, err := r.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var sess model.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &sess, nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, redisKey(key)).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func redisKey(key string) string {
	return redisNamespace + ":" + key
}
