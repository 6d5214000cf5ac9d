package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"marketfront/auth"
)

// RedisConfig configures the Redis connection backing session caches.
type RedisConfig struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// Connect opens and pings a Redis client.
func Connect(config *RedisConfig) (*redis.Client, error) {
	if config == nil {
		return nil, fmt.Errorf("redis config is required")
	}
	if config.Address == "" {
		config.Address = "localhost:6379"
	}
	if config.PoolSize == 0 {
		config.PoolSize = 10
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisSessions is an auth.SessionStore keyed by the session id carried in
// the request context, so every web session caches its own client token. The
// value is stored with a TTL matching the token expiry and Redis evicts what
// the manager would have treated as stale anyway.
type RedisSessions struct {
	client *redis.Client
}

func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

func (r *RedisSessions) key(ctx context.Context) string {
	sessionID, ok := auth.SessionIDFromContext(ctx)
	if !ok {
		sessionID = "global"
	}
	return fmt.Sprintf("session:%s:client_token", sessionID)
}

func (r *RedisSessions) ClientToken(ctx context.Context) (*auth.Token, error) {
	data, err := r.client.Get(ctx, r.key(ctx)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read client token: %w", err)
	}
	var token auth.Token
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, fmt.Errorf("failed to decode client token: %w", err)
	}
	return &token, nil
}

func (r *RedisSessions) StoreClientToken(ctx context.Context, token *auth.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode client token: %w", err)
	}
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := r.client.Set(ctx, r.key(ctx), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store client token: %w", err)
	}
	return nil
}

// Invalidate drops everything cached for the context's session, used by the
// boundary when authentication is rejected.
func (r *RedisSessions) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, r.key(ctx)).Err()
}
