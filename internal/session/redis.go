package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/alora-app/alora/internal/config"
)

const (
	sessionKeyPrefix = "session:"
	stateKeyPrefix   = "oauthstate:"
)

// RedisStore keeps pending sessions in Redis so any instance of the API
// can consume a session another instance minted. GETDEL gives the
// atomic single-use guarantee.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Close releases the underlying connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Mint stores a pending session under a fresh opaque id.
func (s *RedisStore) Mint(ctx context.Context, identity Identity, ttl time.Duration) (string, error) {
	id := uuid.NewString()
	payload, err := json.Marshal(identity)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+id, payload, ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

// Exchange atomically consumes a pending session.
func (s *RedisStore) Exchange(ctx context.Context, id string) (*Identity, error) {
	val, err := s.client.GetDel(ctx, sessionKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, ErrExpired
	}
	if err != nil {
		return nil, err
	}
	var identity Identity
	if err := json.Unmarshal([]byte(val), &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// PutState stores an OAuth state value for the redirect flow.
func (s *RedisStore) PutState(ctx context.Context, state, redirectURI string, ttl time.Duration) error {
	return s.client.Set(ctx, stateKeyPrefix+state, redirectURI, ttl).Err()
}

// TakeState consumes a state value and returns its redirect URI.
func (s *RedisStore) TakeState(ctx context.Context, state string) (string, error) {
	val, err := s.client.GetDel(ctx, stateKeyPrefix+state).Result()
	if err == redis.Nil {
		return "", ErrExpired
	}
	if err != nil {
		return "", err
	}
	return val, nil
}
