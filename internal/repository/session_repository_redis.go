package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/apply-loan/internal/domain"
)

// RedisSessionRepository stores sessions as JSON values with a TTL.
type RedisSessionRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSessionRepository returns a Redis-backed repository.
func NewRedisSessionRepository(client *redis.Client, prefix string, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*domain.FormSession, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decodeSession(raw)
}

func (r *RedisSessionRepository) Save(ctx context.Context, session *domain.FormSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(session.ID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) key(id string) string {
	return r.prefix + ":" + id
}

func decodeSession(raw []byte) (*domain.FormSession, error) {
	var session domain.FormSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}
