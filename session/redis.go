package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each session in a hash under "session:<id>" with a TTL.
type RedisStore struct {
	conn *redis.Client
}

func NewRedisStore(conn *redis.Client) *RedisStore {
	return &RedisStore{conn: conn}
}

func redisKey(id string) string {
	return "session:" + id
}

func (r *RedisStore) Save(ctx context.Context, s *Session, ttl time.Duration) error {
	key := redisKey(s.ID)
	pipe := r.conn.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"token":     s.Token,
		"isAdmin":   strconv.FormatBool(s.IsAdmin),
		"userId":    s.UserID,
		"email":     s.Email,
		"createdAt": s.CreatedAt.Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	vals, err := r.conn.HGetAll(ctx, redisKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(vals) == 0 {
		return nil, ErrNotFound
	}
	isAdmin, _ := strconv.ParseBool(vals["isAdmin"])
	created, _ := time.Parse(time.RFC3339Nano, vals["createdAt"])
	return &Session{
		ID:        id,
		Token:     vals["token"],
		IsAdmin:   isAdmin,
		UserID:    vals["userId"],
		Email:     vals["email"],
		CreatedAt: created,
	}, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.conn.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
