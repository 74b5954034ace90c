package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/TimeoSitruk/tupref/models"
)

// roomTTL bounds how long an untouched room survives in Redis. Every Put
// refreshes it, so only abandoned rooms expire.
const roomTTL = 24 * time.Hour

// RedisStore keeps each room as a JSON snapshot under room:<id>.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func roomKey(id string) string {
	return "room:" + id
}

func (s *RedisStore) Create(ctx context.Context, id string, room *models.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room %s: %w", id, err)
	}
	ok, err := s.client.SetNX(ctx, roomKey(id), data, roomTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to store room %s: %w", id, err)
	}
	if !ok {
		return ErrAlreadyExists
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Room, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read room %s: %w", id, err)
	}
	var room models.Room
	if err := json.Unmarshal([]byte(data), &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room %s: %w", id, err)
	}
	return &room, nil
}

func (s *RedisStore) Put(ctx context.Context, id string, room *models.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room %s: %w", id, err)
	}
	if err := s.client.Set(ctx, roomKey(id), data, roomTTL).Err(); err != nil {
		return fmt.Errorf("failed to store room %s: %w", id, err)
	}
	return nil
}
