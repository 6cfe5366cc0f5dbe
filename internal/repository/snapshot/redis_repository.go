package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fellowship-chat-be/pkg/dialogue"

	"github.com/redis/go-redis/v9"
)

var ErrSnapshotNotFound = errors.New("session snapshot not found")

const keyPrefix = "fellowship:session:"

// RedisRepository persists conversation snapshots so a session survives a
// restart or a move to another instance.
type RedisRepository struct {
	rdb *redis.Client
}

func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb}
}

func (r *RedisRepository) Save(ctx context.Context, snap dialogue.Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.rdb.Set(ctx, keyPrefix+snap.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.ID, err)
	}
	return nil
}

func (r *RedisRepository) Load(ctx context.Context, sessionID string) (*dialogue.Snapshot, error) {
	data, err := r.rdb.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", sessionID, err)
	}

	var snap dialogue.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", sessionID, err)
	}
	return &snap, nil
}

func (r *RedisRepository) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, keyPrefix+sessionID).Err()
}
