package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// SessionRepository stores local sessions. A session is live while its key exists.
type SessionRepository interface {
	Save(ctx context.Context, rec *model.SessionRecord) error
	Get(ctx context.Context, id string) (*model.SessionRecord, error)
	FindByRefreshHash(ctx context.Context, refreshHash string) (*model.SessionRecord, error)
	Delete(ctx context.Context, id string) error
}

type redisSessionRepository struct {
	rdb *redis.Client
}

func NewRedisSessionRepository(rdb *redis.Client) SessionRepository {
	return &redisSessionRepository{rdb: rdb}
}

func sessionKey(id string) string   { return "session:" + id }
func refreshKey(hash string) string { return "session_refresh:" + hash }

func (r *redisSessionRepository) Save(ctx context.Context, rec *model.SessionRecord) error {
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired: %w", rec.ID, common.ErrBadRequest)
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redisSessionRepository.Save marshal: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, sessionKey(rec.ID), payload, ttl)
	pipe.Set(ctx, refreshKey(rec.RefreshHash), rec.ID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redisSessionRepository.Save: %w", err)
	}
	return nil
}

func (r *redisSessionRepository) Get(ctx context.Context, id string) (*model.SessionRecord, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("redisSessionRepository.Get: %w", err)
	}
	rec := &model.SessionRecord{}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("redisSessionRepository.Get unmarshal: %w", err)
	}
	return rec, nil
}

func (r *redisSessionRepository) FindByRefreshHash(ctx context.Context, refreshHash string) (*model.SessionRecord, error) {
	id, err := r.rdb.Get(ctx, refreshKey(refreshHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("redisSessionRepository.FindByRefreshHash: %w", err)
	}
	return r.Get(ctx, id)
}

// Delete is idempotent: deleting an unknown session is not an error.
func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	rec, err := r.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := r.rdb.Del(ctx, sessionKey(id), refreshKey(rec.RefreshHash)).Err(); err != nil {
		return fmt.Errorf("redisSessionRepository.Delete: %w", err)
	}
	return nil
}
