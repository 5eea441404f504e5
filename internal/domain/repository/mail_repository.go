package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// MailRepository is the outbox: message bodies live under mail:<id>, the queue holds IDs.
// LPUSH adds at the tail, BRPOP takes from the head. Delayed retries wait in <queue>:retry, a
// sorted set scored by the unix millisecond they become due.
type MailRepository interface {
	Enqueue(ctx context.Context, msg *model.MailMessage) error
	// Dequeue moves due retries into the queue, then blocks up to timeout and returns
	// common.ErrNotFound when nothing arrived.
	Dequeue(ctx context.Context, timeout time.Duration) (*model.MailMessage, error)
	Requeue(ctx context.Context, msg *model.MailMessage, delay time.Duration) error
	DeadLetter(ctx context.Context, msg *model.MailMessage) error
	Complete(ctx context.Context, id string) error
}

type redisMailRepository struct {
	rdb       *redis.Client
	queueName string
}

func NewRedisMailRepository(rdb *redis.Client, queueName string) MailRepository {
	return &redisMailRepository{rdb: rdb, queueName: queueName}
}

const mailRetention = 7 * 24 * time.Hour

func mailKey(id string) string { return "mail:" + id }

func (r *redisMailRepository) deadQueue() string { return r.queueName + ":dead" }

func (r *redisMailRepository) retrySet() string { return r.queueName + ":retry" }

var promoteDue = redis.NewScript(`
local due = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
for _, id in ipairs(due) do
	redis.call("ZREM", KEYS[1], id)
	redis.call("LPUSH", KEYS[2], id)
end
return #due
`)

func (r *redisMailRepository) save(ctx context.Context, pipe redis.Pipeliner, msg *model.MailMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("redisMailRepository marshal %s: %w", msg.ID, err)
	}
	pipe.Set(ctx, mailKey(msg.ID), payload, mailRetention)
	return nil
}

func (r *redisMailRepository) Enqueue(ctx context.Context, msg *model.MailMessage) error {
	pipe := r.rdb.TxPipeline()
	if err := r.save(ctx, pipe, msg); err != nil {
		return err
	}
	pipe.LPush(ctx, r.queueName, msg.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redisMailRepository.Enqueue: %w", err)
	}
	return nil
}

func (r *redisMailRepository) Dequeue(ctx context.Context, timeout time.Duration) (*model.MailMessage, error) {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := promoteDue.Run(ctx, r.rdb, []string{r.retrySet(), r.queueName}, now).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redisMailRepository.Dequeue promote: %w", err)
	}

	res, err := r.rdb.BRPop(ctx, timeout, r.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("redisMailRepository.Dequeue: %w", err)
	}
	// res is [queueName, value]
	if len(res) < 2 || res[1] == "" {
		return nil, common.ErrNotFound
	}

	raw, err := r.rdb.Get(ctx, mailKey(res[1])).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("mail %s expired before delivery: %w", res[1], common.ErrNotFound)
		}
		return nil, fmt.Errorf("redisMailRepository.Dequeue get: %w", err)
	}
	msg := &model.MailMessage{}
	if err := json.Unmarshal(raw, msg); err != nil {
		return nil, fmt.Errorf("redisMailRepository.Dequeue unmarshal: %w", err)
	}
	return msg, nil
}

// Requeue puts the message behind fresh mail. A positive delay parks it in the retry set
// until it is due.
func (r *redisMailRepository) Requeue(ctx context.Context, msg *model.MailMessage, delay time.Duration) error {
	pipe := r.rdb.TxPipeline()
	if err := r.save(ctx, pipe, msg); err != nil {
		return err
	}
	if delay > 0 {
		due := float64(time.Now().Add(delay).UnixMilli())
		pipe.ZAdd(ctx, r.retrySet(), redis.Z{Score: due, Member: msg.ID})
	} else {
		pipe.LPush(ctx, r.queueName, msg.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redisMailRepository.Requeue: %w", err)
	}
	return nil
}

func (r *redisMailRepository) DeadLetter(ctx context.Context, msg *model.MailMessage) error {
	pipe := r.rdb.TxPipeline()
	if err := r.save(ctx, pipe, msg); err != nil {
		return err
	}
	pipe.LPush(ctx, r.deadQueue(), msg.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redisMailRepository.DeadLetter: %w", err)
	}
	return nil
}

func (r *redisMailRepository) Complete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, mailKey(id)).Err(); err != nil {
		return fmt.Errorf("redisMailRepository.Complete: %w", err)
	}
	return nil
}
