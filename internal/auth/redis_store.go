package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix  = "campus:session:"
	redisMaxRetries = 5
)

// RedisStore keeps sessions in redis so several api instances can share them.
// Read-modify-write on a key uses WATCH/MULTI, which serializes updates to one
// session without locking any other.
type RedisStore struct {
	rdb redis.UniversalClient
}

func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (r *RedisStore) Create(ctx context.Context, key string, s Session, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ok, err := r.rdb.SetNX(ctx, redisKeyPrefix+key, raw, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("session key collision")
	}
	return nil
}

func (r *RedisStore) Touch(ctx context.Context, key string, fn func(s *Session) (time.Duration, error)) (Session, error) {
	k := redisKeyPrefix + key
	var out Session
	var fnErr error

	txf := func(tx *redis.Tx) error {
		fnErr = nil
		raw, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var s Session
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}

		ttl, err := fn(&s)
		if err != nil {
			fnErr = err
			_, perr := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
				p.Del(ctx, k)
				return nil
			})
			return perr
		}

		next, err := json.Marshal(s)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, k, next, ttl)
			return nil
		})
		if err == nil {
			out = s
		}
		return err
	}

	for i := 0; i < redisMaxRetries; i++ {
		err := r.rdb.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return Session{}, err
		}
		if fnErr != nil {
			return Session{}, fnErr
		}
		return out, nil
	}
	return Session{}, errors.New("session update contention")
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, redisKeyPrefix+key).Err()
}
