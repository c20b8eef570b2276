package store

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps documents as fields of one redis hash, field = decimal id
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore wraps an existing client; key names the documents hash
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

// OpenRedis connects to addr and verifies the server answers
func OpenRedis(ctx context.Context, addr string, db int, key string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, wrap(ErrStoreUnavailable, err)
	}
	return NewRedisStore(rdb, key), nil
}

// EnsureSchema checks connectivity; a hash needs no creation
func (s *RedisStore) EnsureSchema(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return wrap(ErrStoreUnavailable, err)
	}
	return nil
}

// Save upserts content for id with a single HSET
func (s *RedisStore) Save(ctx context.Context, id int64, content string) error {
	if err := checkID(ErrWriteFailed, id); err != nil {
		return err
	}

	if err := s.rdb.HSet(ctx, s.key, strconv.FormatInt(id, 10), content).Err(); err != nil {
		return wrap(ErrWriteFailed, err)
	}
	return nil
}

// Load returns the content for id
func (s *RedisStore) Load(ctx context.Context, id int64) (string, error) {
	if err := checkID(ErrReadFailed, id); err != nil {
		return "", err
	}

	content, err := s.rdb.HGet(ctx, s.key, strconv.FormatInt(id, 10)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", ErrNotFound
	case err != nil:
		return "", wrap(ErrReadFailed, err)
	}
	return content, nil
}

// AllocateID returns one past the largest numeric field in the hash
func (s *RedisStore) AllocateID(ctx context.Context) (int64, error) {
	fields, err := s.rdb.HKeys(ctx, s.key).Result()
	if err != nil {
		return 0, wrap(ErrReadFailed, err)
	}

	var maxID int64
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			log.Printf("redis store: ignoring non-numeric field %q in %s", f, s.key)
			continue
		}
		if id > maxID {
			maxID = id
		}
	}
	return maxID + 1, nil
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
