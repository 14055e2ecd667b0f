package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "summaread:session:"

// RedisStore keeps each session under its own key; expiry is the key TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to addr and checks the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errortypes.DatabaseError(err, "failed to connect to Redis").WithField("addr", addr)
	}
	return &RedisStore{client: client}, nil
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

// Put replaces the session's key and resets its TTL.
func (s *RedisStore) Put(ctx context.Context, rec *Record) error {
	if err := ValidateSessionID(rec.SessionID); err != nil {
		return err
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return errortypes.InternalError(err, "failed to encode session")
	}

	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, rec.SessionID)
	}

	if err := s.client.Set(ctx, redisKey(rec.SessionID), payload, ttl).Err(); err != nil {
		return errortypes.DatabaseError(err, "failed to store session").WithField("session_id", rec.SessionID)
	}
	return nil
}

// Get returns the session's record.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Record, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, redisKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(sessionID)
	}
	if err != nil {
		return nil, errortypes.DatabaseError(err, "failed to read session").WithField("session_id", sessionID)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errortypes.DatabaseError(err, "corrupt session entry").WithField("session_id", sessionID)
	}
	return &rec, nil
}

// Delete removes the session's key.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}
	if err := s.client.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return errortypes.DatabaseError(err, "failed to delete session").WithField("session_id", sessionID)
	}
	return nil
}

// PurgeExpired is a no-op: Redis expires keys itself.
func (s *RedisStore) PurgeExpired(context.Context) (int, error) {
	return 0, nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
