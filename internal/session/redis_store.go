package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"migrator/bot/internal/intake"
)

// sessionTTL caps how long an abandoned intake session lingers.
const sessionTTL = 24 * time.Hour

// RedisStore keeps intake sessions in Redis so a half-finished flow survives
// a process restart.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{client: client, prefix: "intake:"}, nil
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + userID
}

func (s *RedisStore) Get(ctx context.Context, userID string) (intake.Session, bool, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return intake.Session{}, false, nil
	}
	if err != nil {
		return intake.Session{}, false, fmt.Errorf("get session: %w", err)
	}
	var sess intake.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return intake.Session{}, false, fmt.Errorf("unmarshal session: %w", err)
	}
	return sess, true, nil
}

func (s *RedisStore) Put(ctx context.Context, sess intake.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.UserID), raw, sessionTTL).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteByChannel scans all sessions; the keyspace is small (one key per
// user mid-intake), so a full scan per channel deletion is fine.
func (s *RedisStore) DeleteByChannel(ctx context.Context, channelID string) ([]string, error) {
	var purged []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return purged, fmt.Errorf("scan session %s: %w", iter.Val(), err)
		}
		var sess intake.Session
		if err := json.Unmarshal(raw, &sess); err != nil {
			continue
		}
		if sess.ChannelID != channelID {
			continue
		}
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return purged, fmt.Errorf("delete session %s: %w", iter.Val(), err)
		}
		purged = append(purged, sess.UserID)
	}
	if err := iter.Err(); err != nil {
		return purged, fmt.Errorf("scan sessions: %w", err)
	}
	return purged, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
