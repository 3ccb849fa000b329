package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"alyabot/internal/domain"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps conversation snapshots in Redis so an in-progress quiz
// survives a bot restart. Each session is one JSON string key with a TTL
// that is refreshed on every save.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewSessionStore creates a Redis-backed session store
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
		prefix: "alyabot:session:",
	}
}

func (s *SessionStore) Get(ctx context.Context, sessionID int64) (*domain.Conversation, bool, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get session: %w", err)
	}

	var conv domain.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		// An unreadable snapshot is dropped rather than wedging the user
		_ = s.client.Del(ctx, s.key(sessionID)).Err()
		return nil, false, nil
	}
	return &conv, true, nil
}

func (s *SessionStore) Save(ctx context.Context, conv *domain.Conversation) error {
	stored := conv.Clone()
	stored.UpdatedAt = time.Now()

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key(conv.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID int64) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(sessionID int64) string {
	return s.prefix + strconv.FormatInt(sessionID, 10)
}
