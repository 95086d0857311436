package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps the session slot in Redis so it survives portal restarts.
// Writes and clears go through MULTI so the identity/credential pair stays atomic.
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage wraps an existing Redis client.
func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (s *RedisStorage) SaveSession(ctx context.Context, identity Identity, token string) error {
	encoded, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, KeyIdentity, string(encoded), 0)
	pipe.Set(ctx, KeyCredential, token, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (s *RedisStorage) LoadSession(ctx context.Context) (Identity, string, bool, error) {
	values, err := s.client.MGet(ctx, KeyIdentity, KeyCredential).Result()
	if err != nil {
		return Identity{}, "", false, fmt.Errorf("read session: %w", err)
	}
	encoded, okIdentity := values[0].(string)
	token, okToken := values[1].(string)
	if !okIdentity || !okToken {
		// Half a session is no session; drop whichever key survived.
		if okIdentity || okToken {
			_ = s.ClearSession(ctx)
		}
		return Identity{}, "", false, nil
	}
	var identity Identity
	if err := json.Unmarshal([]byte(encoded), &identity); err != nil {
		return Identity{}, "", false, fmt.Errorf("decode identity: %w", err)
	}
	return identity, token, true, nil
}

func (s *RedisStorage) ClearSession(ctx context.Context) error {
	if err := s.client.Del(ctx, KeyIdentity, KeyCredential).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
