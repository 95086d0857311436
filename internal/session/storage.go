package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Durable slot keys. The identity is serialized JSON under KeyIdentity; the bearer
// token is stored verbatim under KeyCredential.
const (
	KeyIdentity   = "user"
	KeyCredential = "jwtToken"
)

// Storage persists the single session slot across portal restarts. Implementations
// must keep the identity/credential pair atomic: both written by SaveSession, both
// removed by ClearSession, and a slot with only one of the two present is treated
// as absent.
type Storage interface {
	SaveSession(ctx context.Context, identity Identity, token string) error
	// LoadSession reports ok=false when no complete session is stored.
	LoadSession(ctx context.Context) (Identity, string, bool, error)
	ClearSession(ctx context.Context) error
}

type memoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage constructs an in-process storage slot. Sessions do not survive a
// restart; it backs development setups without Redis, and tests.
func NewMemoryStorage() Storage {
	return &memoryStorage{values: make(map[string]string)}
}

func (s *memoryStorage) SaveSession(_ context.Context, identity Identity, token string) error {
	encoded, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[KeyIdentity] = string(encoded)
	s.values[KeyCredential] = token
	return nil
}

func (s *memoryStorage) LoadSession(_ context.Context) (Identity, string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	encoded, okIdentity := s.values[KeyIdentity]
	token, okToken := s.values[KeyCredential]
	if !okIdentity || !okToken {
		return Identity{}, "", false, nil
	}
	var identity Identity
	if err := json.Unmarshal([]byte(encoded), &identity); err != nil {
		return Identity{}, "", false, fmt.Errorf("decode identity: %w", err)
	}
	return identity, token, true, nil
}

func (s *memoryStorage) ClearSession(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, KeyIdentity)
	delete(s.values, KeyCredential)
	return nil
}
