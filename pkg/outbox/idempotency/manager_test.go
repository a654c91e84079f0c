package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	keys map[string]struct{}
}

func newMemoryStore() *memoryStore {
	return &memoryStore{keys: make(map[string]struct{})}
}

func (s *memoryStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = struct{}{}
	return true, nil
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.keys, key)
	}
	return nil
}

func TestCheckAndMarkProcessed(t *testing.T) {
	manager, err := NewManager(newMemoryStore(), time.Hour)
	require.NoError(t, err)
	eventID := uuid.New()

	already, err := manager.CheckAndMarkProcessed(context.Background(), "notifier", eventID)
	require.NoError(t, err)
	assert.False(t, already)

	already, err = manager.CheckAndMarkProcessed(context.Background(), "notifier", eventID)
	require.NoError(t, err)
	assert.True(t, already)

	// Another consumer sees the same event fresh.
	already, err = manager.CheckAndMarkProcessed(context.Background(), "analytics", eventID)
	require.NoError(t, err)
	assert.False(t, already)
}

func TestDeleteAllowsRetry(t *testing.T) {
	manager, err := NewManager(newMemoryStore(), time.Hour)
	require.NoError(t, err)
	eventID := uuid.New()

	_, err = manager.CheckAndMarkProcessed(context.Background(), "notifier", eventID)
	require.NoError(t, err)
	require.NoError(t, manager.Delete(context.Background(), "notifier", eventID))

	already, err := manager.CheckAndMarkProcessed(context.Background(), "notifier", eventID)
	require.NoError(t, err)
	assert.False(t, already)
}

func TestManagerInputValidation(t *testing.T) {
	_, err := NewManager(nil, time.Hour)
	require.Error(t, err)

	manager, err := NewManager(newMemoryStore(), time.Hour)
	require.NoError(t, err)

	_, err = manager.CheckAndMarkProcessed(context.Background(), "", uuid.New())
	require.Error(t, err)

	_, err = manager.CheckAndMarkProcessed(context.Background(), "notifier", uuid.Nil)
	require.Error(t, err)
}
