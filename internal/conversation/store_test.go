package conversation_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawfect-mate/backend/internal/conversation"
)

func TestStoreLifecycle(t *testing.T) {
	store := conversation.NewStore()

	c := store.Create("Best dog for kids?", "Golden Retriever")
	_, err := uuid.Parse(c.ID)
	require.NoError(t, err)
	assert.Nil(t, c.Feedback)
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Best dog for kids?", got.Question)
	assert.Equal(t, "Golden Retriever", got.Answer)

	require.NoError(t, store.SetFeedback(c.ID, 1))
	got, err = store.Get(c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Feedback)
	assert.Equal(t, 1, *got.Feedback)

	require.NoError(t, store.SetFeedback(c.ID, -1))
	got, _ = store.Get(c.ID)
	assert.Equal(t, -1, *got.Feedback)
}

func TestStoreUnknownID(t *testing.T) {
	store := conversation.NewStore()

	_, err := store.Get("missing")
	assert.True(t, errors.Is(err, conversation.ErrNotFound))
	assert.True(t, errors.Is(store.SetFeedback("missing", 1), conversation.ErrNotFound))
}

func TestStoreSnapshotsAreIndependent(t *testing.T) {
	store := conversation.NewStore()
	c := store.Create("q", "a")
	c.Answer = "mutated"

	got, err := store.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Answer)
}

func TestStoreIssuesUniqueIDs(t *testing.T) {
	store := conversation.NewStore()

	var mu sync.Mutex
	ids := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := store.Create("q", "a")
			mu.Lock()
			ids[c.ID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, 50)
	assert.Equal(t, 50, store.Len())
}
