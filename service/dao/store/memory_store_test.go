package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type entry struct {
	ID    string
	Value int
}

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[string, entry](func(e *entry) string { return e.ID })

	assert.NoError(t, store.Save(ctx, &entry{ID: "a", Value: 1}))
	assert.NoError(t, store.Save(ctx, &entry{ID: "b", Value: 2}))

	loaded, err := store.Load(ctx, "a")
	assert.NoError(t, err)
	assert.Equal(t, 1, loaded.Value)

	missing, err := store.Load(ctx, "zz")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	all, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(all))

	assert.NoError(t, store.Delete(ctx, "a"))
	assert.Equal(t, 1, store.Size())
}

// Take must hand the record to exactly one of N concurrent callers.
func TestMemoryStore_TakeOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[string, entry](func(e *entry) string { return e.ID })
	_ = store.Save(ctx, &entry{ID: "card-1", Value: 42})

	var won int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			taken, err := store.Take(ctx, "card-1")
			assert.NoError(t, err)
			if taken != nil {
				atomic.AddInt32(&won, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), won)
	assert.Equal(t, 0, store.Size())
}
