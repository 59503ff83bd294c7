package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"chatui/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	calls atomic.Int32
	gate  chan struct{}
	errs  []error
	mu    sync.Mutex
}

func (f *fakeFetcher) Categorized(ctx context.Context) (*models.Catalog, error) {
	n := f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if int(n) <= len(f.errs) && f.errs[n-1] != nil {
		return nil, f.errs[n-1]
	}
	return &models.Catalog{LLM: []models.Descriptor{{ModelName: "m1"}}}, nil
}

func TestCacheFetchesOnce(t *testing.T) {
	f := &fakeFetcher{gate: make(chan struct{})}
	c := NewCache(f)

	var wg sync.WaitGroup
	results := make([]*models.Catalog, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cat, err := c.Get(context.Background())
			assert.NoError(t, err)
			results[i] = cat
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(f.gate)
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
	for _, cat := range results {
		require.NotNil(t, cat)
		assert.Equal(t, "m1", cat.LLM[0].ModelName)
	}

	// Served from cache from now on
	_, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	f := &fakeFetcher{errs: []error{errors.New("db down")}}
	c := NewCache(f)

	_, err := c.Get(context.Background())
	require.Error(t, err)
	assert.Nil(t, c.Peek())
	assert.Equal(t, "db down", c.Status().Error)

	cat, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cat)
	assert.Equal(t, int32(2), f.calls.Load())

	st := c.Status()
	assert.True(t, st.Loaded)
	assert.Equal(t, 1, st.Models)
	assert.Empty(t, st.Error)
}

func TestCacheInvalidate(t *testing.T) {
	f := &fakeFetcher{}
	c := NewCache(f)

	_, err := c.Get(context.Background())
	require.NoError(t, err)
	c.Invalidate()
	assert.Nil(t, c.Peek())

	_, err = c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())
}
