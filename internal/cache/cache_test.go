package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/assetview/internal/model"
)

func TestResultCacheGetMiss(t *testing.T) {
	c := New()
	_, ok := c.Get(model.PageQuery{Page: 1}.Key())
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestResultCachePutGet(t *testing.T) {
	c := New()
	key := model.PageQuery{Page: 2, Query: "web"}.Key()
	records := []model.Asset{{ID: 1, Host: "web-1"}, {ID: 2, Host: "web-2"}}

	c.Put(key, model.CacheEntry{Records: records, TotalPages: 4})

	entry, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, records, entry.Records)
	assert.Equal(t, 4, entry.TotalPages)

	// Mutating the caller's slice does not reach the cache.
	records[0].Host = "changed"
	entry, _ = c.Get(key)
	assert.Equal(t, "web-1", entry.Records[0].Host)
}

func TestResultCacheKeysDistinct(t *testing.T) {
	c := New()
	c.Put(model.PageQuery{Page: 1}.Key(), model.CacheEntry{Records: []model.Asset{{ID: 1}}, TotalPages: 1})
	c.Put(model.PageQuery{Page: 1, Query: "abc"}.Key(), model.CacheEntry{Records: []model.Asset{{ID: 2}}, TotalPages: 1})
	c.Put(model.PageQuery{Page: 2, Query: "abc"}.Key(), model.CacheEntry{Records: []model.Asset{{ID: 3}}, TotalPages: 2})

	assert.Equal(t, 3, c.Len())

	e, _ := c.Get(model.PageQuery{Page: 1}.Key())
	assert.Equal(t, 1, e.Records[0].ID)
	e, _ = c.Get(model.PageQuery{Page: 1, Query: "abc"}.Key())
	assert.Equal(t, 2, e.Records[0].ID)
	e, _ = c.Get(model.PageQuery{Page: 2, Query: "abc"}.Key())
	assert.Equal(t, 3, e.Records[0].ID)
}

func TestResultCacheClampsTotalPages(t *testing.T) {
	c := New()
	c.Put("k", model.CacheEntry{TotalPages: 0})
	e, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 1, e.TotalPages)
	assert.NotNil(t, e.Records)
}

func TestResultCacheOverwrite(t *testing.T) {
	c := New()
	c.Put("k", model.CacheEntry{Records: []model.Asset{{ID: 1}}, TotalPages: 1})
	c.Put("k", model.CacheEntry{Records: []model.Asset{{ID: 9}}, TotalPages: 3})

	e, _ := c.Get("k")
	assert.Equal(t, 9, e.Records[0].ID)
	assert.Equal(t, 3, e.TotalPages)
	assert.Equal(t, 1, c.Len())
}

func TestResultCacheConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("page=%d", i%5)
			c.Put(key, model.CacheEntry{Records: []model.Asset{{ID: i % 5}}, TotalPages: 1})
			_, _ = c.Get(key)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, c.Len())
}
