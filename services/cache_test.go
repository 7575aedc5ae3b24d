package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResponseCacheExpires(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewResponseCache(5 * time.Second)
	c.now = func() time.Time { return now }

	c.Set("k", []byte(`{"a":1}`), "application/json")

	body, contentType, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(body))
	assert.Equal(t, "application/json", contentType)

	now = now.Add(6 * time.Second)
	_, _, ok = c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestResponseCacheSweepsOnSet(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewResponseCache(time.Second)
	c.now = func() time.Time { return now }

	c.Set("a", []byte("1"), "")
	now = now.Add(2 * time.Second)
	c.Set("b", []byte("2"), "")

	assert.Equal(t, 1, c.Len())
}

func TestResponseCacheDisabled(t *testing.T) {
	c := NewResponseCache(0)
	c.Set("k", []byte("v"), "")
	_, _, ok := c.Get("k")
	assert.False(t, ok)

	var nilCache *ResponseCache
	_, _, ok = nilCache.Get("k")
	assert.False(t, ok)
}
