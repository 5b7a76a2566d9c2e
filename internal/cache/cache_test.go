package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stayhive/stayhive/internal/clock"
)

func TestGetBeforeAndAfterExpiry(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	c := NewTTLCache[string, int](5*time.Minute, clk)

	c.Set("a", 1)

	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, got)

	clk.Advance(5 * time.Minute)
	_, ok = c.Get("a")
	assert.True(t, ok, "entry is still live at exactly ttl")

	clk.Advance(time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
	// The expired entry is evicted on read.
	assert.Equal(t, 0, c.Len())
}

func TestSetRefreshesExpiry(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	c := NewTTLCache[string, int](time.Minute, clk)

	c.Set("a", 1)
	clk.Advance(45 * time.Second)
	c.Set("a", 2)
	clk.Advance(45 * time.Second)

	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestGetMissingKey(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	c := NewTTLCache[string, []string](time.Minute, clk)

	got, ok := c.Get("nope")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestDeleteAndFlush(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	c := NewTTLCache[string, int](time.Minute, clk)

	c.Set("a", 1)
	c.Set("b", 2)
	assert.Equal(t, 2, c.Len())

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Flush()
	assert.Equal(t, 0, c.Len())
	_, ok = c.Get("b")
	assert.False(t, ok)
}
