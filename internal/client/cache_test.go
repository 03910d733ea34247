package client

import (
	"testing"
	"time"
)

func newTestCache(ttl time.Duration) (*Cache, *time.Time) {
	now := time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC)
	c := NewCache(ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	c.Set("key1", "value1")
	got, ok := c.Get("key1")
	if !ok {
		t.Fatal("Get('key1') should return true")
	}
	if got != "value1" {
		t.Errorf("Get('key1') = %v, want 'value1'", got)
	}
}

func TestCache_Miss(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get('missing') should return false")
	}
}

func TestCache_Expiry(t *testing.T) {
	c, now := newTestCache(10 * time.Second)

	c.Set("key", "value")
	if _, ok := c.Get("key"); !ok {
		t.Fatal("key should be present immediately after Set")
	}

	*now = now.Add(11 * time.Second)
	if _, ok := c.Get("key"); ok {
		t.Error("key should be expired after TTL")
	}
}

func TestCache_Overwrite(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	c.Set("key", "v1")
	c.Set("key", "v2")

	got, ok := c.Get("key")
	if !ok {
		t.Fatal("Get should return true")
	}
	if got != "v2" {
		t.Errorf("Get = %v, want 'v2'", got)
	}
}

func TestCache_SetDropsExpired(t *testing.T) {
	c, now := newTestCache(10 * time.Second)

	c.Set("old1", 1)
	c.Set("old2", 2)
	*now = now.Add(time.Minute)
	c.Set("fresh", 3)

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCache_ZeroTTLDisables(t *testing.T) {
	c, _ := newTestCache(0)

	c.Set("key", "value")
	if _, ok := c.Get("key"); ok {
		t.Error("zero TTL cache should not store values")
	}
}
