package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewWithClock(ttl, clock.Now), clock
}

func TestStoreSetGet(t *testing.T) {
	store, _ := newTestStore(5 * time.Minute)

	_, ok := store.Get("UAAA/metar_taf")
	assert.False(t, ok)

	store.Set("UAAA/metar_taf", "UAAA 010600Z 18005KT 9999 FEW020 22/14 Q1015")

	got, ok := store.Get("UAAA/metar_taf")
	assert.True(t, ok)
	assert.Equal(t, "UAAA 010600Z 18005KT 9999 FEW020 22/14 Q1015", got)
}

func TestStoreExpiry(t *testing.T) {
	store, clock := newTestStore(5 * time.Minute)

	store.Set("UACC/metar_taf", "first")

	clock.Advance(4*time.Minute + 59*time.Second)
	got, ok := store.Get("UACC/metar_taf")
	assert.True(t, ok)
	assert.Equal(t, "first", got)

	clock.Advance(1 * time.Second)
	_, ok = store.Get("UACC/metar_taf")
	assert.False(t, ok)

	// The expired entry was purged; a new set starts a fresh TTL.
	assert.Equal(t, 0, store.Len())
	store.Set("UACC/metar_taf", "second")
	got, ok = store.Get("UACC/metar_taf")
	assert.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestStoreSetRestartsTTL(t *testing.T) {
	store, clock := newTestStore(10 * time.Second)

	store.Set("k", "v1")
	clock.Advance(8 * time.Second)
	store.Set("k", "v2")
	clock.Advance(8 * time.Second)

	got, ok := store.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v2", got)
}

func TestStoreKeysAreIndependent(t *testing.T) {
	store, clock := newTestStore(1 * time.Minute)

	store.Set("UAAA/metar_taf", "wx")
	clock.Advance(30 * time.Second)
	store.Set("UAAA/notam", "notams")
	clock.Advance(40 * time.Second)

	_, ok := store.Get("UAAA/metar_taf")
	assert.False(t, ok)

	got, ok := store.Get("UAAA/notam")
	assert.True(t, ok)
	assert.Equal(t, "notams", got)
}

func TestStoreDefaultTTL(t *testing.T) {
	store := New(0)
	assert.Equal(t, DefaultTTL, store.ttl)
}
