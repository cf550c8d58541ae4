package profile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lucagreco-dev/prenota_bot/internal/model"
)

// fakeKV è una cache chiave-valore in memoria.
type fakeKV struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
}

func newFakeKV() *fakeKV {
	return &fakeKV{entries: make(map[string]string)}
}

func (kv *fakeKV) Get(_ context.Context, key string) (string, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.getErr != nil {
		return "", kv.getErr
	}
	v, ok := kv.entries[key]
	if !ok {
		return "", errCacheMiss
	}
	return v, nil
}

func (kv *fakeKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.entries[key] = value
	return nil
}

func (kv *fakeKV) Del(_ context.Context, key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.entries, key)
	return nil
}

// countingStore conta le letture verso lo store sottostante.
type countingStore struct {
	mu    sync.Mutex
	prof  *model.BusinessProfile
	calls int
}

func (s *countingStore) LoadProfile(_ context.Context, businessID string) (*model.BusinessProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.prof != nil && s.prof.ID == businessID {
		return s.prof, nil
	}
	return nil, nil
}

func cacheProfile() *model.BusinessProfile {
	return &model.BusinessProfile{
		ID:                "studio_demo",
		Name:              "Studio Demo",
		Timezone:          "Europe/Rome",
		HoursStart:        "09:00",
		HoursEnd:          "18:00",
		WorkingDays:       []int{1, 2, 3, 4, 5},
		DefaultCalendarID: "primary",
	}
}

func newTestCache(inner Store, kv keyValueClient) *CachedStore {
	return &CachedStore{
		inner:  inner,
		kv:     kv,
		ttl:    DefaultCacheTTL,
		logger: zap.NewNop(),
	}
}

func TestCachedLoadHitsInnerOnce(t *testing.T) {
	inner := &countingStore{prof: cacheProfile()}
	cache := newTestCache(inner, newFakeKV())

	first, err := cache.LoadProfile(context.Background(), "studio_demo")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := cache.LoadProfile(context.Background(), "studio_demo")
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, inner.calls)
}

func TestInvalidateForcesReload(t *testing.T) {
	inner := &countingStore{prof: cacheProfile()}
	cache := newTestCache(inner, newFakeKV())

	_, err := cache.LoadProfile(context.Background(), "studio_demo")
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(context.Background(), "studio_demo"))

	_, err = cache.LoadProfile(context.Background(), "studio_demo")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCorruptEntryIsDroppedAndReloaded(t *testing.T) {
	inner := &countingStore{prof: cacheProfile()}
	kv := newFakeKV()
	kv.entries[cacheKey("studio_demo")] = "{non è json"
	cache := newTestCache(inner, kv)

	prof, err := cache.LoadProfile(context.Background(), "studio_demo")

	require.NoError(t, err)
	require.NotNil(t, prof)
	assert.Equal(t, 1, inner.calls)
	// La voce corrotta è stata sostituita da una valida.
	assert.NotEqual(t, "{non è json", kv.entries[cacheKey("studio_demo")])
}

func TestCacheErrorDegradesToDirectRead(t *testing.T) {
	inner := &countingStore{prof: cacheProfile()}
	kv := newFakeKV()
	kv.getErr = assert.AnError
	cache := newTestCache(inner, kv)

	prof, err := cache.LoadProfile(context.Background(), "studio_demo")

	require.NoError(t, err)
	require.NotNil(t, prof)
	assert.Equal(t, 1, inner.calls)
}

func TestUnknownBusinessIsNilNotError(t *testing.T) {
	inner := &countingStore{prof: cacheProfile()}
	cache := newTestCache(inner, newFakeKV())

	prof, err := cache.LoadProfile(context.Background(), "altro_studio")

	require.NoError(t, err)
	assert.Nil(t, prof)
}
