package redisstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/sqlcopilot/providers/kv"
	"github.com/leofalp/sqlcopilot/providers/kv/kvtest"
)

// fakeClient answers with canned go-redis results instead of a server.
type fakeClient struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newFakeClient() *fakeClient {
	return &fakeClient{values: make(map[string]string)}
}

func (f *fakeClient) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	value, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeClient) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.values[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, f.err)
}

func TestConformance(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.Store { return New(newFakeClient(), "") })
}

func TestKeysArePrefixed(t *testing.T) {
	client := newFakeClient()
	store := New(client, "team-a:")

	require.NoError(t, store.Set(context.Background(), "apiConfig", []byte(`{}`)))
	assert.Contains(t, client.values, "team-a:apiConfig")
	assert.NotContains(t, client.values, "apiConfig")
}

func TestDefaultPrefix(t *testing.T) {
	client := newFakeClient()
	require.NoError(t, New(client, "").Set(context.Background(), "k", []byte(`1`)))
	assert.Contains(t, client.values, DefaultPrefix+"k")
}

func TestClientErrorsAreWrapped(t *testing.T) {
	client := newFakeClient()
	client.err = errors.New("connection refused")
	store := New(client, "")

	_, err := store.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, kv.ErrNotFound)
	assert.Contains(t, err.Error(), "connection refused")

	assert.Error(t, store.Set(context.Background(), "k", []byte(`1`)))
	assert.Error(t, store.Delete(context.Background(), "k"))
}
