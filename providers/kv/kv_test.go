package kv_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/sqlcopilot/providers/kv"
	"github.com/leofalp/sqlcopilot/providers/kv/inmemory"
)

type record struct {
	Provider string `json:"provider"`
	Tokens   int    `json:"maxTokens"`
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()

	var missing record
	assert.ErrorIs(t, kv.GetJSON(ctx, store, "apiConfig", &missing), kv.ErrNotFound)

	require.NoError(t, kv.SetJSON(ctx, store, "apiConfig", record{Provider: "openai", Tokens: 500}))

	raw, err := store.Get(ctx, "apiConfig")
	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"openai","maxTokens":500}`, string(raw))

	var loaded record
	require.NoError(t, kv.GetJSON(ctx, store, "apiConfig", &loaded))
	assert.Equal(t, record{Provider: "openai", Tokens: 500}, loaded)
}

func TestGetJSONCorrupt(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	require.NoError(t, store.Set(ctx, "apiConfig", []byte("{not json")))

	var loaded record
	err := kv.GetJSON(ctx, store, "apiConfig", &loaded)
	require.Error(t, err)
	assert.NotErrorIs(t, err, kv.ErrNotFound)
}
