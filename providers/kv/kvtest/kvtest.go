// Package kvtest is a conformance suite every kv.Store backend runs in its
// own tests.
package kvtest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/sqlcopilot/providers/kv"
)

// Run exercises the kv.Store contract against a fresh store from newStore.
// Every value it writes is valid JSON so document-oriented backends qualify.
func Run(t *testing.T, newStore func(t *testing.T) kv.Store) {
	t.Helper()

	t.Run("missing key", func(t *testing.T) {
		_, err := newStore(t).Get(context.Background(), "absent")
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("set get overwrite", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		require.NoError(t, store.Set(ctx, "apiConfig", []byte(`{"provider":"custom"}`)))
		value, err := store.Get(ctx, "apiConfig")
		require.NoError(t, err)
		assert.Equal(t, `{"provider":"custom"}`, string(value))

		require.NoError(t, store.Set(ctx, "apiConfig", []byte(`{"provider":"claude"}`)))
		value, err = store.Get(ctx, "apiConfig")
		require.NoError(t, err)
		assert.Equal(t, `{"provider":"claude"}`, string(value))
	})

	t.Run("keys are independent", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		require.NoError(t, store.Set(ctx, "a", []byte("1")))
		require.NoError(t, store.Set(ctx, "b", []byte("2")))
		a, err := store.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "1", string(a))
	})

	t.Run("delete", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		require.NoError(t, store.Set(ctx, "translationMessages", []byte("[]")))
		require.NoError(t, store.Delete(ctx, "translationMessages"))
		_, err := store.Get(ctx, "translationMessages")
		assert.ErrorIs(t, err, kv.ErrNotFound)

		assert.NoError(t, store.Delete(ctx, "never-written"))
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		input := []byte(`"abc"`)
		require.NoError(t, store.Set(ctx, "k", input))
		input[1] = 'x'

		value, err := store.Get(ctx, "k")
		require.NoError(t, err)
		value[2] = 'y'

		again, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, `"abc"`, string(again))
	})

	t.Run("concurrent writers", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.Set(ctx, fmt.Sprintf("key-%d", i), []byte{byte('0' + i)}))
			}()
		}
		wg.Wait()

		for i := range 8 {
			value, err := store.Get(ctx, fmt.Sprintf("key-%d", i))
			require.NoError(t, err)
			assert.Equal(t, []byte{byte('0' + i)}, value)
		}
	})
}
