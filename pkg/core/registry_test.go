package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("alpha", func() Task { return nil }))
	require.NoError(t, r.Register("beta", func() Task { return nil }))

	require.Error(t, r.Register("alpha", func() Task { return nil }))

	factory, err := r.Lookup("alpha")
	require.NoError(t, err)
	require.NotNil(t, factory)

	_, err = r.Lookup("gamma")
	require.Error(t, err)

	require.Equal(t, []string{"alpha", "beta"}, r.List())
}

func TestRegistryFreeze(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("alpha", func() Task { return nil }))
	r.Freeze()

	err := r.Register("beta", func() Task { return nil })
	require.Error(t, err)
	require.Contains(t, err.Error(), "frozen")

	factory, err := r.Lookup("alpha")
	require.NoError(t, err)
	require.NotNil(t, factory)
}

func TestRegistryConcurrentLookupAfterFreeze(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("alpha", func() Task { return nil }))
	r.Freeze()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Lookup("alpha")
			require.NoError(t, err)
			require.Equal(t, []string{"alpha"}, r.List())
		}()
	}
	wg.Wait()
}
