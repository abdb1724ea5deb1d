package matte

import (
	"errors"
	"sync"
	"testing"

	v2atypes "github.com/Meriku/green-screen-video-to-png-images/type"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyCacheSamplesOnce(t *testing.T) {
	c := NewKeyCache(nil)
	_, ok := c.Get()
	assert.False(t, ok)

	var (
		mu    sync.Mutex
		calls int
		wg    sync.WaitGroup
	)
	want := v2atypes.KeyColor{Y: 1, Cb: 2, Cr: 3}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.Resolve(func() (v2atypes.KeyColor, error) {
				mu.Lock()
				calls++
				mu.Unlock()
				return want, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)
}

func TestKeyCacheRetriesAfterFailure(t *testing.T) {
	c := NewKeyCache(nil)
	_, err := c.Resolve(func() (v2atypes.KeyColor, error) {
		return v2atypes.KeyColor{}, errors.New("boom")
	})
	require.Error(t, err)

	got, err := c.Resolve(func() (v2atypes.KeyColor, error) {
		return v2atypes.KeyColor{Y: 9}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint8(9), got.Y)
}

func TestKeyCachePreset(t *testing.T) {
	key := v2atypes.KeyColor{Y: 150, Cb: 128, Cr: 128}
	c := NewKeyCache(&key)
	got, err := c.Resolve(func() (v2atypes.KeyColor, error) {
		t.Fatal("preset cache must not sample")
		return v2atypes.KeyColor{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, key, got)
}
