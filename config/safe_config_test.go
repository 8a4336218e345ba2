package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeConfig_GetReturnsCopy(t *testing.T) {
	sc := NewSafeConfig(validConfig())

	a := sc.Get()
	a.Listen = "mutated:0"

	b := sc.Get()
	assert.NotEqual(t, a.Listen, b.Listen)
}

func TestSafeConfig_UpdateRejectsInvalid(t *testing.T) {
	sc := NewSafeConfig(validConfig())

	bad := validConfig()
	bad.Listen = ""
	err := sc.Update(bad)
	require.Error(t, err)

	// Previous valid config is still live.
	assert.NotEmpty(t, sc.Get().Listen)
}

func TestSafeConfig_UpdateSwapsConfig(t *testing.T) {
	sc := NewSafeConfig(validConfig())

	next := validConfig()
	next.Listen = "0.0.0.0:9999"
	require.NoError(t, sc.Update(next))

	assert.Equal(t, "0.0.0.0:9999", sc.Get().Listen)
}

func TestSafeConfig_ConcurrentAccess(t *testing.T) {
	sc := NewSafeConfig(validConfig())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sc.Get()
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sc.Update(validConfig())
		}()
	}
	wg.Wait()
}

func TestNewSafeConfig_NilDefaultsToDefault(t *testing.T) {
	sc := NewSafeConfig(nil)
	assert.NotNil(t, sc.Get())
}
