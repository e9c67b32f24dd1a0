package authkit

import (
	"testing"

	"github.com/fernandezvara/dbkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewHealthService tests that the extension wraps the service
func TestNewHealthService(t *testing.T) {
	s := New(nil, allowAll, Config{})
	hs := NewHealthService(s)

	require.NotNil(t, hs)
	assert.Same(t, s, hs.Service)
}

// TestGetPoolStatsWithoutPool tests that a handle without pool
// introspection yields zero-value statistics instead of failing
func TestGetPoolStatsWithoutPool(t *testing.T) {
	hs := NewHealthService(New(nil, allowAll, Config{}))

	assert.Equal(t, dbkit.PoolStats{}, hs.GetPoolStats())
}
