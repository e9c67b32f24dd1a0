package authkit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestTransactionMonitorRecord tests counting and duration tracking
func TestTransactionMonitorRecord(t *testing.T) {
	tm := newTransactionMonitor()

	tm.recordTransaction(10*time.Millisecond, true)
	tm.recordTransaction(30*time.Millisecond, true)
	tm.recordTransaction(20*time.Millisecond, false)

	metrics := tm.getMetrics()
	assert.Equal(t, int64(3), metrics.TotalTransactions)
	assert.Equal(t, int64(2), metrics.SuccessfulTransactions)
	assert.Equal(t, int64(1), metrics.FailedTransactions)
	assert.Equal(t, 20*time.Millisecond, metrics.AverageDuration)
	assert.Equal(t, 30*time.Millisecond, metrics.MaxDuration)
	assert.Equal(t, 10*time.Millisecond, metrics.MinDuration)
}

// TestTransactionMonitorEmpty tests metrics with no recorded transactions
func TestTransactionMonitorEmpty(t *testing.T) {
	tm := newTransactionMonitor()

	metrics := tm.getMetrics()
	assert.Equal(t, int64(0), metrics.TotalTransactions)
	assert.Equal(t, time.Duration(0), metrics.AverageDuration)
	assert.WithinDuration(t, time.Now(), metrics.LastReset, time.Second)
}

// TestTransactionMonitorReset tests that reset clears all counters
func TestTransactionMonitorReset(t *testing.T) {
	tm := newTransactionMonitor()
	tm.recordTransaction(10*time.Millisecond, true)
	tm.recordTransaction(20*time.Millisecond, false)

	tm.reset()

	metrics := tm.getMetrics()
	assert.Equal(t, int64(0), metrics.TotalTransactions)
	assert.Equal(t, int64(0), metrics.SuccessfulTransactions)
	assert.Equal(t, int64(0), metrics.FailedTransactions)
	assert.Equal(t, time.Duration(0), metrics.MaxDuration)
}

// TestIsTransactionHealthy tests the health thresholds
func TestIsTransactionHealthy(t *testing.T) {
	t.Run("Few transactions are healthy", func(t *testing.T) {
		s := New(nil, nil, Config{})
		s.txMonitor.recordTransaction(5*time.Second, false)
		assert.True(t, s.IsTransactionHealthy())
	})

	t.Run("High failure rate is unhealthy", func(t *testing.T) {
		s := New(nil, nil, Config{})
		for i := 0; i < 9; i++ {
			s.txMonitor.recordTransaction(time.Millisecond, true)
		}
		for i := 0; i < 3; i++ {
			s.txMonitor.recordTransaction(time.Millisecond, false)
		}
		assert.False(t, s.IsTransactionHealthy())
	})

	t.Run("Slow average is unhealthy", func(t *testing.T) {
		s := New(nil, nil, Config{})
		for i := 0; i < 12; i++ {
			s.txMonitor.recordTransaction(2*time.Second, true)
		}
		assert.False(t, s.IsTransactionHealthy())
	})

	t.Run("Fast successful load is healthy", func(t *testing.T) {
		s := New(nil, nil, Config{})
		for i := 0; i < 100; i++ {
			s.txMonitor.recordTransaction(5*time.Millisecond, true)
		}
		assert.True(t, s.IsTransactionHealthy())
	})
}

// TestGetTransactionMetricsThroughService tests the service accessors
func TestGetTransactionMetricsThroughService(t *testing.T) {
	s := New(nil, nil, Config{})
	s.txMonitor.recordTransaction(10*time.Millisecond, true)

	metrics := s.GetTransactionMetrics()
	assert.Equal(t, int64(1), metrics.TotalTransactions)

	s.ResetTransactionMetrics()
	metrics = s.GetTransactionMetrics()
	assert.Equal(t, int64(0), metrics.TotalTransactions)
}
