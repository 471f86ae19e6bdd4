package strategy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketsim/internal/common"
	"marketsim/internal/rng"
	"marketsim/internal/strategy"
)

func TestBlock_SchedulesSingleImmediateChild(t *testing.T) {
	r := rng.New(1)
	children := strategy.Block{}.Schedule(5.0, 100, common.Buy, "parent-1", r)
	require.Len(t, children, 1)
	assert.Equal(t, 5.0, children[0].ExecuteAt)
	assert.Equal(t, uint64(100), children[0].Size)
	assert.Equal(t, common.Buy, children[0].Side)
	assert.Equal(t, "parent-1", children[0].ParentID)
}

func TestTWAP_SplitsIntoEqualJitteredChildren(t *testing.T) {
	r := rng.New(7)
	twap := strategy.TWAP{Intervals: 4, Duration: 40}
	children := twap.Schedule(10.0, 100, common.Sell, "parent-2", r)

	require.Len(t, children, 4)
	bucket := 40.0 / 4
	for i, c := range children {
		assert.Equal(t, uint64(25), c.Size) // floor(100/4), no remainder here
		assert.Equal(t, common.Sell, c.Side)
		assert.Equal(t, "parent-2", c.ParentID)

		bucketStart := 10.0 + float64(i)*bucket
		assert.GreaterOrEqual(t, c.ExecuteAt, bucketStart)
		assert.Less(t, c.ExecuteAt, bucketStart+bucket)
	}
	// execution times must be strictly increasing: child i's window never
	// overlaps child i+1's window.
	for i := 1; i < len(children); i++ {
		assert.Greater(t, children[i].ExecuteAt, children[i-1].ExecuteAt)
	}
}

func TestTWAP_RemainderIsDropped(t *testing.T) {
	r := rng.New(3)
	twap := strategy.TWAP{Intervals: 3, Duration: 9}
	children := twap.Schedule(0, 10, common.Buy, "parent-3", r)

	require.Len(t, children, 3)
	var total uint64
	for _, c := range children {
		assert.Equal(t, uint64(3), c.Size) // floor(10/3) = 3, remainder 1 dropped
		total += c.Size
	}
	assert.Equal(t, uint64(9), total)
}

func TestTWAP_ZeroIntervals_NoChildren(t *testing.T) {
	r := rng.New(1)
	twap := strategy.TWAP{Intervals: 0, Duration: 10}
	assert.Nil(t, twap.Schedule(0, 100, common.Buy, "parent-4", r))
}
