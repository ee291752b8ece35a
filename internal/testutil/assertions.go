package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertOverlap checks that the sleeper invocations a and b ran concurrently.
func AssertOverlap(t *testing.T, m *SleeperModule, a, b string) {
	t.Helper()
	ra, okA := m.Record(a)
	rb, okB := m.Record(b)
	require.True(t, okA && okB, "expected both %q and %q to have run", a, b)
	require.True(t, ra.Overlaps(rb), "expected %q and %q to overlap", a, b)
}

// AssertNoOverlap checks that the sleeper invocations a and b did not run
// concurrently.
func AssertNoOverlap(t *testing.T, m *SleeperModule, a, b string) {
	t.Helper()
	ra, okA := m.Record(a)
	rb, okB := m.Record(b)
	require.True(t, okA && okB, "expected both %q and %q to have run", a, b)
	require.False(t, ra.Overlaps(rb), "expected %q and %q not to overlap", a, b)
}
