package paddle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kb9qrp/ironkeyer/element"
)

func TestState_OnEdge_PressRecordsFirstPress(t *testing.T) {
	s := NewState(10)
	s.OnEdge(element.SideDit, true, 100)

	snap := s.Snapshot()
	assert.True(t, snap.DitPressed)
	assert.True(t, snap.DitFirstPressValid)
	assert.Equal(t, uint32(100), snap.DitFirstPressMS)
}

func TestState_OnEdge_ReleaseClearsFirstPress(t *testing.T) {
	s := NewState(10)
	s.OnEdge(element.SideDit, true, 100)
	s.OnEdge(element.SideDit, false, 150)

	snap := s.Snapshot()
	assert.False(t, snap.DitPressed)
	assert.False(t, snap.DitFirstPressValid)
}

func TestState_OnEdge_DropsEdgeWithinDebounceWindow(t *testing.T) {
	s := NewState(10)
	s.OnEdge(element.SideDit, true, 0)
	s.OnEdge(element.SideDit, false, 3)
	s.OnEdge(element.SideDit, true, 6)

	// All edges after t=0 land inside the 10ms debounce window and are
	// dropped: a single continuous press from t=0 (spec.md §8 scenario 6).
	snap := s.Snapshot()
	assert.True(t, snap.DitPressed)
	assert.Equal(t, uint32(0), snap.DitFirstPressMS)
}

func TestState_OnEdge_AcceptsEdgeAfterDebounceWindow(t *testing.T) {
	s := NewState(10)
	s.OnEdge(element.SideDit, true, 0)
	s.OnEdge(element.SideDit, false, 10)

	assert.False(t, s.Snapshot().DitPressed)
}

func TestState_SidesAreIndependent(t *testing.T) {
	s := NewState(10)
	s.OnEdge(element.SideDit, true, 0)
	s.OnEdge(element.SideDah, true, 5)

	snap := s.Snapshot()
	assert.True(t, snap.DitPressed)
	assert.True(t, snap.DahPressed)
	assert.True(t, snap.BothPressed())
}

func TestState_SetDebounce(t *testing.T) {
	s := NewState(10)
	s.SetDebounce(50)
	s.OnEdge(element.SideDit, true, 0)
	s.OnEdge(element.SideDit, false, 20)

	// New 50ms window applies to edges after the change: 20ms since the
	// last accepted edge is still inside it.
	assert.True(t, s.Snapshot().DitPressed)
}
