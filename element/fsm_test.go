package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQueue is a minimal Enqueuer that records every element it accepts, or
// rejects unconditionally once full is set.
type fakeQueue struct {
	elements []Element
	full     bool
}

func (q *fakeQueue) TryEnqueue(e Element) bool {
	if q.full {
		return false
	}
	q.elements = append(q.elements, e)
	return true
}

// fakePriority is a scriptable Priority for tests that need to control the
// squeeze-start decision without exercising paddle.PriorityController.
type fakePriority struct {
	choice    Element
	hasChoice bool
	memory    Element
	hasMemory bool
	updates   int
}

func (p *fakePriority) Update(PaddleView)       { p.updates++ }
func (p *fakePriority) Choose() (Element, bool) { return p.choice, p.hasChoice }
func (p *fakePriority) SetMemory(e Element)     { p.memory, p.hasMemory = e, true }
func (p *fakePriority) TakeMemory() (Element, bool) {
	if !p.hasMemory {
		return 0, false
	}
	p.hasMemory = false
	return p.memory, true
}
func (p *fakePriority) ClearHistory() { p.hasMemory = false }

func newTestFSM(t *testing.T, mode Mode, charSpace bool) (*FSM, *fakePriority) {
	t.Helper()
	cfg, err := NewConfig(mode, 60, 10, 16, charSpace)
	require.NoError(t, err)
	pr := &fakePriority{choice: Dit, hasChoice: true}
	return NewFSM(cfg, pr), pr
}

func TestFSM_IdleToDitHold(t *testing.T) {
	f, _ := newTestFSM(t, ModeA, false)
	q := &fakeQueue{}

	n := f.Tick(PaddleView{DitPressed: true}, 0, q)

	assert.Equal(t, 1, n)
	assert.Equal(t, StateDitHold, f.State().Kind)
	assert.Equal(t, []Element{Dit}, q.elements)
}

func TestFSM_IdleToSqueezeUsesPriorityChoice(t *testing.T) {
	f, pr := newTestFSM(t, ModeA, false)
	pr.choice, pr.hasChoice = Dah, true
	q := &fakeQueue{}

	n := f.Tick(PaddleView{DitPressed: true, DahPressed: true}, 0, q)

	assert.Equal(t, 1, n)
	assert.Equal(t, StateSqueeze, f.State().Kind)
	assert.Equal(t, Dah, f.State().Current)
	assert.Equal(t, []Element{Dah}, q.elements)
}

func TestFSM_DitHoldDoesNotRepeatBeforeUnitElapses(t *testing.T) {
	f, _ := newTestFSM(t, ModeA, false)
	q := &fakeQueue{}

	f.Tick(PaddleView{DitPressed: true}, 0, q)
	n := f.Tick(PaddleView{DitPressed: true}, 10, q) // periodic tick, well short of the 60ms unit

	assert.Equal(t, 0, n)
	assert.Equal(t, StateDitHold, f.State().Kind)
	assert.Equal(t, []Element{Dit}, q.elements)
}

func TestFSM_DitHoldRepeatsOnceUnitElapses(t *testing.T) {
	f, _ := newTestFSM(t, ModeA, false)
	q := &fakeQueue{}

	f.Tick(PaddleView{DitPressed: true}, 0, q)
	f.Tick(PaddleView{DitPressed: true}, 10, q) // too soon, no repeat
	n := f.Tick(PaddleView{DitPressed: true}, 60, q)

	assert.Equal(t, 1, n)
	assert.Equal(t, StateDitHold, f.State().Kind)
	assert.Equal(t, []Element{Dit, Dit}, q.elements)
}

func TestFSM_DitHoldReleaseGoesIdleWithoutCharSpace(t *testing.T) {
	f, _ := newTestFSM(t, ModeA, false)
	q := &fakeQueue{}

	f.Tick(PaddleView{DitPressed: true}, 0, q)
	n := f.Tick(PaddleView{}, 60, q)

	assert.Equal(t, 0, n)
	assert.Equal(t, StateIdle, f.State().Kind)
}

func TestFSM_DitHoldReleaseGoesCharSpacePendingWhenEnabled(t *testing.T) {
	f, _ := newTestFSM(t, ModeA, true)
	q := &fakeQueue{}

	f.Tick(PaddleView{DitPressed: true}, 0, q)
	f.Tick(PaddleView{}, 60, q)

	require.Equal(t, StateCharSpacePending, f.State().Kind)
	assert.Equal(t, uint32(60+180), f.State().Deadline)
}

func TestFSM_HoldToSqueezeDoesNotEmitOnTransition(t *testing.T) {
	f, _ := newTestFSM(t, ModeA, false)
	q := &fakeQueue{}

	f.Tick(PaddleView{DitPressed: true}, 0, q)
	n := f.Tick(PaddleView{DitPressed: true, DahPressed: true}, 10, q)

	assert.Equal(t, 0, n)
	require.Equal(t, StateSqueeze, f.State().Kind)
	assert.Equal(t, Dit, f.State().Current)
}

func TestFSM_SqueezeAlternates(t *testing.T) {
	f, _ := newTestFSM(t, ModeA, false)
	q := &fakeQueue{}

	f.Tick(PaddleView{DitPressed: true}, 0, q)
	f.Tick(PaddleView{DitPressed: true, DahPressed: true}, 10, q)
	n := f.Tick(PaddleView{DitPressed: true, DahPressed: true}, 70, q)

	assert.Equal(t, 1, n)
	assert.Equal(t, Dah, f.State().Current)
	assert.Equal(t, []Element{Dit, Dah}, q.elements)
}

func TestFSM_ModeAReleaseMidSqueezeNoMemory(t *testing.T) {
	f, _ := newTestFSM(t, ModeA, false)
	q := &fakeQueue{}

	f.Tick(PaddleView{DitPressed: true}, 0, q)
	f.Tick(PaddleView{DitPressed: true, DahPressed: true}, 10, q)
	f.Tick(PaddleView{DitPressed: true, DahPressed: true}, 70, q) // alternation: emits Dah
	f.Tick(PaddleView{}, 200, q)

	assert.Equal(t, StateIdle, f.State().Kind)
	assert.Equal(t, []Element{Dit, Dah}, q.elements)
}

func TestFSM_ModeBReleaseAddsOneMemoryElement(t *testing.T) {
	f, _ := newTestFSM(t, ModeB, false)
	q := &fakeQueue{}

	f.Tick(PaddleView{DitPressed: true}, 0, q)
	f.Tick(PaddleView{DitPressed: true, DahPressed: true}, 10, q)
	f.Tick(PaddleView{DitPressed: true, DahPressed: true}, 70, q) // alternation: emits Dah
	f.Tick(PaddleView{}, 200, q)

	require.Equal(t, StateMemoryPending, f.State().Kind)
	assert.Equal(t, Dit, f.State().Pending)

	n := f.Tick(PaddleView{}, 210, q)
	assert.Equal(t, 1, n)
	assert.Equal(t, StateIdle, f.State().Kind)
	assert.Equal(t, []Element{Dit, Dah, Dit}, q.elements)
}

func TestFSM_MemoryPendingRetriesOnQueueFull(t *testing.T) {
	f, _ := newTestFSM(t, ModeB, false)
	q := &fakeQueue{}
	f.Tick(PaddleView{DitPressed: true}, 0, q)
	f.Tick(PaddleView{DitPressed: true, DahPressed: true}, 10, q)
	f.Tick(PaddleView{DitPressed: true, DahPressed: true}, 70, q)
	f.Tick(PaddleView{}, 200, q)

	q.full = true
	n := f.Tick(PaddleView{}, 210, q)
	assert.Equal(t, 0, n)
	assert.Equal(t, StateMemoryPending, f.State().Kind, "must retry, not lose the memory element")

	q.full = false
	n = f.Tick(PaddleView{}, 220, q)
	assert.Equal(t, 1, n)
	assert.Equal(t, StateIdle, f.State().Kind)
}

func TestFSM_CharSpacePendingDefersEarlyPress(t *testing.T) {
	f, _ := newTestFSM(t, ModeA, true)
	q := &fakeQueue{}

	f.Tick(PaddleView{DitPressed: true}, 0, q)
	f.Tick(PaddleView{}, 60, q) // -> CharSpacePending{deadline: 240}

	// A press before the deadline must not preempt the pending gap.
	n := f.Tick(PaddleView{DitPressed: true}, 100, q)
	assert.Equal(t, 0, n)
	assert.Equal(t, StateCharSpacePending, f.State().Kind)

	// Once the deadline passes, the still-held press is honoured as a
	// fresh Idle-style transition.
	n = f.Tick(PaddleView{DitPressed: true}, 240, q)
	assert.Equal(t, 1, n)
	assert.Equal(t, StateDitHold, f.State().Kind)
	assert.Equal(t, []Element{Dit, Dit}, q.elements)
}

func TestFSM_CharSpacePendingEmitsAtDeadlineWithNoInput(t *testing.T) {
	f, _ := newTestFSM(t, ModeA, true)
	q := &fakeQueue{}

	f.Tick(PaddleView{DitPressed: true}, 0, q)
	f.Tick(PaddleView{}, 60, q)

	n := f.Tick(PaddleView{}, 240, q)
	assert.Equal(t, 1, n)
	assert.Equal(t, StateIdle, f.State().Kind)
	assert.Equal(t, []Element{Dit, CharSpace}, q.elements)
}

func TestFSM_SetConfigClearsHistoryWhenLeavingSuperKeyer(t *testing.T) {
	f, pr := newTestFSM(t, SuperKeyer, false)
	pr.hasMemory = true

	cfg, err := NewConfig(ModeA, 60, 10, 16, false)
	require.NoError(t, err)
	f.SetConfig(cfg)

	assert.False(t, pr.hasMemory)
}

func TestFSM_ResetReturnsToIdle(t *testing.T) {
	f, pr := newTestFSM(t, ModeA, false)
	q := &fakeQueue{}
	f.Tick(PaddleView{DitPressed: true}, 0, q)
	pr.hasMemory = true

	f.Reset()

	assert.Equal(t, StateIdle, f.State().Kind)
	assert.False(t, pr.hasMemory)
}
