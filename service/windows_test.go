package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowsFillThenEvict(t *testing.T) {
	var w Windows

	slot, evicted := w.Assign("r1")
	assert.Equal(t, 0, slot)
	assert.Empty(t, evicted)

	slot, evicted = w.Assign("r2")
	assert.Equal(t, 1, slot)
	assert.Empty(t, evicted)

	// Both slots full: the first slot is evicted.
	slot, evicted = w.Assign("r3")
	assert.Equal(t, 0, slot)
	assert.Equal(t, "r1", evicted)
	assert.Equal(t, "r3", w.Slot(0))
	assert.Equal(t, "r2", w.Slot(1))
}

func TestWindowsReselectIsNoOp(t *testing.T) {
	var w Windows
	w.Assign("r1")
	w.Assign("r2")

	slot, evicted := w.Assign("r2")
	assert.Equal(t, 1, slot)
	assert.Empty(t, evicted)
	assert.Equal(t, "r1", w.Slot(0))

	slot, evicted = w.Assign("r1")
	assert.Equal(t, 0, slot)
	assert.Empty(t, evicted)
}

func TestWindowsRoomNeverInBothSlots(t *testing.T) {
	var w Windows
	w.Assign("r1")
	w.Assign("r1")
	w.Assign("r1")

	assert.Equal(t, []string{"r1"}, w.Rooms())
	assert.Equal(t, "", w.Slot(1))
}

func TestWindowsClose(t *testing.T) {
	var w Windows
	w.Assign("r1")
	w.Assign("r2")

	assert.Equal(t, "r1", w.Close(0))
	assert.False(t, w.Contains("r1"))
	assert.True(t, w.Contains("r2"))

	// Closing an empty or out-of-range slot is harmless.
	assert.Equal(t, "", w.Close(0))
	assert.Equal(t, "", w.Close(7))

	// The freed slot is reused first.
	slot, _ := w.Assign("r3")
	assert.Equal(t, 0, slot)
}
