package service

// SlotCount is the number of concurrently visible desktop chat windows.
const SlotCount = 2

// Windows is the desktop window-slot assignment state machine. A room
// occupies at most one slot at a time; the zero value is two empty slots.
// It holds no locks of its own: the session actor owns it.
type Windows struct {
	slots [SlotCount]string
}

// Assign maps a room-selection intent to a slot and returns the slot index
// plus the id of any room evicted to make space. Selecting a room that
// already occupies a slot keeps it there. When both slots are full the first
// slot is evicted, matching how users cycle conversations through the
// primary window.
func (w *Windows) Assign(roomID string) (slot int, evicted string) {
	for i, occupant := range w.slots {
		if occupant == roomID {
			return i, ""
		}
	}
	for i, occupant := range w.slots {
		if occupant == "" {
			w.slots[i] = roomID
			return i, ""
		}
	}
	evicted = w.slots[0]
	w.slots[0] = roomID
	return 0, evicted
}

// Close clears the slot and returns the room that vacated it, if any.
func (w *Windows) Close(slot int) (vacated string) {
	if slot < 0 || slot >= SlotCount {
		return ""
	}
	vacated = w.slots[slot]
	w.slots[slot] = ""
	return vacated
}

// Contains reports whether the room currently occupies any slot.
func (w *Windows) Contains(roomID string) bool {
	if roomID == "" {
		return false
	}
	for _, occupant := range w.slots {
		if occupant == roomID {
			return true
		}
	}
	return false
}

// Rooms returns the occupied slots in slot order.
func (w *Windows) Rooms() []string {
	out := make([]string, 0, SlotCount)
	for _, occupant := range w.slots {
		if occupant != "" {
			out = append(out, occupant)
		}
	}
	return out
}

// Slot returns the occupant of the given slot, or empty.
func (w *Windows) Slot(slot int) string {
	if slot < 0 || slot >= SlotCount {
		return ""
	}
	return w.slots[slot]
}
