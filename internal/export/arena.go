package export

// arena stores jobs in reusable slots. Lookups check the generation so a
// goroutine holding an ID from a previous occupant gets nil instead of
// someone else's job. Not safe for concurrent use; the coordinator's mutex
// guards it.
type arena struct {
	slots []arenaSlot
	free  []int
}

type arenaSlot struct {
	gen uint32
	job *Job // nil when free
}

func (a *arena) alloc(j Job) JobID {
	var idx int
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, arenaSlot{gen: 1})
		idx = len(a.slots) - 1
	}
	id := JobID{Slot: idx, Gen: a.slots[idx].gen}
	j.ID = id
	stored := j
	a.slots[idx].job = &stored
	return id
}

// get returns the live job for id, or nil if the slot was released or
// reused since the ID was issued.
func (a *arena) get(id JobID) *Job {
	if id.Slot < 0 || id.Slot >= len(a.slots) {
		return nil
	}
	s := &a.slots[id.Slot]
	if s.gen != id.Gen || s.job == nil {
		return nil
	}
	return s.job
}

// release frees the slot and invalidates every outstanding ID for it.
func (a *arena) release(id JobID) bool {
	if a.get(id) == nil {
		return false
	}
	s := &a.slots[id.Slot]
	s.job = nil
	s.gen++
	a.free = append(a.free, id.Slot)
	return true
}
