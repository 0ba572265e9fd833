package combat

// Roster is the ordered list of one side's units. Units scheduled for removal
// stay in place until Cleanup so that a tick sees a stable sequence.
type Roster struct {
	units   []*Unit
	pending map[int64]struct{}
}

func NewRoster(units ...*Unit) *Roster {
	r := &Roster{pending: make(map[int64]struct{})}
	r.units = append(r.units, units...)
	return r
}

// Add appends u at the end of the roster.
func (r *Roster) Add(u *Unit) {
	r.units = append(r.units, u)
}

// Units returns the live backing slice in roster order. Callers must not
// retain it across ticks.
func (r *Roster) Units() []*Unit { return r.units }

func (r *Roster) Len() int { return len(r.units) }

// Find returns the unit with the given id.
func (r *Roster) Find(id int64) (*Unit, bool) {
	for _, u := range r.units {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}

// Schedule marks u for removal at the next Cleanup. Scheduling twice is a no-op.
func (r *Roster) Schedule(u *Unit) {
	r.pending[u.ID] = struct{}{}
}

// Scheduled reports whether u is pending removal.
func (r *Roster) Scheduled(u *Unit) bool {
	_, ok := r.pending[u.ID]
	return ok
}

// Cleanup removes every scheduled unit, preserving the order of the rest, and
// returns the removed units.
func (r *Roster) Cleanup() []*Unit {
	if len(r.pending) == 0 {
		return nil
	}
	var removed []*Unit
	kept := r.units[:0]
	for _, u := range r.units {
		if _, dead := r.pending[u.ID]; dead {
			removed = append(removed, u)
			continue
		}
		kept = append(kept, u)
	}
	for i := len(kept); i < len(r.units); i++ {
		r.units[i] = nil
	}
	r.units = kept
	clear(r.pending)
	return removed
}
