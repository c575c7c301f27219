// Package selection holds the in-progress seat choice of one user session.
package selection

import "sort"

// State is the current studio and the set of seats chosen in it. A non-empty
// seat set implies a chosen studio. State is owned by a single UI shell and
// is not safe for concurrent use.
type State struct {
	studioID   int64
	hasStudio  bool
	seats      map[int64]struct{}
	generation uint64
}

// Snapshot is an immutable copy of a State taken at submission time.
type Snapshot struct {
	StudioID   int64
	HasStudio  bool
	SeatIDs    []int64
	Generation uint64
}

func New() *State {
	return &State{seats: map[int64]struct{}{}}
}

// SetStudio switches to studio id and drops every selected seat, even when
// id is the current studio.
func (s *State) SetStudio(id int64) {
	s.studioID = id
	s.hasStudio = true
	s.seats = map[int64]struct{}{}
	s.generation++
}

// ToggleSeat adds the seat if absent and removes it if present. Availability
// is not checked here; the snapshot it would be checked against can be stale.
// Toggling without a studio is ignored.
func (s *State) ToggleSeat(id int64) {
	if !s.hasStudio {
		return
	}
	if _, ok := s.seats[id]; ok {
		delete(s.seats, id)
		return
	}
	s.seats[id] = struct{}{}
}

// DropSeats removes the given seats if selected.
func (s *State) DropSeats(ids ...int64) {
	for _, id := range ids {
		delete(s.seats, id)
	}
}

func (s *State) Clear() {
	s.studioID = 0
	s.hasStudio = false
	s.seats = map[int64]struct{}{}
	s.generation++
}

func (s *State) Studio() (int64, bool) {
	return s.studioID, s.hasStudio
}

func (s *State) Has(id int64) bool {
	_, ok := s.seats[id]
	return ok
}

func (s *State) Len() int {
	return len(s.seats)
}

func (s *State) Empty() bool {
	return len(s.seats) == 0
}

// Seats returns the selected seat ids in ascending order.
func (s *State) Seats() []int64 {
	out := make([]int64, 0, len(s.seats))
	for id := range s.seats {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Generation changes whenever the user leaves the current booking flow
// (studio change or clear).
func (s *State) Generation() uint64 {
	return s.generation
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		StudioID:   s.studioID,
		HasStudio:  s.hasStudio,
		SeatIDs:    s.Seats(),
		Generation: s.generation,
	}
}
