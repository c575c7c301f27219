package selection

import (
	"errors"
	"sync"

	"studio-booking-cli/service"
)

var ErrSubmissionInFlight = errors.New("a booking submission is already in progress")

// Outcome describes what Finish did with a submission result.
type Outcome struct {
	// Stale is set when the user left the booking flow while the request was
	// in flight. The result must not be applied to the UI.
	Stale bool
	// Cleared is set after a successful submission.
	Cleared bool
	// Dropped lists seats removed from the selection after a conflict.
	Dropped []int64
	// RefreshSeats asks the caller to re-read availability before the next
	// submission.
	RefreshSeats bool
}

// Checkout guards submissions of a State: at most one request in flight, and
// results for a selection the user already abandoned are discarded.
type Checkout struct {
	mu       sync.Mutex
	state    *State
	inFlight bool
}

func NewCheckout(state *State) *Checkout {
	if state == nil {
		state = New()
	}
	return &Checkout{state: state}
}

func (c *Checkout) State() *State {
	return c.state
}

func (c *Checkout) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Begin marks a submission as in flight and returns the selection to submit.
func (c *Checkout) Begin() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return Snapshot{}, ErrSubmissionInFlight
	}
	c.inFlight = true
	return c.state.Snapshot(), nil
}

// Finish records the result of the submission started with snap.
func (c *Checkout) Finish(snap Snapshot, err error) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if snap.Generation != c.state.Generation() {
		return Outcome{Stale: true}
	}
	if err == nil {
		c.state.Clear()
		return Outcome{Cleared: true}
	}
	if service.IsConflict(err) {
		dropped := service.ConflictSeats(err)
		var present []int64
		for _, id := range dropped {
			if c.state.Has(id) {
				present = append(present, id)
			}
		}
		c.state.DropSeats(present...)
		return Outcome{Dropped: present, RefreshSeats: true}
	}
	return Outcome{}
}
