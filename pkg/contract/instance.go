package contract

import (
	"io"
	"sync"
)

// Instance is a contract hosted in process. Submissions are applied one at a
// time, in the order they acquire the lock.
type Instance struct {
	mtx   sync.Mutex
	rand  io.Reader
	state State
}

// NewInstance hosts a contract starting from state. rand is used by every
// CommitEncryptedSummary.
func NewInstance(state State, rand io.Reader) *Instance {
	return &Instance{rand: rand, state: state.Clone()}
}

// Submit applies a to the current state. A rejected action leaves it untouched.
func (in *Instance) Submit(a Action) (Output, error) {
	in.mtx.Lock()
	defer in.mtx.Unlock()
	next, out, err := Apply(in.rand, in.state, a)
	if err != nil {
		return Output{}, err
	}
	in.state = next
	return out, nil
}

// State returns a copy of the current state.
func (in *Instance) State() State {
	in.mtx.Lock()
	defer in.mtx.Unlock()
	return in.state.Clone()
}
