package checkout

import (
	"sync"

	pkgerrors "github.com/ersha-ecosystem/storefront/pkg/errors"
)

// State is a step of one checkout attempt.
type State string

const (
	StateIdle                    State = "idle"
	StateValidating              State = "validating"
	StateCreatingOrder           State = "creating_order"
	StateAwaitingPaymentRedirect State = "awaiting_payment_redirect"
)

// Flow tracks a single checkout attempt. Failures return it to idle with the
// error recorded; awaiting_payment_redirect is terminal.
type Flow struct {
	mu      sync.Mutex
	state   State
	lastErr string
}

func NewFlow() *Flow {
	return &Flow{state: StateIdle}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err is the message of the failure that last returned the flow to idle.
func (f *Flow) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// begin moves idle to validating. Any other state means a submission is in
// flight or already handed off.
func (f *Flow) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateIdle {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already in progress").
			WithDetails(map[string]any{"state": string(f.state)})
	}
	f.state = StateValidating
	f.lastErr = ""
	return nil
}

func (f *Flow) advance(from, to State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != from {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "invalid checkout transition").
			WithDetails(map[string]any{"from": string(f.state), "to": string(to)})
	}
	f.state = to
	return nil
}

func (f *Flow) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateAwaitingPaymentRedirect {
		return
	}
	f.state = StateIdle
	f.lastErr = pkgerrors.Display(err)
}

// Flows hands out one live Flow per session key so that concurrent
// submissions from the same session hit the same state machine.
type Flows struct {
	mu    sync.Mutex
	flows map[string]*Flow
}

func NewFlows() *Flows {
	return &Flows{flows: map[string]*Flow{}}
}

// Acquire returns the session's current flow, starting a fresh one when none
// exists or the previous attempt already handed off to payment.
func (r *Flows) Acquire(key string) *Flow {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.flows[key]; ok && f.State() != StateAwaitingPaymentRedirect {
		return f
	}
	f := NewFlow()
	r.flows[key] = f
	return f
}

// Release forgets flow once it is no longer in flight.
func (r *Flows) Release(key string, flow *Flow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.flows[key] != flow {
		return
	}
	switch flow.State() {
	case StateValidating, StateCreatingOrder:
		return
	}
	delete(r.flows, key)
}
