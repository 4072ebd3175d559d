package flows

import "sync"

// Phase is the step a flow invocation is currently in. Each Deposit,
// Request or Claim call walks Idle -> Preparing -> Signing -> Submitting
// and ends in Done or Failed, so a partial failure is inspectable.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhasePreparing  Phase = "preparing"
	PhaseSigning    Phase = "signing"
	PhaseSubmitting Phase = "submitting"
	PhaseDone       Phase = "done"
	PhaseFailed     Phase = "failed"
)

// flowState is the observable state shared by the orchestrators. Flows are
// not reentrant: callers must not start a second invocation while one is
// in flight.
type flowState struct {
	mu    sync.Mutex
	phase Phase
	err   error
}

// Phase returns the current phase of the last or in-flight invocation.
func (s *flowState) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == "" {
		return PhaseIdle
	}
	return s.phase
}

// Err returns the failure of the last invocation, nil after a success or
// reset.
func (s *flowState) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Loading reports whether an invocation is between start and completion.
func (s *flowState) Loading() bool {
	switch s.Phase() {
	case PhasePreparing, PhaseSigning, PhaseSubmitting:
		return true
	}
	return false
}

// Reset clears the phase and error, e.g. before the next attempt.
func (s *flowState) Reset() {
	s.mu.Lock()
	s.phase = PhaseIdle
	s.err = nil
	s.mu.Unlock()
}

func (s *flowState) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// fail records the error, marks the flow failed and returns the error so
// call sites can `return f.fail(err)`.
func (s *flowState) fail(err error) error {
	s.mu.Lock()
	s.phase = PhaseFailed
	s.err = err
	s.mu.Unlock()
	return err
}

func (s *flowState) succeed() {
	s.mu.Lock()
	s.phase = PhaseDone
	s.err = nil
	s.mu.Unlock()
}
