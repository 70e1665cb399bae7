package workflows

// StateMachine enforces allowed transitions between states of type S.
type StateMachine[S comparable] struct {
	allowedTransitions map[S][]S
}

// NewStateMachine creates a state machine from an allowed-transition table.
func NewStateMachine[S comparable](transitions map[S][]S) *StateMachine[S] {
	return &StateMachine[S]{allowedTransitions: transitions}
}

// CanTransition checks if a transition is allowed.
func (sm *StateMachine[S]) CanTransition(from, to S) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next states for a given state.
func (sm *StateMachine[S]) GetAllowedTransitions(from S) []S {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return nil
	}
	return allowed
}
