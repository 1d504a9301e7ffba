package newbill

import (
	"errors"
	"fmt"
)

// State tracks one in-flight bill submission.
type State string

const (
	StateIdle         State = "IDLE"
	StateFileSelected State = "FILE_SELECTED"
	StateFileUploaded State = "FILE_UPLOADED"
	StateFileRejected State = "FILE_REJECTED"
	StateSubmitted    State = "SUBMITTED"
)

// Trigger is an event that can advance the submission lifecycle.
type Trigger string

const (
	TriggerSelectFile   Trigger = "SELECT_FILE"
	TriggerRejectFile   Trigger = "REJECT_FILE"
	TriggerFinishUpload Trigger = "FINISH_UPLOAD"
	TriggerSubmit       Trigger = "SUBMIT"
)

// ErrInvalidTransition is returned when a trigger is not permitted in the
// current state.
var ErrInvalidTransition = errors.New("invalid submission state transition")

// transitions is the full lifecycle: selecting a file is always allowed
// before submission (a new selection supersedes the previous upload), and
// SUBMITTED is terminal.
var transitions = map[State]map[Trigger]State{
	StateIdle: {
		TriggerSelectFile: StateFileSelected,
		TriggerRejectFile: StateFileRejected,
	},
	StateFileSelected: {
		TriggerFinishUpload: StateFileUploaded,
		TriggerSelectFile:   StateFileSelected,
		TriggerRejectFile:   StateFileRejected,
	},
	StateFileUploaded: {
		TriggerSubmit:     StateSubmitted,
		TriggerSelectFile: StateFileSelected,
		TriggerRejectFile: StateFileRejected,
	},
	StateFileRejected: {
		TriggerSelectFile: StateFileSelected,
		TriggerRejectFile: StateFileRejected,
	},
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsTerminal returns true once the submission has been persisted.
func (s State) IsTerminal() bool {
	return s == StateSubmitted
}

// Machine is a minimal state machine over the submission lifecycle.
type Machine struct {
	current State
}

// NewMachine creates a machine in the IDLE state
func NewMachine() *Machine {
	return &Machine{current: StateIdle}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.current
}

// CanFire returns true if the trigger is permitted in the current state.
func (m *Machine) CanFire(trigger Trigger) bool {
	_, ok := transitions[m.current][trigger]
	return ok
}

// Fire advances the machine, or returns ErrInvalidTransition.
func (m *Machine) Fire(trigger Trigger) error {
	next, ok := transitions[m.current][trigger]
	if !ok {
		return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, trigger, m.current)
	}
	m.current = next
	return nil
}
