package domain

import "fmt"

// ErrWrongPhase is returned when a request arrives outside the phase it
// is permitted in. It never perturbs round state.
type ErrWrongPhase struct {
	Want Phase
	Got  Phase
}

func (e ErrWrongPhase) Error() string {
	return fmt.Sprintf("wrong phase: expected %s, round is in %s", e.Want, e.Got)
}

// ErrUnknownID is returned when a lookup against the A-entry set fails.
type ErrUnknownID struct {
	ID string
}

func (e ErrUnknownID) Error() string {
	return fmt.Sprintf("unknown entry id %q", e.ID)
}

// ErrValidation is returned when amounts, script bytes, or witness
// signatures fail a check.
type ErrValidation struct {
	Reason string
}

func (e ErrValidation) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// ErrExternalUnavailable wraps a failure from the fee estimator or the
// exchange-rate provider. Callers fall back per the relevant calculator
// and continue the round; it is never propagated to a round-ending fault.
type ErrExternalUnavailable struct {
	Source string
	Err    error
}

func (e ErrExternalUnavailable) Error() string {
	return fmt.Sprintf("%s unavailable: %s", e.Source, e.Err)
}

func (e ErrExternalUnavailable) Unwrap() error {
	return e.Err
}

// ErrSchedulerFault wraps any uncaught failure inside the phase loop.
// The scheduler always recovers from it by restarting at InputRegistration.
type ErrSchedulerFault struct {
	Phase Phase
	Err   error
}

func (e ErrSchedulerFault) Error() string {
	return fmt.Sprintf("scheduler fault in %s: %s", e.Phase, e.Err)
}

func (e ErrSchedulerFault) Unwrap() error {
	return e.Err
}
