package domain

import (
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcutil"
)

// phaseSignal is a single-shot, idempotent cancel signal: Fire may be
// called any number of times (by the scheduler on transition, or by a
// handler requesting an early advance) but only unblocks C() once.
type phaseSignal struct {
	once sync.Once
	ch   chan struct{}
}

func newPhaseSignal() *phaseSignal {
	return &phaseSignal{ch: make(chan struct{})}
}

func (s *phaseSignal) Fire() {
	s.once.Do(func() { close(s.ch) })
}

func (s *phaseSignal) C() <-chan struct{} {
	return s.ch
}

// RoundState is owned exclusively by the scheduler and replaced wholesale
// at the start of each new round. Scalar fields are guarded by mu since
// the scheduler is their only writer but request handlers read them
// concurrently; the two entry sets manage their own locking.
type RoundState struct {
	mu sync.RWMutex

	roundID                   uint64
	phase                     Phase
	accepting                 bool
	fallback                  bool
	denomination              btcutil.Amount
	feePerInput               btcutil.Amount
	feePerOutput              btcutil.Amount
	anonymityTarget           int
	inputRegistrationDuration time.Duration
	coinjoin                  *CoinJoin
	cancel                    *phaseSignal

	AEntries *AEntrySet
	BEntries *BEntrySet
}

// NewRoundState starts a fresh round at InputRegistration with empty
// entry sets, carrying over the adaptive parameters computed for it.
func NewRoundState(
	roundID uint64,
	fallback bool,
	denomination, feePerInput, feePerOutput btcutil.Amount,
	anonymityTarget int,
	seedInputRegistrationDuration time.Duration,
) *RoundState {
	return &RoundState{
		roundID:                   roundID,
		phase:                     InputRegistration,
		fallback:                  fallback,
		denomination:              denomination,
		feePerInput:               feePerInput,
		feePerOutput:              feePerOutput,
		anonymityTarget:           anonymityTarget,
		inputRegistrationDuration: seedInputRegistrationDuration,
		cancel:                    newPhaseSignal(),
		AEntries:                  NewAEntrySet(),
		BEntries:                  NewBEntrySet(),
	}
}

// SetPhase is the scheduler's atomic phase-transition primitive: it
// closes out admission for the outgoing phase, replaces the phase tag,
// and issues a fresh cancel signal for the incoming phase's wait.
func (r *RoundState) SetPhase(p Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.accepting = false
	r.phase = p
	r.cancel.Fire()
	r.cancel = newPhaseSignal()
}

// SetAccepting flips whether registration requests for the current phase
// are admitted.
func (r *RoundState) SetAccepting(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.accepting = v
}

// CancelChan returns the cancel signal for the phase currently in
// effect, to be raced against a timer by the scheduler's wait.
func (r *RoundState) CancelChan() <-chan struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.cancel.C()
}

// AdvancePhaseEarly cuts the current phase's wait short. Safe to call
// any number of times or concurrently.
func (r *RoundState) AdvancePhaseEarly() {
	r.mu.RLock()
	sig := r.cancel
	r.mu.RUnlock()

	sig.Fire()
}

func (r *RoundState) Phase() Phase {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.phase
}

func (r *RoundState) Accepting() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.accepting
}

func (r *RoundState) RoundID() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roundID
}

func (r *RoundState) Fallback() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

func (r *RoundState) SetFallback(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = v
}

func (r *RoundState) Denomination() btcutil.Amount {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.denomination
}

func (r *RoundState) FeePerInput() btcutil.Amount {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.feePerInput
}

func (r *RoundState) FeePerOutput() btcutil.Amount {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.feePerOutput
}

func (r *RoundState) AnonymityTarget() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.anonymityTarget
}

func (r *RoundState) InputRegistrationDuration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inputRegistrationDuration
}

func (r *RoundState) SetInputRegistrationDuration(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputRegistrationDuration = d
}

func (r *RoundState) CoinJoin() *CoinJoin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.coinjoin
}

func (r *RoundState) SetCoinJoin(c *CoinJoin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coinjoin = c
}

// AcceptingInvariantHolds is the testable property from spec §8: whenever
// accepting is true, the round must be in a phase where admission is
// actually meaningful.
func (r *RoundState) AcceptingInvariantHolds() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.accepting {
		return true
	}
	switch r.phase {
	case InputRegistration, OutputRegistration:
		return true
	case Signing:
		return r.coinjoin != nil
	default:
		return false
	}
}
