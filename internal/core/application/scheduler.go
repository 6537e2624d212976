package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/sirupsen/logrus"

	"github.com/chaumian/coordinator/internal/config"
	"github.com/chaumian/coordinator/internal/core/domain"
	"github.com/chaumian/coordinator/internal/core/ports"
)

// Scheduler is the apex component: it owns one round at a time and
// drives it through the four phases forever until Run's context is
// cancelled, per §4.1. It is the sole writer of phase, accepting,
// round_id, and fallback on the round it owns.
type Scheduler struct {
	cfg          *config.Config
	broadcaster  ports.PhaseBroadcaster
	admitter     ports.AdmissionHook
	log          logrus.FieldLogger
	denomCalc    *denominationCalculator
	feeCalc      *feeCalculator
	anonCalc     *anonymityCalculator
	builder      *coinJoinBuilder

	mu       sync.RWMutex
	round    *domain.RoundState
	registry *roundRegistry

	roundID                 uint64
	previousDenomination    *btcutil.Amount
	previousFees            *roundFees
	previousAnonymityTarget int
	previousDuration        time.Duration
}

// NewScheduler wires a Scheduler from Config plus the external
// collaborators of §2: the fee estimator, the exchange-rate provider,
// the phase broadcaster, and the optional admission hook.
func NewScheduler(
	cfg *config.Config,
	broadcaster ports.PhaseBroadcaster,
	feeEstimator ports.FeeEstimator,
	rates ports.ExchangeRateProvider,
	admitter ports.AdmissionHook,
	log logrus.FieldLogger,
) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	anonCalc := newAnonymityCalculator(cfg.MinimumAnonymitySet, cfg.MaximumAnonymitySet, cfg.AverageTimeToSpendInInputRegistration)
	return &Scheduler{
		cfg:                     cfg,
		broadcaster:             broadcaster,
		admitter:                admitter,
		log:                     log,
		denomCalc:               newDenominationCalculator(rates, log),
		feeCalc:                 newFeeCalculator(feeEstimator, log),
		anonCalc:                anonCalc,
		builder:                 newCoinJoinBuilder(),
		previousAnonymityTarget: cfg.MinimumAnonymitySet,
		previousDuration:        anonCalc.seedInputRegistrationDuration(),
	}
}

// Run drives rounds forever until ctx is cancelled. Any uncaught
// failure inside a round sets fallback and restarts at
// InputRegistration rather than terminating the coordinator.
func (s *Scheduler) Run(ctx context.Context) error {
	fallback := false
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		next, err := s.runRound(ctx, fallback)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.WithError(err).Error("scheduler fault, round restarting in fallback")
			fallback = true
			continue
		}
		fallback = next
	}
}

// runRound drives one complete round through all four phases, returning
// the fallback flag the next round should be started with.
func (s *Scheduler) runRound(ctx context.Context, fallback bool) (nextFallback bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = domain.ErrSchedulerFault{Phase: domain.InputRegistration, Err: fmt.Errorf("%v", p)}
			nextFallback = true
		}
	}()

	round, err := s.startInputRegistration(ctx, fallback)
	if err != nil {
		return true, err
	}

	elapsed, shutdown, err := s.waitPhase(ctx, round, s.cfg.InputRegistrationPhaseTimeout)
	if err != nil {
		return true, domain.ErrSchedulerFault{Phase: domain.InputRegistration, Err: err}
	}
	if shutdown {
		return fallback, nil
	}
	if !round.Fallback() {
		round.SetInputRegistrationDuration(elapsed)
		s.previousDuration = elapsed
	}

	s.transitionTo(round, round.Phase().Next(), fmt.Sprintf("round %d entering connection confirmation", round.RoundID()))
	if _, shutdown, err := s.waitPhase(ctx, round, s.cfg.ConnectionConfirmationPhaseTimeout); err != nil {
		return true, domain.ErrSchedulerFault{Phase: domain.ConnectionConfirmation, Err: err}
	} else if shutdown {
		return fallback, nil
	}
	if !round.AEntries.AllConfirmed() {
		round.SetFallback(true)
		return true, nil
	}

	s.transitionTo(round, round.Phase().Next(), fmt.Sprintf("round %d entering output registration", round.RoundID()))
	if _, shutdown, err := s.waitPhase(ctx, round, s.cfg.OutputRegistrationPhaseTimeout); err != nil {
		return true, domain.ErrSchedulerFault{Phase: domain.OutputRegistration, Err: err}
	} else if shutdown {
		return fallback, nil
	}
	// Output registration never falls back: B-entries are anonymous and
	// non-registration cannot be attributed to any A-entry.

	cj, err := s.builder.Build(round)
	if err != nil {
		return true, domain.ErrSchedulerFault{Phase: domain.Signing, Err: err}
	}
	round.SetCoinJoin(cj)
	s.transitionTo(round, round.Phase().Next(), fmt.Sprintf("round %d entering signing", round.RoundID()))
	if _, shutdown, err := s.waitPhase(ctx, round, s.cfg.SigningPhaseTimeout); err != nil {
		return true, domain.ErrSchedulerFault{Phase: domain.Signing, Err: err}
	} else if shutdown {
		return fallback, nil
	}

	fullySigned := cj.FullySigned()
	round.SetCoinJoin(nil)
	round.SetFallback(!fullySigned)
	return !fullySigned, nil
}

// startInputRegistration replaces the current round wholesale: fresh
// entry sets, freshly computed parameters, round_id incremented.
func (s *Scheduler) startInputRegistration(ctx context.Context, fallback bool) (*domain.RoundState, error) {
	s.roundID++

	denomination, err := s.denomCalc.Compute(ctx, s.cfg, s.previousDenomination)
	if err != nil {
		return nil, err
	}
	s.previousDenomination = &denomination

	fees, err := s.feeCalc.Compute(ctx, s.cfg, s.previousFees)
	if err != nil {
		return nil, err
	}
	s.previousFees = &fees

	anonymityTarget := s.anonCalc.Next(s.previousAnonymityTarget, s.previousDuration)
	s.previousAnonymityTarget = anonymityTarget

	round := domain.NewRoundState(s.roundID, fallback, denomination, fees.PerInput, fees.PerOutput, anonymityTarget, s.previousDuration)

	s.mu.Lock()
	s.round = round
	s.registry = newRoundRegistry(round, s.admitter)
	s.mu.Unlock()

	round.SetAccepting(true)
	s.broadcaster.Publish(domain.NewPhaseChangeEvent(domain.InputRegistration, fmt.Sprintf("round %d entering input registration", round.RoundID())))
	return round, nil
}

// transitionTo is the scheduler's only caller of RoundState.SetPhase: it
// closes the outgoing phase's admission, opens admission for phases
// that accept registrations, then publishes the event — accepting must
// be true before the event goes out, per §5's ordering guarantee.
func (s *Scheduler) transitionTo(round *domain.RoundState, phase domain.Phase, message string) {
	round.SetPhase(phase)
	if phase == domain.InputRegistration || phase == domain.OutputRegistration {
		round.SetAccepting(true)
	}
	s.broadcaster.Publish(domain.NewPhaseChangeEvent(phase, message))
}

// waitPhase blocks until timeout elapses, the round's phase-cancel
// fires (an early-advance request), or ctx is cancelled. It returns the
// elapsed wall-clock time and whether the wait ended because of
// shutdown (in which case the caller must not keep driving the round).
func (s *Scheduler) waitPhase(ctx context.Context, round *domain.RoundState, timeout time.Duration) (time.Duration, bool, error) {
	start := time.Now()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-timer.C:
		return time.Since(start), false, nil
	case <-round.CancelChan():
		return time.Since(start), false, nil
	case <-ctx.Done():
		return time.Since(start), true, nil
	}
}

// currentRegistry returns the registry wrapping whichever round is
// presently in effect, for the external request handlers.
func (s *Scheduler) currentRegistry() (*roundRegistry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.registry == nil {
		return nil, fmt.Errorf("no round in progress")
	}
	return s.registry, nil
}

// RegisterA is the external entry point for §4.2's register_a.
func (s *Scheduler) RegisterA(inputs []domain.UTXORef, changeOutput []byte) (string, error) {
	reg, err := s.currentRegistry()
	if err != nil {
		return "", err
	}
	return reg.RegisterA(inputs, changeOutput)
}

// ConfirmConnection is the external entry point for §4.2's confirm_connection.
func (s *Scheduler) ConfirmConnection(id string) error {
	reg, err := s.currentRegistry()
	if err != nil {
		return err
	}
	return reg.ConfirmConnection(id)
}

// RegisterB is the external entry point for §4.2's register_b.
func (s *Scheduler) RegisterB(output []byte) error {
	reg, err := s.currentRegistry()
	if err != nil {
		return err
	}
	return reg.RegisterB(output)
}

// SubmitSignature is the external entry point for §4.2's submit_signature.
func (s *Scheduler) SubmitSignature(id string, localIndex int, witness [][]byte) error {
	reg, err := s.currentRegistry()
	if err != nil {
		return err
	}
	return reg.SubmitSignature(id, localIndex, witness)
}

// FindA is the external entry point for §4.2's find_a.
func (s *Scheduler) FindA(id string) (*domain.AEntry, error) {
	reg, err := s.currentRegistry()
	if err != nil {
		return nil, err
	}
	return reg.FindA(id)
}

// AdvancePhase is the external entry point for §6's advance_phase(): a
// handler that observes the round is full may cut the current phase's
// wait short.
func (s *Scheduler) AdvancePhase() {
	s.mu.RLock()
	round := s.round
	s.mu.RUnlock()
	if round != nil {
		round.AdvancePhaseEarly()
	}
}

// CurrentRound exposes the round currently in effect, for read-only
// inspection by the HTTP surface this core does not implement.
func (s *Scheduler) CurrentRound() *domain.RoundState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.round
}
