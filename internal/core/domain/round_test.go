package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chaumian/coordinator/internal/core/domain"
)

func newTestRound() *domain.RoundState {
	return domain.NewRoundState(1, false, 1_000_000, 500, 1000, 5, 121*time.Second)
}

func TestRoundStateSetPhaseResetsAccepting(t *testing.T) {
	r := newTestRound()
	r.SetAccepting(true)

	r.SetPhase(domain.ConnectionConfirmation)

	require.Equal(t, domain.ConnectionConfirmation, r.Phase())
	require.False(t, r.Accepting())
}

func TestRoundStateAdvancePhaseEarlyIsIdempotent(t *testing.T) {
	r := newTestRound()

	done := make(chan struct{})
	go func() {
		<-r.CancelChan()
		close(done)
	}()

	r.AdvancePhaseEarly()
	r.AdvancePhaseEarly()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cancel signal never fired")
	}
}

func TestRoundStateCancelChanIsFreshPerPhase(t *testing.T) {
	r := newTestRound()
	first := r.CancelChan()

	r.SetPhase(domain.ConnectionConfirmation)
	second := r.CancelChan()

	select {
	case <-first:
	default:
		t.Fatal("expected the outgoing phase's cancel signal to have fired on SetPhase")
	}
	select {
	case <-second:
		t.Fatal("new phase's cancel signal should not have fired yet")
	default:
	}
}

func TestAcceptingInvariantHolds(t *testing.T) {
	r := newTestRound()
	require.True(t, r.AcceptingInvariantHolds())

	r.SetAccepting(true)
	require.True(t, r.AcceptingInvariantHolds())

	r.SetPhase(domain.ConnectionConfirmation)
	require.True(t, r.AcceptingInvariantHolds())

	r.SetAccepting(true)
	require.False(t, r.AcceptingInvariantHolds())

	r.SetPhase(domain.Signing)
	r.SetAccepting(true)
	require.False(t, r.AcceptingInvariantHolds())

	r.SetCoinJoin(domain.NewCoinJoin(nil, nil))
	require.True(t, r.AcceptingInvariantHolds())
}
