package domain

import (
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// AEntryState is the lifecycle of an A-entry within a single round.
type AEntryState int

const (
	Registered AEntryState = iota
	ConnectionConfirmed
	Signed
)

func (s AEntryState) String() string {
	switch s {
	case Registered:
		return "Registered"
	case ConnectionConfirmed:
		return "ConnectionConfirmed"
	case Signed:
		return "Signed"
	default:
		return "Unknown"
	}
}

// UTXORef is a claimed reference to a Bitcoin UTXO: the coordinator never
// inspects the chain itself, it trusts the outpoint/amount pair supplied
// by the caller's request handler.
type UTXORef struct {
	Outpoint wire.OutPoint
	Amount   btcutil.Amount
}

// AEntry is one input-provider's registration for the current round.
// ID, Inputs, ChangeOutput and ChangeAmount are fixed at registration and
// safe to read without synchronization; state and signatures change
// after registration and go through the lock-held methods below, the
// way the teacher's paymentsMap only ever mutates a payment while
// holding its own lock rather than through a pointer handed to callers.
type AEntry struct {
	ID           string
	Inputs       []UTXORef
	ChangeOutput []byte
	ChangeAmount btcutil.Amount

	mu         sync.Mutex
	state      AEntryState
	signatures map[int]wire.TxWitness
}

func newAEntry(id string, inputs []UTXORef, changeOutput []byte, changeAmount btcutil.Amount) *AEntry {
	return &AEntry{
		ID:           id,
		Inputs:       inputs,
		ChangeOutput: changeOutput,
		ChangeAmount: changeAmount,
		state:        Registered,
		signatures:   make(map[int]wire.TxWitness),
	}
}

// State returns the entry's current lifecycle state.
func (e *AEntry) State() AEntryState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// MarkConnectionConfirmed advances the entry to ConnectionConfirmed.
func (e *AEntry) MarkConnectionConfirmed() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = ConnectionConfirmed
}

// RecordSignature stores the witness for one of this entry's own input
// indices and, once every one of its inputs carries a witness, advances
// the entry to Signed. It reports whether the entry became fully signed
// by this call. Concurrent calls for different indices of the same entry
// are safe: both the map write and the state check happen under e.mu.
func (e *AEntry) RecordSignature(localIndex int, witness wire.TxWitness) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.signatures[localIndex] = witness
	if !e.fullySignedLocked() {
		return false
	}
	e.state = Signed
	return true
}

// fullySignedLocked reports whether every input owned by this entry
// carries a non-empty witness. Callers must hold e.mu.
func (e *AEntry) fullySignedLocked() bool {
	if len(e.signatures) != len(e.Inputs) {
		return false
	}
	for i := range e.Inputs {
		if len(e.signatures[i]) == 0 {
			return false
		}
	}
	return true
}

// BEntry is one output-claimer's registration for the current round.
type BEntry struct {
	Output []byte
}
