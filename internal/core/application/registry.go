package application

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/google/uuid"

	"github.com/chaumian/coordinator/internal/core/domain"
	"github.com/chaumian/coordinator/internal/core/ports"
)

// roundRegistry exposes the five request-handler operations of §4.2
// against the scheduler's current round, translating phase and lookup
// failures into the domain error kinds. It holds no state of its own
// beyond a reference to the round and the optional admission hook; all
// concurrency safety comes from RoundState and its entry sets.
type roundRegistry struct {
	round    *domain.RoundState
	admitter ports.AdmissionHook
}

func newRoundRegistry(round *domain.RoundState, admitter ports.AdmissionHook) *roundRegistry {
	return &roundRegistry{round: round, admitter: admitter}
}

// RegisterA admits an A-entry during InputRegistration. The registry
// checks only that the arithmetic yields a non-negative change amount;
// UTXO existence and value sufficiency are the caller's responsibility.
func (reg *roundRegistry) RegisterA(inputs []domain.UTXORef, changeOutput []byte) (string, error) {
	if reg.round.Phase() != domain.InputRegistration || !reg.round.Accepting() {
		return "", domain.ErrWrongPhase{Want: domain.InputRegistration, Got: reg.round.Phase()}
	}
	if len(inputs) == 0 {
		return "", domain.ErrValidation{Reason: "inputs must be non-empty"}
	}

	if reg.admitter != nil {
		if err := reg.admitter.AdmitA(inputs); err != nil {
			return "", domain.ErrValidation{Reason: err.Error()}
		}
	}

	var claimed btcutil.Amount
	for _, in := range inputs {
		claimed += in.Amount
	}
	fee := reg.round.FeePerInput()*btcutil.Amount(len(inputs)) + reg.round.FeePerOutput()
	changeAmount := claimed - reg.round.Denomination() - fee
	if changeAmount < 0 {
		return "", domain.ErrValidation{Reason: "claimed inputs insufficient for denomination and fees"}
	}

	id := uuid.NewString()
	entry := reg.round.AEntries.Insert(id, inputs, changeOutput, changeAmount)
	return entry.ID, nil
}

// ConfirmConnection moves an A-entry to ConnectionConfirmed during the
// ConnectionConfirmation phase.
func (reg *roundRegistry) ConfirmConnection(id string) error {
	if reg.round.Phase() != domain.ConnectionConfirmation {
		return domain.ErrWrongPhase{Want: domain.ConnectionConfirmation, Got: reg.round.Phase()}
	}
	entry, ok := reg.round.AEntries.Find(id)
	if !ok {
		return domain.ErrUnknownID{ID: id}
	}
	entry.MarkConnectionConfirmed()
	return nil
}

// RegisterB admits a B-entry during OutputRegistration.
func (reg *roundRegistry) RegisterB(output []byte) error {
	if reg.round.Phase() != domain.OutputRegistration || !reg.round.Accepting() {
		return domain.ErrWrongPhase{Want: domain.OutputRegistration, Got: reg.round.Phase()}
	}
	if len(output) == 0 {
		return domain.ErrValidation{Reason: "output script must be non-empty"}
	}
	if reg.round.BEntries.Len() >= reg.round.AEntries.Len() {
		return domain.ErrValidation{Reason: "output registration is full for this round"}
	}
	reg.round.BEntries.Insert(output)
	return nil
}

// SubmitSignature records a witness for one of an A-entry's inputs
// during Signing, after validating it against the coin-join.
func (reg *roundRegistry) SubmitSignature(id string, localIndex int, witness [][]byte) error {
	if reg.round.Phase() != domain.Signing {
		return domain.ErrWrongPhase{Want: domain.Signing, Got: reg.round.Phase()}
	}
	entry, ok := reg.round.AEntries.Find(id)
	if !ok {
		return domain.ErrUnknownID{ID: id}
	}
	cj := reg.round.CoinJoin()
	if cj == nil {
		return domain.ErrValidation{Reason: "coin-join not yet built"}
	}
	globalIdx, ok := cj.GlobalIndex(id, localIndex)
	if !ok {
		return domain.ErrValidation{Reason: "unknown input index for entry"}
	}
	if localIndex < 0 || localIndex >= len(entry.Inputs) {
		return domain.ErrValidation{Reason: "input index out of range"}
	}

	if err := verifyWitness(cj.Tx, globalIdx, entry.Inputs[localIndex], witness); err != nil {
		return domain.ErrValidation{Reason: err.Error()}
	}

	cj.Tx.TxIn[globalIdx].Witness = witness
	entry.RecordSignature(localIndex, witness)
	return nil
}

// FindA looks up an A-entry by ID.
func (reg *roundRegistry) FindA(id string) (*domain.AEntry, error) {
	entry, ok := reg.round.AEntries.Find(id)
	if !ok {
		return nil, domain.ErrUnknownID{ID: id}
	}
	return entry, nil
}
