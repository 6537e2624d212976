package application

import (
	"crypto/rand"
	"math/big"

	"github.com/btcsuite/btcd/wire"

	"github.com/chaumian/coordinator/internal/core/domain"
)

// coinJoinBuilder assembles the joint transaction for a round per §4.6:
// one denomination output per B-entry, one input per claimed UTXO and
// one change output per A-entry, then a Fisher-Yates shuffle of both
// slices to hide which input paid for which output.
type coinJoinBuilder struct{}

func newCoinJoinBuilder() *coinJoinBuilder {
	return &coinJoinBuilder{}
}

// Build constructs and shuffles the coin-join for round.
func (b *coinJoinBuilder) Build(round *domain.RoundState) (*domain.CoinJoin, error) {
	tx := wire.NewMsgTx(wire.TxVersion)

	for _, be := range round.BEntries.All() {
		tx.AddTxOut(wire.NewTxOut(int64(round.Denomination()), be.Output))
	}

	aEntries := round.AEntries.All()
	owners := make([]domain.InputOwner, 0)
	changeOutputs := make([]*wire.TxOut, 0, len(aEntries))

	for _, ae := range aEntries {
		for localIdx, in := range ae.Inputs {
			outpoint := in.Outpoint
			tx.AddTxIn(wire.NewTxIn(&outpoint, nil, nil))
			owners = append(owners, domain.InputOwner{EntryID: ae.ID, LocalIndex: localIdx})
		}
		changeOutputs = append(changeOutputs, wire.NewTxOut(int64(ae.ChangeAmount), ae.ChangeOutput))
	}
	tx.TxOut = append(tx.TxOut, changeOutputs...)

	if err := shuffleOutputs(tx); err != nil {
		return nil, err
	}
	if err := shuffleInputs(tx, owners); err != nil {
		return nil, err
	}

	return domain.NewCoinJoin(tx, owners), nil
}

// shuffleInputs permutes tx.TxIn and owners together so the owner
// bookkeeping tracks each input across the shuffle.
func shuffleInputs(tx *wire.MsgTx, owners []domain.InputOwner) error {
	n := len(tx.TxIn)
	for i := n - 1; i > 0; i-- {
		j, err := cryptoRandIntn(i + 1)
		if err != nil {
			return err
		}
		tx.TxIn[i], tx.TxIn[j] = tx.TxIn[j], tx.TxIn[i]
		owners[i], owners[j] = owners[j], owners[i]
	}
	return nil
}

// shuffleOutputs permutes tx.TxOut in place.
func shuffleOutputs(tx *wire.MsgTx) error {
	n := len(tx.TxOut)
	for i := n - 1; i > 0; i-- {
		j, err := cryptoRandIntn(i + 1)
		if err != nil {
			return err
		}
		tx.TxOut[i], tx.TxOut[j] = tx.TxOut[j], tx.TxOut[i]
	}
	return nil
}

// cryptoRandIntn returns a uniform random integer in [0, n) drawn from
// a cryptographically strong source, the same source the rest of this
// codebase uses for unpredictable byte generation.
func cryptoRandIntn(n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	max := big.NewInt(int64(n))
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
