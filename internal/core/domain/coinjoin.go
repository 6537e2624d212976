package domain

import "github.com/btcsuite/btcd/wire"

// InputOwner records which A-entry (and which of that entry's own
// inputs) a coin-join transaction input at a given position belongs to,
// so that a later witness submission can be routed to the right TxIn
// after the builder has shuffled everything.
type InputOwner struct {
	EntryID    string
	LocalIndex int
}

// CoinJoin is the assembled joint transaction for a round, plus the
// bookkeeping needed to map a participant's local input index back onto
// the shuffled transaction.
type CoinJoin struct {
	Tx *wire.MsgTx

	// owners[i] describes the entry that contributed Tx.TxIn[i].
	owners []InputOwner
	// index[entryID][localIndex] = global position in Tx.TxIn.
	index map[string][]int
}

// NewCoinJoin wraps tx together with the owner bookkeeping produced by
// the builder.
func NewCoinJoin(tx *wire.MsgTx, owners []InputOwner) *CoinJoin {
	index := make(map[string][]int)
	for globalIdx, owner := range owners {
		slots := index[owner.EntryID]
		for len(slots) <= owner.LocalIndex {
			slots = append(slots, -1)
		}
		slots[owner.LocalIndex] = globalIdx
		index[owner.EntryID] = slots
	}
	return &CoinJoin{Tx: tx, owners: owners, index: index}
}

// GlobalIndex returns the position within Tx.TxIn that corresponds to
// entryID's localIndex-th own input.
func (c *CoinJoin) GlobalIndex(entryID string, localIndex int) (int, bool) {
	slots, ok := c.index[entryID]
	if !ok || localIndex < 0 || localIndex >= len(slots) {
		return 0, false
	}
	global := slots[localIndex]
	if global < 0 {
		return 0, false
	}
	return global, true
}

// FullySigned reports whether every input of the coin-join carries a
// non-empty witness.
func (c *CoinJoin) FullySigned() bool {
	if c == nil || c.Tx == nil {
		return false
	}
	for _, in := range c.Tx.TxIn {
		if len(in.Witness) == 0 {
			return false
		}
	}
	return true
}
