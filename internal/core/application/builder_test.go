package application

import (
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/chaumian/coordinator/internal/core/domain"
)

func TestCoinJoinBuilderOutputAndInputCounts(t *testing.T) {
	round := domain.NewRoundState(1, false, 100_000, 500, 1000, 5, 0)
	round.BEntries.Insert([]byte("b1"))
	round.BEntries.Insert([]byte("b2"))

	round.AEntries.Insert("a1", []domain.UTXORef{
		{Outpoint: wire.OutPoint{Index: 0}, Amount: 200_000},
	}, []byte("change1"), 50_000)
	round.AEntries.Insert("a2", []domain.UTXORef{
		{Outpoint: wire.OutPoint{Index: 1}, Amount: 150_000},
		{Outpoint: wire.OutPoint{Index: 2}, Amount: 150_000},
	}, []byte("change2"), 40_000)

	builder := newCoinJoinBuilder()
	cj, err := builder.Build(round)
	require.NoError(t, err)

	require.Len(t, cj.Tx.TxIn, 3)
	require.Len(t, cj.Tx.TxOut, 4) // 2 B-entry outputs + 2 change outputs

	idx, ok := cj.GlobalIndex("a1", 0)
	require.True(t, ok)
	require.Equal(t, wire.OutPoint{Index: 0}, cj.Tx.TxIn[idx].PreviousOutPoint)

	idx0, ok := cj.GlobalIndex("a2", 0)
	require.True(t, ok)
	idx1, ok := cj.GlobalIndex("a2", 1)
	require.True(t, ok)
	require.Equal(t, wire.OutPoint{Index: 1}, cj.Tx.TxIn[idx0].PreviousOutPoint)
	require.Equal(t, wire.OutPoint{Index: 2}, cj.Tx.TxIn[idx1].PreviousOutPoint)
}

func TestCoinJoinBuilderShuffleIsAPermutation(t *testing.T) {
	round := domain.NewRoundState(1, false, 50_000, 0, 0, 5, 0)
	for i := 0; i < 5; i++ {
		round.BEntries.Insert([]byte{byte(i)})
	}
	for i := 0; i < 5; i++ {
		round.AEntries.Insert(string(rune('a'+i)), []domain.UTXORef{
			{Outpoint: wire.OutPoint{Index: uint32(i)}, Amount: 1_000_000},
		}, []byte{byte(i)}, 900_000)
	}

	builder := newCoinJoinBuilder()
	cj, err := builder.Build(round)
	require.NoError(t, err)

	seen := make(map[uint32]bool)
	for _, in := range cj.Tx.TxIn {
		seen[in.PreviousOutPoint.Index] = true
	}
	require.Len(t, seen, 5)
	for i := uint32(0); i < 5; i++ {
		require.True(t, seen[i])
	}
}
