package domain_test

import (
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/chaumian/coordinator/internal/core/domain"
)

func TestAEntrySetRoundTrip(t *testing.T) {
	set := domain.NewAEntrySet()

	entry := set.Insert("a1", []domain.UTXORef{{Outpoint: wire.OutPoint{Index: 0}, Amount: 100000}}, []byte("change"), 5000)
	require.Equal(t, "a1", entry.ID)

	found, ok := set.Find("a1")
	require.True(t, ok)
	require.Same(t, entry, found)

	_, ok = set.Find("missing")
	require.False(t, ok)

	require.Equal(t, 1, set.Len())
}

func TestAEntrySetAllConfirmed(t *testing.T) {
	set := domain.NewAEntrySet()
	e1 := set.Insert("a1", []domain.UTXORef{{Amount: 1}}, nil, 0)
	e2 := set.Insert("a2", []domain.UTXORef{{Amount: 1}}, nil, 0)

	require.False(t, set.AllConfirmed())

	e1.MarkConnectionConfirmed()
	require.False(t, set.AllConfirmed())

	e2.MarkConnectionConfirmed()
	require.True(t, set.AllConfirmed())
}

func TestAEntrySetAllConfirmedOnEmptySet(t *testing.T) {
	set := domain.NewAEntrySet()
	require.True(t, set.AllConfirmed())
}

func TestBEntrySetDeduplicatesByOutputBytes(t *testing.T) {
	set := domain.NewBEntrySet()
	set.Insert([]byte("script-a"))
	set.Insert([]byte("script-a"))
	set.Insert([]byte("script-b"))

	require.Equal(t, 2, set.Len())

	outputs := make([][]byte, 0, 2)
	for _, e := range set.All() {
		outputs = append(outputs, e.Output)
	}
	require.ElementsMatch(t, [][]byte{[]byte("script-a"), []byte("script-b")}, outputs)
}
