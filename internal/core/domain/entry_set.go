package domain

import (
	"sync"

	"github.com/btcsuite/btcd/btcutil"
)

// AEntrySet is an insertion-ordered set of A-entries, deduplicated by ID,
// safe for concurrent registration and lookup.
type AEntrySet struct {
	lock    sync.RWMutex
	byID    map[string]*AEntry
	ordered []string
}

func NewAEntrySet() *AEntrySet {
	return &AEntrySet{
		byID: make(map[string]*AEntry),
	}
}

// Insert creates and stores a new A-entry, returning it. If an entry with
// the same ID already exists, that entry is returned unchanged.
func (s *AEntrySet) Insert(id string, inputs []UTXORef, changeOutput []byte, changeAmount btcutil.Amount) *AEntry {
	s.lock.Lock()
	defer s.lock.Unlock()

	if existing, ok := s.byID[id]; ok {
		return existing
	}
	entry := newAEntry(id, inputs, changeOutput, changeAmount)
	s.byID[id] = entry
	s.ordered = append(s.ordered, id)
	return entry
}

// Find returns the entry with the given ID, or false if none exists.
func (s *AEntrySet) Find(id string) (*AEntry, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	e, ok := s.byID[id]
	return e, ok
}

// Len returns the number of registered A-entries.
func (s *AEntrySet) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.ordered)
}

// All returns the entries in insertion order.
func (s *AEntrySet) All() []*AEntry {
	s.lock.RLock()
	defer s.lock.RUnlock()

	entries := make([]*AEntry, 0, len(s.ordered))
	for _, id := range s.ordered {
		entries = append(entries, s.byID[id])
	}
	return entries
}

// AllConfirmed reports whether every registered A-entry has reached
// ConnectionConfirmed or beyond.
func (s *AEntrySet) AllConfirmed() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, id := range s.ordered {
		if s.byID[id].State() == Registered {
			return false
		}
	}
	return true
}

// BEntrySet is an insertion-ordered set of B-entries, deduplicated by the
// bytes of the claimed output script.
type BEntrySet struct {
	lock    sync.RWMutex
	byKey   map[string]*BEntry
	ordered []string
}

func NewBEntrySet() *BEntrySet {
	return &BEntrySet{
		byKey: make(map[string]*BEntry),
	}
}

// Insert appends a B-entry, silently dropping the request if the output
// bytes have already been registered this round.
func (s *BEntrySet) Insert(output []byte) {
	s.lock.Lock()
	defer s.lock.Unlock()

	key := string(output)
	if _, ok := s.byKey[key]; ok {
		return
	}
	s.byKey[key] = &BEntry{Output: output}
	s.ordered = append(s.ordered, key)
}

// Len returns the number of registered B-entries.
func (s *BEntrySet) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.ordered)
}

// All returns the entries in insertion order.
func (s *BEntrySet) All() []*BEntry {
	s.lock.RLock()
	defer s.lock.RUnlock()

	entries := make([]*BEntry, 0, len(s.ordered))
	for _, key := range s.ordered {
		entries = append(entries, s.byKey[key])
	}
	return entries
}
