// Package broadcaster adapts the scheduler's phase-change events to a
// Go channel any number of consumers can drain.
package broadcaster

import (
	"github.com/chaumian/coordinator/internal/core/domain"
)

// ChannelBroadcaster fans phase-change events out over a buffered
// channel, the in-process equivalent of the teacher's eventsCh pattern.
// Publish never blocks: a full channel drops the event rather than
// stalling the scheduler, since a slow or absent consumer must never
// hold up round progress.
type ChannelBroadcaster struct {
	events chan domain.PhaseChangeEvent
}

// New creates a ChannelBroadcaster with the given buffer size.
func New(buffer int) *ChannelBroadcaster {
	return &ChannelBroadcaster{events: make(chan domain.PhaseChangeEvent, buffer)}
}

// Events returns the channel consumers should range over.
func (b *ChannelBroadcaster) Events() <-chan domain.PhaseChangeEvent {
	return b.events
}

// Publish implements ports.PhaseBroadcaster.
func (b *ChannelBroadcaster) Publish(event domain.PhaseChangeEvent) {
	select {
	case b.events <- event:
	default:
	}
}
