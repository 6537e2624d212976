package ports

import "github.com/chaumian/coordinator/internal/core/domain"

// PhaseBroadcaster pushes phase-change notifications to connected
// clients. The coordinator core only ever publishes; how the event
// reaches a client (websocket, SSE, gRPC stream...) is outside its
// concern.
type PhaseBroadcaster interface {
	Publish(event domain.PhaseChangeEvent)
}
