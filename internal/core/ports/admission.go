package ports

import "github.com/chaumian/coordinator/internal/core/domain"

// AdmissionHook is a pluggable anti-Sybil check run before an A-entry is
// admitted to the round. The core treats admission policy as entirely
// external; a nil hook admits everyone.
type AdmissionHook interface {
	AdmitA(inputs []domain.UTXORef) error
}
