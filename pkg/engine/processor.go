package engine

import (
	"logrelay/pkg/model"
)

// Processor defines the interface for any component that transforms or filters
// parsed messages before they are dispatched and forwarded.
type Processor interface {
	// Process applies logic to the message, mutating it in place where
	// possible. It returns a bool indicating if the message should be
	// DROPPED, and any error. If drop is true, the chain stops processing
	// this message.
	Process(msg *model.Message) (bool, error)

	// Name returns the identifier of the processor (for metrics/logging).
	Name() string
}
