package engine

import (
	"logrelay/pkg/model"
)

// ProcessorChain manages a sequential list of processors.
type ProcessorChain struct {
	processors []Processor
}

// NewProcessorChain creates a chain with the given list of processors.
func NewProcessorChain(processors ...Processor) *ProcessorChain {
	return &ProcessorChain{
		processors: processors,
	}
}

// Process runs the message through all processors in the chain.
// It stops if a processor returns drop=true or an error.
func (c *ProcessorChain) Process(msg *model.Message) (bool, error) {
	for _, p := range c.processors {
		drop, err := p.Process(msg)
		if err != nil {
			return false, err
		}
		if drop {
			return true, nil
		}
	}

	return false, nil
}
