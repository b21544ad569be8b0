package engine

import (
	"bytes"

	"logrelay/pkg/model"
)

// FilterProcessor drops messages whose text contains any of the configured
// block words.
type FilterProcessor struct {
	name       string
	blockBytes [][]byte // Pre-converted to bytes for zero-alloc comparison
}

func NewFilterProcessor(name string, blockWords []string) *FilterProcessor {
	bb := make([][]byte, len(blockWords))
	for i, w := range blockWords {
		bb[i] = []byte(w)
	}
	return &FilterProcessor{
		name:       name,
		blockBytes: bb,
	}
}

func (f *FilterProcessor) Name() string {
	return f.name
}

func (f *FilterProcessor) Process(msg *model.Message) (bool, error) {
	for _, word := range f.blockBytes {
		if bytes.Contains(msg.Text, word) {
			return true, nil // DROP
		}
	}
	return false, nil
}
