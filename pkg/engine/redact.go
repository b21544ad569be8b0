package engine

import (
	"bytes"

	"logrelay/pkg/model"
)

// RedactionProcessor replaces occurrences of a target string in the message
// text with a mask.
type RedactionProcessor struct {
	name   string
	target []byte
	mask   []byte
}

func NewRedactionProcessor(name string, target string, mask string) *RedactionProcessor {
	return &RedactionProcessor{
		name:   name,
		target: []byte(target),
		mask:   []byte(mask),
	}
}

func (r *RedactionProcessor) Name() string {
	return r.name
}

func (r *RedactionProcessor) Process(msg *model.Message) (bool, error) {
	if bytes.Contains(msg.Text, r.target) {
		// ReplaceAll allocates a new slice, which also detaches the text from
		// the datagram buffer; that is fine, the Message owns it from here.
		msg.Text = bytes.ReplaceAll(msg.Text, r.target, r.mask)
	}
	return false, nil
}
