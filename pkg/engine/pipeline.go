package engine

import (
	"context"
	"log"
	"time"

	"logrelay/pkg/model"
)

// Handler consumes datagrams popped off the ring buffer. The server implements
// it; the pipeline stays ignorant of parsing and forwarding.
type Handler interface {
	// HandleDatagram processes one datagram to completion.
	HandleDatagram(dg *model.Datagram)

	// Housekeeping runs periodic maintenance (loss-warning throttle etc.).
	Housekeeping(now time.Time)
}

// Pipeline connects the ingest RingBuffer to the Handler. It is the single
// consumer: all parsing, dispatch and forwarding run on its one goroutine, so
// the handler needs no locking around its forwarding state.
type Pipeline struct {
	buffer  *RingBuffer
	handler Handler

	// housekeepingInterval drives Handler.Housekeeping.
	housekeepingInterval time.Duration
}

func NewPipeline(buf *RingBuffer, handler Handler) *Pipeline {
	return &Pipeline{
		buffer:               buf,
		handler:              handler,
		housekeepingInterval: time.Second,
	}
}

func (p *Pipeline) Start(ctx context.Context) {
	log.Println("Starting processing pipeline...")
	go p.worker(ctx)
}

func (p *Pipeline) worker(ctx context.Context) {
	ticker := time.NewTicker(p.housekeepingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			p.handler.Housekeeping(now)
		default:
			dg := p.buffer.Pop()
			if dg == nil {
				// Buffer empty, tiny sleep to save CPU.
				time.Sleep(time.Millisecond)
				continue
			}
			p.handler.HandleDatagram(dg)
		}
	}
}
