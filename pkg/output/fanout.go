package output

import (
	"time"

	"logrelay/pkg/model"
)

// Dispatcher matches server.Dispatcher; redeclared here so output stays a
// leaf package.
type Dispatcher interface {
	Dispatch(fields []string, creds *model.Credentials, ts time.Time, label string, priority int, flags int)
}

// FanOutDispatcher hands every entry to multiple dispatchers in order. The
// dispatch path runs on the single pipeline goroutine, so sequential delivery
// keeps entry ordering identical across sinks.
type FanOutDispatcher struct {
	dispatchers []Dispatcher
}

func NewFanOutDispatcher(dispatchers ...Dispatcher) *FanOutDispatcher {
	return &FanOutDispatcher{
		dispatchers: dispatchers,
	}
}

func (f *FanOutDispatcher) Dispatch(fields []string, creds *model.Credentials, ts time.Time, label string, priority int, flags int) {
	for _, d := range f.dispatchers {
		d.Dispatch(fields, creds, ts, label, priority, flags)
	}
}
