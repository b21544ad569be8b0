package ingest

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// PollLoop is a minimal poll(2)-based readiness loop. Registration happens
// before Run; the loop itself is single-threaded and dispatches callbacks on
// its own goroutine.
type PollLoop struct {
	fds []unix.PollFd
	cbs []func()
}

func NewPollLoop() *PollLoop {
	return &PollLoop{}
}

// AddRead registers fn to be called when fd becomes readable.
func (l *PollLoop) AddRead(fd int, fn func()) error {
	if fd < 0 {
		return fmt.Errorf("invalid fd %d", fd)
	}
	l.fds = append(l.fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
	l.cbs = append(l.cbs, fn)
	return nil
}

// Run dispatches readiness callbacks until the context is cancelled. The poll
// timeout bounds how long cancellation can go unnoticed.
func (l *PollLoop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := unix.Poll(l.fds, 200)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("poll failed: %w", err)
		}
		if n == 0 {
			continue
		}

		for i := range l.fds {
			if l.fds[i].Revents&(unix.POLLIN|unix.POLLERR|unix.POLLHUP) != 0 {
				l.cbs[i]()
			}
			l.fds[i].Revents = 0
		}
	}
}
