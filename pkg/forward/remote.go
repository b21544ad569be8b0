package forward

import (
	"log"

	"golang.org/x/sys/unix"
)

// SendRemote forwards a rendered frame to the configured remote collector, one
// frame per datagram. Sends are best-effort: delivery failures are not
// inspected, not retried and never recorded, so network health cannot
// back-pressure local processing.
func (s *State) SendRemote(frame [][]byte) {
	fd := s.maybeOpenRemote()
	if fd <= 0 {
		return
	}

	_, _ = unix.SendmsgBuffers(fd, frame, nil, s.remoteSA, unix.MSG_NOSIGNAL)
}

// maybeOpenRemote opens the remote channel on first use and keeps it for the
// process lifetime. Returns 0 when remote forwarding is disabled or the
// socket cannot be created (the latter is retried on the next send).
func (s *State) maybeOpenRemote() int {
	if s.remoteFD > 0 {
		return s.remoteFD
	}
	if s.remoteDisabled {
		return 0
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		log.Printf("forward: socket() failed for remote syslog forwarding: %v", err)
		return 0
	}

	s.remoteFD = fd
	return fd
}
