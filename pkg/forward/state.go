package forward

import (
	"log"
	"net"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"logrelay/pkg/model"
)

// Diagnostics receives aggregate operator-facing events that should not go
// through the regular per-message path.
type Diagnostics interface {
	Emit(id, format string, args ...interface{})
}

// LogDiagnostics emits diagnostics through the standard logger.
type LogDiagnostics struct{}

func (LogDiagnostics) Emit(id, format string, args ...interface{}) {
	log.Printf("[%s] "+format, append([]interface{}{id}, args...)...)
}

// transmitFunc performs one datagram send of a frame with optional sender
// credentials. It is a field so tests can exercise the retry contract without
// a socket.
type transmitFunc func(frame [][]byte, creds *model.Credentials) error

// State holds the forwarding side of the server: the destination handles for
// the local relay and the remote collector, and the loss accounting. The relay
// send reuses the ingest socket fd; the remote fd is opened lazily on first
// use and kept for the process lifetime.
//
// All sends run on the single pipeline goroutine; the missed counter is
// atomic only so housekeeping metrics can be read from elsewhere.
type State struct {
	localFD   int
	relayAddr *unix.SockaddrUnix
	transmit  transmitFunc
	ownPID    int

	remoteFD       int
	remoteSA       unix.Sockaddr
	remoteDisabled bool

	missed   atomic.Uint64
	lastWarn time.Time

	diag Diagnostics
}

// NewState creates the forwarding state. localFD is the ingest socket the
// relay sends go out on; relayPath is the local rendezvous the syslog daemon
// listens at; remoteTarget is an optional "host:port" IPv4 endpoint, empty to
// disable remote forwarding.
func NewState(localFD int, relayPath, remoteTarget string, diag Diagnostics) *State {
	if diag == nil {
		diag = LogDiagnostics{}
	}
	s := &State{
		localFD:   localFD,
		relayAddr: &unix.SockaddrUnix{Name: relayPath},
		ownPID:    os.Getpid(),
		diag:      diag,
	}
	s.transmit = s.transmitLocal
	s.configureRemote(remoteTarget)
	return s
}

// configureRemote validates the remote target up front so that a misconfigured
// endpoint is warned about exactly once, not per message.
func (s *State) configureRemote(target string) {
	s.remoteDisabled = true
	if target == "" {
		return
	}

	addr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		log.Printf("forward: unresolvable remote syslog target %q, ignoring: %v", target, err)
		return
	}
	ip4 := addr.IP.To4()
	if ip4 == nil {
		log.Printf("forward: non-IPv4 remote syslog target configured, ignoring: %s", target)
		return
	}

	sa := &unix.SockaddrInet4{Port: addr.Port}
	copy(sa.Addr[:], ip4)
	s.remoteSA = sa
	s.remoteDisabled = false
	log.Printf("forward: remote syslog forwarding target configured: %s", addr)
}
