package ingest

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/sys/unix"
)

// DefaultSocketPath is the well-known rendezvous local senders log to.
const DefaultSocketPath = "/run/systemd/journal/dev-log"

// Socket is the local datagram rendezvous syslog datagrams arrive on. The
// descriptor is also what relay forwarding sends go out on.
type Socket struct {
	fd   int
	path string
}

// OpenSyslogSocket creates the ingestion socket at path and arms it for
// credential reception and kernel receive-timestamping. If adoptFD is >= 0 an
// already-open descriptor (socket activation) is adopted instead and merely
// switched to non-blocking.
//
// Any stale prior binding is removed first. The socket is made world-writable:
// it is a local IPC trust boundary enforced by credential passing, not by
// filesystem permissions.
func OpenSyslogSocket(path string, adoptFD int) (*Socket, error) {
	fd := adoptFD
	created := false

	if fd < 0 {
		var err error
		fd, err = unix.Socket(unix.AF_UNIX, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, 0)
		if err != nil {
			return nil, fmt.Errorf("socket() failed: %w", err)
		}
		created = true

		_ = os.Remove(path)

		if err := unix.Bind(fd, &unix.SockaddrUnix{Name: path}); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("bind(%s) failed: %w", path, err)
		}

		_ = os.Chmod(path, 0666)
	} else {
		if err := unix.SetNonblock(fd, true); err != nil {
			return nil, fmt.Errorf("failed to make adopted syslog fd non-blocking: %w", err)
		}
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_PASSCRED, 1); err != nil {
		if created {
			unix.Close(fd)
		}
		return nil, fmt.Errorf("SO_PASSCRED failed: %w", err)
	}

	if selinuxEnabled() {
		// Best-effort: the label is supplementary metadata.
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_PASSSEC, 1); err != nil {
			log.Printf("ingest: SO_PASSSEC failed, ignoring: %v", err)
		}
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_TIMESTAMP, 1); err != nil {
		if created {
			unix.Close(fd)
		}
		return nil, fmt.Errorf("SO_TIMESTAMP failed: %w", err)
	}

	return &Socket{fd: fd, path: path}, nil
}

// FD returns the underlying descriptor.
func (s *Socket) FD() int {
	return s.fd
}

// Path returns the filesystem path the socket is bound at.
func (s *Socket) Path() string {
	return s.path
}

func (s *Socket) Close() error {
	return unix.Close(s.fd)
}

func selinuxEnabled() bool {
	_, err := os.Stat("/sys/fs/selinux/enforce")
	return err == nil
}
