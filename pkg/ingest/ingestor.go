package ingest

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sys/unix"

	"logrelay/pkg/engine"
	"logrelay/pkg/model"
)

// SCM_SECURITY is not exported by x/sys/unix.
const scmSecurity = 0x3

// EventLoop is the external reactor that delivers readable-socket
// notifications. cmd/logrelay wires a PollLoop; any host loop will do.
type EventLoop interface {
	AddRead(fd int, fn func()) error
}

// SyslogIngestor reads raw syslog datagrams off the ingestion socket and
// pushes them to the ring buffer, recovering the sender credentials, the
// kernel receive timestamp and the security label from ancillary data.
type SyslogIngestor struct {
	sock   *Socket
	buffer *engine.RingBuffer

	// Reused between datagrams; payloads are copied out before reuse.
	buf []byte
	oob []byte
}

func NewSyslogIngestor(sock *Socket, buffer *engine.RingBuffer) *SyslogIngestor {
	return &SyslogIngestor{
		sock:   sock,
		buffer: buffer,
		buf:    make([]byte, 65536),
		oob:    make([]byte, 512),
	}
}

// Register arms the ingestor on the event loop. Failure to register leaves the
// daemon unable to ingest syslog at all, so it is propagated as a hard error.
func (si *SyslogIngestor) Register(loop EventLoop) error {
	if err := loop.AddRead(si.sock.FD(), si.readReady); err != nil {
		return fmt.Errorf("failed to add syslog socket to event loop: %w", err)
	}
	return nil
}

// readReady ingests one datagram per readiness notification.
func (si *SyslogIngestor) readReady() {
	n, oobn, _, _, err := unix.Recvmsg(si.sock.FD(), si.buf, si.oob, 0)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return
		}
		log.Printf("ingest: recvmsg failed: %v", err)
		return
	}

	dg := &model.Datagram{Timestamp: time.Now()}
	parseControl(si.oob[:oobn], dg)

	raw := si.buf[:n]
	for len(raw) > 0 && (raw[len(raw)-1] == '\n' || raw[len(raw)-1] == 0) {
		raw = raw[:len(raw)-1]
	}
	// Copy: the read buffer is reused for the next datagram.
	dg.Raw = append([]byte(nil), raw...)

	// On buffer full, silently drop (tail drop strategy).
	_ = si.buffer.Push(dg)
}

// parseControl recovers credentials, receive timestamp and security label
// from the datagram's ancillary data. Anything unparseable is ignored; the
// datagram is still processed.
func parseControl(oob []byte, dg *model.Datagram) {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return
	}

	for i := range msgs {
		m := &msgs[i]
		if m.Header.Level != unix.SOL_SOCKET {
			continue
		}

		switch m.Header.Type {
		case unix.SCM_CREDENTIALS:
			if uc, err := unix.ParseUnixCredentials(m); err == nil {
				dg.Creds = &model.Credentials{PID: uc.Pid, UID: uc.Uid, GID: uc.Gid}
			}
		case unix.SCM_TIMESTAMP:
			// struct timeval, native byte order
			if len(m.Data) >= 16 {
				sec := int64(binary.NativeEndian.Uint64(m.Data[0:8]))
				usec := int64(binary.NativeEndian.Uint64(m.Data[8:16]))
				dg.Timestamp = time.Unix(sec, usec*1000)
			}
		case scmSecurity:
			dg.Label = string(bytes.TrimRight(m.Data, "\x00"))
		}
	}
}
