package model

import (
	"time"
)

// Credentials identifies the process that sent a datagram, as recovered by the
// kernel from SCM_CREDENTIALS ancillary data.
type Credentials struct {
	PID int32
	UID uint32
	GID uint32
}

// Datagram is one raw syslog datagram as received from the ingest socket,
// together with the out-of-band data the kernel attached to it.
type Datagram struct {
	// Raw is the datagram payload, already trimmed of trailing newlines and
	// NUL bytes. It is owned by the Datagram; parsed messages borrow from it.
	Raw []byte

	// Creds are the sender's credentials, nil if none were attached.
	Creds *Credentials

	// Timestamp is the kernel receive timestamp (SO_TIMESTAMP), or the time
	// the datagram was read if the kernel didn't provide one.
	Timestamp time.Time

	// Label is the sender's security label (SCM_SECURITY), empty if absent.
	Label string
}

// Message is a parsed syslog message flowing through the processor chain.
// The byte fields are subslices of the originating Datagram's Raw buffer
// unless a processor replaced them; the Datagram must outlive the Message.
type Message struct {
	// Priority is the combined facility/severity value from the <NNN> header,
	// after facility fixup.
	Priority int

	// Identifier is the syslog tag (the token before the colon), nil if the
	// datagram carried no recognizable header.
	Identifier []byte

	// PID is the process id embedded in the identifier ("app[123]:"), 0 if
	// absent or non-numeric.
	PID int

	// Hostname is the RFC3164 hostname token, present only when the datagram
	// carried a network-format header (date, hostname, then tag).
	Hostname []byte

	// Text is the message body with the legacy header stripped.
	Text []byte

	Creds     *Credentials
	Timestamp time.Time
	Label     string
}

// Severity returns the 3-bit severity part of the priority.
func (m *Message) Severity() int {
	return m.Priority & 0x07
}

// Facility returns the facility part of the priority.
func (m *Message) Facility() int {
	return (m.Priority & 0x03f8) >> 3
}
