package syslog

import (
	"time"
)

// dash is the RFC5424 null-field value shared by all defaulted fragments.
var dash = []byte("-")

// Record is the in-memory representation of one outgoing syslog message. It is
// built fresh per message, filled field by field, consumed once by FillFrame
// and then discarded; it is never shared across messages or goroutines.
//
// The text fields are borrowed views (typically subslices of the datagram that
// produced the message); the rendered fragments in turn borrow from the Record's
// scratch buffers. Both the Record and the borrowed text must outlive any send
// that references the frame.
type Record struct {
	// Priority is the combined facility/severity value, 0..191 after
	// clamping. FillFrame clamps out-of-range facilities to 23.
	Priority int

	// Timestamp is the message time in the zone it should be rendered in.
	// The zero value renders as the null field.
	Timestamp time.Time

	Hostname []byte
	AppName  []byte
	MsgID    []byte

	// ProcID is the originating process id; 0 means absent.
	ProcID int

	Message []byte

	// Fixed-capacity scratch backing the rendered fragments. "<191>1 " needs
	// 7 bytes, the timestamp layout 25, "[<pid>]: " at most 23 for a 64-bit
	// pid.
	priver    [8]byte
	timestamp [32]byte
	procid    [32]byte
}

// NewRecord returns a Record with every field at its RFC5424 null default:
// priority user.info, no pid, and "-" for each text field.
func NewRecord() Record {
	return Record{
		Priority: DefaultPriority,
		Hostname: dash,
		AppName:  dash,
		MsgID:    dash,
		Message:  dash,
	}
}
