package syslog

import (
	"bytes"
	"errors"
	"strconv"
)

// Fragment indices of a rendered frame, in wire order. The order is fixed and
// never reordered.
const (
	fragPriVer = iota
	fragTimestamp
	fragHostname
	fragSpHostname
	fragAppName
	fragSpAppName
	fragProcID
	fragMsgID
	fragStructData
	fragMessage

	// FrameFragments is the fixed fragment count of a rendered frame.
	FrameFragments = fragMessage + 1
)

// ErrFrameCapacity is returned when the caller-supplied fragment slice cannot
// hold a full frame.
var ErrFrameCapacity = errors.New("syslog: frame needs capacity for 10 fragments")

var (
	space      = []byte(" ")
	nullField  = []byte("- ")
	structData = []byte(" - ")
	timeLayout = "2006-01-02T15:04:05-0700 "
	hostPrefix = []byte("_HOSTNAME=")
)

// FillFrame renders the record into frame[0:FrameFragments] and returns the
// number of fragments filled. The fragments borrow from the record's scratch
// buffers and its text fields; nothing is copied, so the record must outlive
// every send that references the frame.
//
// The record's priority is clamped to the valid RFC5424 range first: 3-bit
// severity, facility limited to 0..23.
func (r *Record) FillFrame(frame [][]byte) (int, error) {
	if len(frame) < FrameFragments {
		return 0, ErrFrameCapacity
	}

	if r.Priority>>3 > 23 {
		r.Priority = r.Priority&SeverityMask | 23<<3
	}

	// priority and version
	b := append(r.priver[:0], '<')
	b = strconv.AppendInt(b, int64(r.Priority), 10)
	b = append(b, '>', '1', ' ')
	frame[fragPriVer] = b

	if r.Timestamp.IsZero() {
		frame[fragTimestamp] = nullField
	} else {
		frame[fragTimestamp] = r.Timestamp.AppendFormat(r.timestamp[:0], timeLayout)
	}

	// The hostname may have been sourced from a structured key-value store;
	// strip the key prefix if so.
	frame[fragHostname] = bytes.TrimPrefix(r.Hostname, hostPrefix)
	frame[fragSpHostname] = space
	frame[fragAppName] = r.AppName
	frame[fragSpAppName] = space

	if r.ProcID != 0 {
		b = append(r.procid[:0], '[')
		b = strconv.AppendInt(b, int64(r.ProcID), 10)
		b = append(b, ']', ':', ' ')
		frame[fragProcID] = b
	} else {
		frame[fragProcID] = nullField
	}

	frame[fragMsgID] = r.MsgID
	frame[fragStructData] = structData
	frame[fragMessage] = r.Message

	return FrameFragments, nil
}
