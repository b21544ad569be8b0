package server

import (
	"log"
	"strconv"
	"sync/atomic"
	"time"

	"logrelay/pkg/engine"
	"logrelay/pkg/model"
	"logrelay/pkg/syslog"
)

// Dispatcher persists parsed log entries as structured fields. It is the
// journal-storage collaborator; this core only hands results outward.
type Dispatcher interface {
	Dispatch(fields []string, creds *model.Credentials, ts time.Time, label string, priority int, flags int)
}

// StreamForwarder mirrors the kernel-log, console and wall-broadcast
// forwarders. External collaborators; nil disables them regardless of flags.
type StreamForwarder interface {
	ForwardKmsg(priority int, identifier, message string, creds *model.Credentials)
	ForwardConsole(priority int, identifier, message string, creds *model.Credentials)
	ForwardWall(priority int, identifier, message string, creds *model.Credentials)
}

// Relay is the forwarding subsystem the server hands rendered frames to.
// Implemented by forward.State.
type Relay interface {
	SendLocal(frame [][]byte, creds *model.Credentials)
	SendRemote(frame [][]byte)
	MaybeWarnMissed(now time.Time)
}

// Options are the runtime-adjustable forwarding switches. They are swapped
// atomically as a unit so the control plane can update them while the
// pipeline runs.
type Options struct {
	ForwardToSyslog  bool
	ForwardToRemote  bool
	ForwardToKmsg    bool
	ForwardToConsole bool
	ForwardToWall    bool

	// MaxLevel is the highest severity ForwardSyslog will forward.
	MaxLevel int
}

// Server ties the syslog ingestion pipeline together: it parses raw
// datagrams, runs them through the processor chain, builds structured fields
// for the dispatcher and RFC5424 frames for the relay. It implements
// engine.Handler; all of its work runs on the single pipeline goroutine.
type Server struct {
	// hostname may carry a "_HOSTNAME=" key prefix when sourced from a
	// structured store; the frame synthesizer strips it on emission.
	hostname []byte

	relay    Relay
	dispatch Dispatcher
	streams  StreamForwarder
	comm     func(pid int) string

	opts  atomic.Pointer[Options]
	chain atomic.Pointer[engine.ProcessorChain]
}

func New(hostname string, relay Relay, dispatch Dispatcher, opts Options) *Server {
	s := &Server{
		hostname: []byte(hostname),
		relay:    relay,
		dispatch: dispatch,
	}
	s.opts.Store(&opts)
	return s
}

// SetStreamForwarder wires the kmsg/console/wall collaborator.
func (s *Server) SetStreamForwarder(f StreamForwarder) {
	s.streams = f
}

// SetCommLookup wires the process command-name lookup used when an
// internally-forwarded message has credentials but no identifier.
func (s *Server) SetCommLookup(fn func(pid int) string) {
	s.comm = fn
}

// UpdateOptions hot-swaps the forwarding switches.
func (s *Server) UpdateOptions(opts Options) {
	s.opts.Store(&opts)
}

// Options returns the current forwarding switches.
func (s *Server) Options() Options {
	return *s.opts.Load()
}

// UpdateChain hot-swaps the processor chain.
func (s *Server) UpdateChain(chain *engine.ProcessorChain) {
	s.chain.Store(chain)
	log.Println("server: processor chain hot-swapped")
}

// HandleDatagram processes one raw syslog datagram to completion: header
// parsing, the processor chain, structured-field dispatch, and forwarding.
// Malformed headers are never fatal; unrecognized prefixes stay part of the
// message body.
func (s *Server) HandleDatagram(dg *model.Datagram) {
	buf := dg.Raw

	priority := syslog.DefaultPriority
	if p, rest, ok := syslog.ParsePriority(buf); ok {
		priority, buf = p, rest
	}
	priority = syslog.FixupFacility(priority)

	afterDate := syslog.SkipDate(buf)
	hadDate := len(afterDate) != len(buf)
	buf = afterDate

	identifier, pidText, rest := syslog.ParseIdentifier(buf)

	// A datagram in network format carries a hostname between the date and
	// the tag. If the tag parse failed right after a date, retry past one
	// plain token and treat it as the hostname.
	var hostname []byte
	if identifier == nil && hadDate {
		if tok, after := syslog.NextToken(buf); tok != nil {
			if id, pid, r := syslog.ParseIdentifier(after); id != nil {
				hostname, identifier, pidText, rest = tok, id, pid, r
			}
		}
	}
	buf = rest

	msg := &model.Message{
		Priority:   priority,
		Identifier: identifier,
		Hostname:   hostname,
		Text:       buf,
		Creds:      dg.Creds,
		Timestamp:  dg.Timestamp,
		Label:      dg.Label,
	}
	if len(pidText) > 0 {
		if pid, err := strconv.Atoi(string(pidText)); err == nil && pid > 0 {
			msg.PID = pid
		}
	}

	if chain := s.chain.Load(); chain != nil {
		drop, err := chain.Process(msg)
		if err != nil {
			log.Printf("server: processor error: %v", err)
		}
		if drop {
			return
		}
	}

	opts := s.opts.Load()

	if s.streams != nil {
		if opts.ForwardToKmsg {
			s.streams.ForwardKmsg(msg.Priority, string(msg.Identifier), string(msg.Text), msg.Creds)
		}
		if opts.ForwardToConsole {
			s.streams.ForwardConsole(msg.Priority, string(msg.Identifier), string(msg.Text), msg.Creds)
		}
		if opts.ForwardToWall {
			s.streams.ForwardWall(msg.Priority, string(msg.Identifier), string(msg.Text), msg.Creds)
		}
	}

	s.dispatchMessage(msg)
	s.forwardMessage(msg, opts)
}

// dispatchMessage hands the parsed message outward as ordered KEY=value
// fields.
func (s *Server) dispatchMessage(msg *model.Message) {
	if s.dispatch == nil {
		return
	}

	fields := make([]string, 0, 6)
	fields = append(fields, "_TRANSPORT=syslog")
	fields = append(fields, "PRIORITY="+strconv.Itoa(msg.Severity()))
	if msg.Priority&syslog.FacilityMask != 0 {
		fields = append(fields, "SYSLOG_FACILITY="+strconv.Itoa(msg.Facility()))
	}
	if msg.Identifier != nil {
		fields = append(fields, "SYSLOG_IDENTIFIER="+string(msg.Identifier))
	}
	if msg.PID > 0 {
		fields = append(fields, "SYSLOG_PID="+strconv.Itoa(msg.PID))
	}
	fields = append(fields, "MESSAGE="+string(msg.Text))

	s.dispatch.Dispatch(fields, msg.Creds, msg.Timestamp, msg.Label, msg.Priority, 0)
}

// forwardMessage rebuilds the message as an RFC5424 frame and hands it to the
// enabled sinks. The record and frame live on this stack for the duration of
// the sends, which keeps the borrowed fragments valid.
func (s *Server) forwardMessage(msg *model.Message, opts *Options) {
	if !opts.ForwardToSyslog && !opts.ForwardToRemote {
		return
	}

	rec := syslog.NewRecord()
	rec.Priority = msg.Priority

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	rec.Timestamp = ts.Local()

	switch {
	case msg.Hostname != nil:
		rec.Hostname = msg.Hostname
	case len(s.hostname) > 0:
		rec.Hostname = s.hostname
	}
	if msg.Identifier != nil {
		rec.AppName = msg.Identifier
	}
	rec.ProcID = msg.PID
	if msg.Text != nil {
		rec.Message = msg.Text
	}

	var frame [syslog.FrameFragments][]byte
	n, err := rec.FillFrame(frame[:])
	if err != nil {
		return
	}

	if opts.ForwardToSyslog {
		s.relay.SendLocal(frame[:n], msg.Creds)
	}
	if opts.ForwardToRemote {
		s.relay.SendRemote(frame[:n])
	}
}

// ForwardSyslog forwards an internally-synthesized message (not one that
// arrived on the ingest socket): the daemon's own notices, or entries other
// subsystems want mirrored to syslog. Gated by the configured maximum level.
func (s *Server) ForwardSyslog(priority int, identifier, message string, creds *model.Credentials, ts time.Time) {
	opts := s.opts.Load()
	if priority&syslog.SeverityMask > opts.MaxLevel {
		return
	}

	rec := syslog.NewRecord()
	rec.Priority = priority

	if ts.IsZero() {
		ts = time.Now()
	}
	rec.Timestamp = ts.Local()

	if len(s.hostname) > 0 {
		rec.Hostname = s.hostname
	}

	if creds != nil {
		if identifier == "" && s.comm != nil {
			identifier = s.comm(int(creds.PID))
		}
		rec.ProcID = int(creds.PID)
	}
	if identifier != "" {
		rec.AppName = []byte(identifier)
	}
	rec.Message = []byte(message)

	var frame [syslog.FrameFragments][]byte
	n, err := rec.FillFrame(frame[:])
	if err != nil {
		return
	}

	if opts.ForwardToSyslog {
		s.relay.SendLocal(frame[:n], creds)
	}
	if opts.ForwardToRemote {
		s.relay.SendRemote(frame[:n])
	}
}

// Housekeeping runs the periodic maintenance the pipeline tick drives.
func (s *Server) Housekeeping(now time.Time) {
	s.relay.MaybeWarnMissed(now)
}
