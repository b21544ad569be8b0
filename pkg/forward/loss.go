package forward

import (
	"time"
)

// MessageForwardMissedID tags the aggregate loss warning. The value is the
// well-known FORWARD_SYSLOG_MISSED message id, kept so existing operator
// tooling keyed on it keeps matching.
const MessageForwardMissedID = "0027229ca0644181a76c4e92458afa2e"

// WarnMissedInterval is the minimum spacing between loss warnings.
const WarnMissedInterval = 30 * time.Second

// Missed reports how many relay sends have been dropped to backpressure since
// the last warning.
func (s *State) Missed() uint64 {
	return s.missed.Load()
}

// MaybeWarnMissed emits one aggregate diagnostic if relay sends were dropped
// and the previous warning is old enough, then resets the counter. If the
// window hasn't elapsed the counter is left alone so loss keeps accumulating.
// It has no timer of its own; the pipeline's housekeeping tick drives it.
func (s *State) MaybeWarnMissed(now time.Time) {
	n := s.missed.Load()
	if n == 0 {
		return
	}

	if now.Sub(s.lastWarn) < WarnMissedInterval {
		return
	}

	s.diag.Emit(MessageForwardMissedID, "Forwarding to syslog missed %d messages.", n)
	s.missed.Store(0)
	s.lastWarn = now
}
