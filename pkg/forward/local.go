package forward

import (
	"errors"
	"log"

	"golang.org/x/sys/unix"

	"logrelay/pkg/model"
)

// SendLocal forwards a rendered frame to the local syslog relay, with the
// sender's credentials attached as ancillary data when supplied. The outcome
// is never surfaced to the caller: forwarding must not block or delay log
// ingestion, so every failure path resolves in bounded work.
//
// Bounded retry contract: one attempt with the original credentials, and on a
// permission or vanished-sender failure exactly one more with our own pid
// substituted. Backpressure on either attempt is accounted in the missed
// counter; a missing sink is silently ignored.
func (s *State) SendLocal(frame [][]byte, creds *model.Credentials) {
	err := s.transmit(frame, creds)
	if err == nil {
		return
	}

	// The relay is too slow to drain its socket; don't wait for it.
	if errors.Is(err, unix.EAGAIN) {
		s.missed.Add(1)
		return
	}

	if creds != nil && (errors.Is(err, unix.ESRCH) || errors.Is(err, unix.EPERM)) {
		// The sender has presumably vanished by now, or we lack the
		// privilege to pass its pid along. Substitute our own and retry.
		own := *creds
		own.PID = int32(s.ownPID)

		err = s.transmit(frame, &own)
		if err == nil {
			return
		}
		if errors.Is(err, unix.EAGAIN) {
			s.missed.Add(1)
			return
		}
	}

	// Nobody listening at the relay is an expected operating condition.
	if !errors.Is(err, unix.ENOENT) {
		log.Printf("forward: failed to forward syslog message: %v", err)
	}
}

func (s *State) transmitLocal(frame [][]byte, creds *model.Credentials) error {
	var oob []byte
	if creds != nil {
		oob = unix.UnixCredentials(&unix.Ucred{
			Pid: creds.PID,
			Uid: creds.UID,
			Gid: creds.GID,
		})
	}

	_, err := unix.SendmsgBuffers(s.localFD, frame, oob, s.relayAddr, unix.MSG_NOSIGNAL)
	return err
}
