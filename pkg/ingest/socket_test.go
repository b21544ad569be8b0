package ingest

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"logrelay/pkg/engine"
	"logrelay/pkg/model"
)

func TestOpenSyslogSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev-log")

	sock, err := OpenSyslogSocket(path, -1)
	if err != nil {
		t.Fatalf("OpenSyslogSocket failed: %v", err)
	}
	defer sock.Close()

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("socket file missing: %v", err)
	}
	if fi.Mode().Type() != os.ModeSocket {
		t.Errorf("mode = %v, want socket", fi.Mode())
	}
	if perm := fi.Mode().Perm(); perm != 0666 {
		t.Errorf("perm = %o, want 0666", perm)
	}

	v, err := unix.GetsockoptInt(sock.FD(), unix.SOL_SOCKET, unix.SO_PASSCRED)
	if err != nil || v != 1 {
		t.Errorf("SO_PASSCRED = %d (err %v), want 1", v, err)
	}
	v, err = unix.GetsockoptInt(sock.FD(), unix.SOL_SOCKET, unix.SO_TIMESTAMP)
	if err != nil || v != 1 {
		t.Errorf("SO_TIMESTAMP = %d (err %v), want 1", v, err)
	}

	if sock.Path() != path {
		t.Errorf("Path() = %q", sock.Path())
	}
}

func TestOpenSyslogSocketReplacesStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev-log")

	first, err := OpenSyslogSocket(path, -1)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	first.Close()

	// A second open over the leftover inode must succeed.
	second, err := OpenSyslogSocket(path, -1)
	if err != nil {
		t.Fatalf("reopen over stale socket failed: %v", err)
	}
	second.Close()
}

func TestOpenSyslogSocketAdoptsFD(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev-log")

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_DGRAM, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		t.Fatal(err)
	}

	sock, err := OpenSyslogSocket(path, fd)
	if err != nil {
		t.Fatalf("adoption failed: %v", err)
	}
	defer sock.Close()

	if sock.FD() != fd {
		t.Errorf("FD() = %d, want adopted %d", sock.FD(), fd)
	}
	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_PASSCRED)
	if err != nil || v != 1 {
		t.Errorf("SO_PASSCRED = %d (err %v) on adopted fd", v, err)
	}
}

// End to end: a datagram written by a plain unixgram client comes out of the
// ring buffer trimmed, with the sender's credentials attached.
func TestIngestorDeliversDatagram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev-log")

	sock, err := OpenSyslogSocket(path, -1)
	if err != nil {
		t.Fatalf("OpenSyslogSocket failed: %v", err)
	}
	defer sock.Close()

	buffer, err := engine.NewRingBuffer(16)
	if err != nil {
		t.Fatal(err)
	}
	ingestor := NewSyslogIngestor(sock, buffer)

	loop := NewPollLoop()
	if err := ingestor.Register(loop); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	conn, err := net.Dial("unixgram", path)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("<13>hello from test\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var dg *model.Datagram
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if dg = buffer.Pop(); dg != nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if dg == nil {
		t.Fatal("datagram never reached the ring buffer")
	}

	if string(dg.Raw) != "<13>hello from test" {
		t.Errorf("raw = %q, want trailing newline trimmed", dg.Raw)
	}
	if dg.Creds == nil {
		t.Fatal("sender credentials missing")
	}
	if int(dg.Creds.PID) != os.Getpid() {
		t.Errorf("creds pid = %d, want %d", dg.Creds.PID, os.Getpid())
	}
	if dg.Creds.UID != uint32(os.Getuid()) {
		t.Errorf("creds uid = %d, want %d", dg.Creds.UID, os.Getuid())
	}
	if dg.Timestamp.IsZero() {
		t.Error("receive timestamp missing")
	}
}

func TestParseControlCredentials(t *testing.T) {
	oob := unix.UnixCredentials(&unix.Ucred{Pid: 42, Uid: 1000, Gid: 1000})

	dg := &model.Datagram{}
	parseControl(oob, dg)

	if dg.Creds == nil {
		t.Fatal("credentials not recovered")
	}
	if dg.Creds.PID != 42 || dg.Creds.UID != 1000 || dg.Creds.GID != 1000 {
		t.Errorf("creds = %+v", dg.Creds)
	}
}

func TestParseControlGarbageIgnored(t *testing.T) {
	dg := &model.Datagram{}
	parseControl([]byte{0x01, 0x02, 0x03}, dg)

	if dg.Creds != nil || dg.Label != "" {
		t.Errorf("garbage control data produced %+v", dg)
	}
}
