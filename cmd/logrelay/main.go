package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"logrelay/pkg/config"
	"logrelay/pkg/control"
	"logrelay/pkg/engine"
	"logrelay/pkg/forward"
	"logrelay/pkg/ingest"
	"logrelay/pkg/output"
	"logrelay/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	log.Println("Initializing logrelay...")

	// 1. Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	hostname := cfg.Syslog.Hostname
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	// 2. Ingestion socket (fatal if it can't be created or armed)
	sock, err := ingest.OpenSyslogSocket(cfg.Syslog.SocketPath, -1)
	if err != nil {
		log.Fatalf("Failed to open syslog socket: %v", err)
	}
	defer sock.Close()

	// 3. Buffer
	buffer, err := engine.NewRingBuffer(cfg.Syslog.BufferSize)
	if err != nil {
		log.Fatalf("Failed to create buffer: %v", err)
	}

	// 4. Forwarding state (relay sends go out on the ingest fd)
	state := forward.NewState(sock.FD(), cfg.Syslog.RelayPath, cfg.Syslog.RemoteTarget, nil)

	// 5. Server
	srv := server.New(hostname, state, output.NewConsoleDispatcher(), server.Options{
		ForwardToSyslog: cfg.Syslog.ForwardToSyslog,
		ForwardToRemote: cfg.Syslog.ForwardToRemote,
		MaxLevel:        cfg.Syslog.MaxLevel,
	})
	srv.SetCommLookup(procComm)

	// 6. Pipeline (the single consumer)
	pipeline := engine.NewPipeline(buffer, srv)

	// 7. Event loop + ingestor
	loop := ingest.NewPollLoop()
	ingestor := ingest.NewSyslogIngestor(sock, buffer)
	if err := ingestor.Register(loop); err != nil {
		log.Fatalf("Failed to register syslog ingestor: %v", err)
	}

	// 8. Control plane watcher
	watcher := control.NewWatcher(cfg.Redis, srv)

	// --- Start ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipeline.Start(ctx)
	go watcher.Start(ctx)

	go func() {
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatalf("Event loop died: %v", err)
		}
	}()

	// Wait for shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	log.Printf("logrelay running on %s.", cfg.Syslog.SocketPath)

	<-sigChan
	log.Println("Shutting down...")
	cancel()
	time.Sleep(1 * time.Second) // Give workers time to drain
	log.Println("Bye.")
}

// procComm looks up a process command name, for internally-forwarded messages
// that carry credentials but no identifier.
func procComm(pid int) string {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
