package control

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"

	"logrelay/pkg/config"
	"logrelay/pkg/engine"
	"logrelay/pkg/server"
)

// Watcher hot-reloads the forwarding switches and the processor chain from a
// JSON manifest kept in redis. Updates are signalled over pub/sub; the
// manifest itself lives under a key so a restart picks up the current state.
type Watcher struct {
	redisClient *redis.Client
	server      *server.Server
	channel     string
	key         string
}

func NewWatcher(cfg config.RedisConfig, srv *server.Server) *Watcher {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Watcher{
		redisClient: rdb,
		server:      srv,
		channel:     cfg.Channel,
		key:         cfg.Key,
	}
}

func (w *Watcher) Start(ctx context.Context) {
	log.Println("control: starting config watcher...")

	// 1. Initial load
	w.reload(ctx)

	// 2. Subscribe to updates
	pubsub := w.redisClient.Subscribe(ctx, w.channel)
	ch := pubsub.Channel()

	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-ch:
				log.Printf("control: received update signal: %s", msg.Payload)
				w.reload(ctx)
			}
		}
	}()
}

func (w *Watcher) reload(ctx context.Context) {
	val, err := w.redisClient.Get(ctx, w.key).Result()
	if err == redis.Nil {
		log.Println("control: no manifest in redis, keeping current state")
		return
	} else if err != nil {
		log.Printf("control: failed to fetch manifest: %v", err)
		return
	}

	w.apply(val)
}

// apply parses a manifest and pushes the result onto the running server.
// Forwarding switches missing from the manifest keep their current value;
// the processor chain is rebuilt from scratch.
func (w *Watcher) apply(manifest string) {
	if !gjson.Valid(manifest) {
		log.Println("control: invalid manifest JSON, ignoring")
		return
	}

	opts := w.server.Options()
	if v := gjson.Get(manifest, "forwarding.to_syslog"); v.Exists() {
		opts.ForwardToSyslog = v.Bool()
	}
	if v := gjson.Get(manifest, "forwarding.to_remote"); v.Exists() {
		opts.ForwardToRemote = v.Bool()
	}
	if v := gjson.Get(manifest, "forwarding.to_kmsg"); v.Exists() {
		opts.ForwardToKmsg = v.Bool()
	}
	if v := gjson.Get(manifest, "forwarding.to_console"); v.Exists() {
		opts.ForwardToConsole = v.Bool()
	}
	if v := gjson.Get(manifest, "forwarding.to_wall"); v.Exists() {
		opts.ForwardToWall = v.Bool()
	}
	if v := gjson.Get(manifest, "forwarding.max_level"); v.Exists() {
		opts.MaxLevel = int(v.Int())
	}
	w.server.UpdateOptions(opts)

	var processors []engine.Processor
	for _, rule := range gjson.Get(manifest, "processors").Array() {
		id := rule.Get("id").String()

		switch rule.Get("type").String() {
		case "filter":
			if v := rule.Get("params.value"); v.Exists() {
				processors = append(processors, engine.NewFilterProcessor(id, []string{v.String()}))
			}
		case "redact":
			pat := rule.Get("params.pattern").String()
			rep := rule.Get("params.replacement").String()
			if pat != "" && rep != "" {
				processors = append(processors, engine.NewRedactionProcessor(id, pat, rep))
			}
		case "field_filter":
			proc, err := engine.NewFieldFilterProcessor(engine.FieldFilterConfig{
				Name:     id,
				Field:    engine.Field(rule.Get("params.field").String()),
				Operator: engine.Operator(rule.Get("params.operator").String()),
				Value:    rule.Get("params.value").String(),
			})
			if err != nil {
				log.Printf("control: failed to create field_filter %s: %v", id, err)
				continue
			}
			processors = append(processors, proc)
		}
	}

	w.server.UpdateChain(engine.NewProcessorChain(processors...))
}
