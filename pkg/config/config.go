package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds the specific configuration for the logrelay instance.
type Config struct {
	Syslog SyslogConfig `yaml:"syslog"`
	Redis  RedisConfig  `yaml:"redis"`
}

type SyslogConfig struct {
	// SocketPath is the local rendezvous raw syslog datagrams arrive on.
	SocketPath string `yaml:"socket_path"`

	// RelayPath is the local rendezvous rendered frames are relayed to.
	RelayPath string `yaml:"relay_path"`

	// RemoteTarget is an optional "host:port" IPv4 syslog collector.
	RemoteTarget string `yaml:"remote_target"`

	// Hostname overrides the RFC5424 hostname field; empty means use the
	// system hostname.
	Hostname string `yaml:"hostname"`

	ForwardToSyslog bool `yaml:"forward_to_syslog"`
	ForwardToRemote bool `yaml:"forward_to_remote"`

	// MaxLevel is the highest severity internally-forwarded messages keep
	// (0=emerg .. 7=debug).
	MaxLevel int `yaml:"max_level"`

	// BufferSize is the datagram ring size (power of 2).
	BufferSize uint64 `yaml:"buffer_size"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"` // PubSub channel name
	Key      string `yaml:"key"`     // manifest key
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() *Config {
	return &Config{
		Syslog: SyslogConfig{
			SocketPath:      "/run/systemd/journal/dev-log",
			RelayPath:       "/run/systemd/journal/syslog",
			ForwardToSyslog: true,
			MaxLevel:        7,
			BufferSize:      65536,
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
			Channel: "logrelay_updates",
			Key:     "logrelay_config",
		},
	}
}

// Load reads a yaml config file over the defaults. A missing path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
