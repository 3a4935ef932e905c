package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/danmuck/castctl/internal/channel/connection"
	"github.com/danmuck/castctl/internal/protocol/cast"
	"github.com/danmuck/castctl/internal/protocol/session"
)

var ErrInvalidConfig = errors.New("config: invalid castctl config")

// Config is the resolved castctl client configuration.
type Config struct {
	SenderID    string
	Address     string
	Destination string
	UserAgent   string
	MetricsAddr string
	Session     session.Config
}

// envOverrides holds CASTCTL_* values; unset variables leave fields zero.
type envOverrides struct {
	SenderID           string        `env:"CASTCTL_SENDER_ID"`
	Address            string        `env:"CASTCTL_ADDRESS"`
	Destination        string        `env:"CASTCTL_DESTINATION"`
	UserAgent          string        `env:"CASTCTL_USER_AGENT"`
	MetricsAddr        string        `env:"CASTCTL_METRICS_ADDR"`
	SecurityMode       string        `env:"CASTCTL_SECURITY_MODE"`
	ConnectTimeout     time.Duration `env:"CASTCTL_CONNECT_TIMEOUT"`
	ReadTimeout        time.Duration `env:"CASTCTL_READ_TIMEOUT"`
	WriteTimeout       time.Duration `env:"CASTCTL_WRITE_TIMEOUT"`
	HeartbeatInterval  time.Duration `env:"CASTCTL_HEARTBEAT_INTERVAL"`
	CAFile             string        `env:"CASTCTL_TLS_CA_FILE"`
	ServerName         string        `env:"CASTCTL_TLS_SERVER_NAME"`
	InsecureSkipVerify string        `env:"CASTCTL_TLS_INSECURE_SKIP_VERIFY"`
}

// fileConfig is the on-disk TOML shape; durations are strings.
type fileConfig struct {
	SenderID          string `toml:"sender_id"`
	Address           string `toml:"address"`
	Destination       string `toml:"destination"`
	UserAgent         string `toml:"user_agent"`
	MetricsAddr       string `toml:"metrics_addr"`
	SecurityMode      string `toml:"security_mode"`
	ConnectTimeout    string `toml:"connect_timeout"`
	HandshakeTimeout  string `toml:"handshake_timeout"`
	ReadTimeout       string `toml:"read_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	HeartbeatInterval string `toml:"heartbeat_interval"`
	MaxMessageBytes   uint32 `toml:"max_message_bytes"`
	TLSCAFile         string `toml:"tls_ca_file"`
	TLSServerName     string `toml:"tls_server_name"`
	TLSInsecureSkip   bool   `toml:"tls_insecure_skip_verify"`
}

func DefaultConfig() Config {
	return Config{
		SenderID:    cast.PlatformSenderID,
		Address:     "127.0.0.1:8009",
		Destination: cast.PlatformReceiverID,
		UserAgent:   connection.DefaultUserAgent,
		Session:     session.DefaultConfig(),
	}
}

// Load reads path (optional when empty), applies CASTCTL_* env overrides,
// and validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%w: unknown key %q in %s", ErrInvalidConfig, undecoded[0].String(), path)
	}

	setString := func(key string, dst *string, v string) {
		if meta.IsDefined(key) {
			*dst = strings.TrimSpace(v)
		}
	}
	setString("sender_id", &cfg.SenderID, raw.SenderID)
	setString("address", &cfg.Address, raw.Address)
	setString("destination", &cfg.Destination, raw.Destination)
	setString("user_agent", &cfg.UserAgent, raw.UserAgent)
	setString("metrics_addr", &cfg.MetricsAddr, raw.MetricsAddr)
	setString("tls_ca_file", &cfg.Session.TLS.CAFile, raw.TLSCAFile)
	setString("tls_server_name", &cfg.Session.TLS.ServerName, raw.TLSServerName)

	if meta.IsDefined("security_mode") {
		cfg.Session.SecurityMode = session.NormalizeSecurityMode(session.SecurityMode(raw.SecurityMode))
	}
	if meta.IsDefined("tls_insecure_skip_verify") {
		cfg.Session.TLS.InsecureSkipVerify = raw.TLSInsecureSkip
	}
	if meta.IsDefined("max_message_bytes") {
		cfg.Session.MaxMessageBytes = raw.MaxMessageBytes
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"connect_timeout", raw.ConnectTimeout, &cfg.Session.ConnectTimeout},
		{"handshake_timeout", raw.HandshakeTimeout, &cfg.Session.HandshakeTimeout},
		{"read_timeout", raw.ReadTimeout, &cfg.Session.ReadTimeout},
		{"write_timeout", raw.WriteTimeout, &cfg.Session.WriteTimeout},
		{"heartbeat_interval", raw.HeartbeatInterval, &cfg.Session.HeartbeatInterval},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	for _, f := range []struct {
		v   string
		dst *string
	}{
		{o.SenderID, &cfg.SenderID},
		{o.Address, &cfg.Address},
		{o.Destination, &cfg.Destination},
		{o.UserAgent, &cfg.UserAgent},
		{o.MetricsAddr, &cfg.MetricsAddr},
		{o.CAFile, &cfg.Session.TLS.CAFile},
		{o.ServerName, &cfg.Session.TLS.ServerName},
	} {
		if v := strings.TrimSpace(f.v); v != "" {
			*f.dst = v
		}
	}
	for _, f := range []struct {
		v   time.Duration
		dst *time.Duration
	}{
		{o.ConnectTimeout, &cfg.Session.ConnectTimeout},
		{o.ReadTimeout, &cfg.Session.ReadTimeout},
		{o.WriteTimeout, &cfg.Session.WriteTimeout},
		{o.HeartbeatInterval, &cfg.Session.HeartbeatInterval},
	} {
		if f.v > 0 {
			*f.dst = f.v
		}
	}
	if o.SecurityMode != "" {
		cfg.Session.SecurityMode = session.NormalizeSecurityMode(session.SecurityMode(o.SecurityMode))
	}
	if raw := strings.TrimSpace(o.InsecureSkipVerify); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("parse env: CASTCTL_TLS_INSECURE_SKIP_VERIFY: %w", err)
		}
		cfg.Session.TLS.InsecureSkipVerify = v
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.SenderID) == "" {
		return fmt.Errorf("%w: missing sender_id", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Destination) == "" {
		return fmt.Errorf("%w: missing destination", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("%w: missing address", ErrInvalidConfig)
	}
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("%w: address %q: %v", ErrInvalidConfig, c.Address, err)
	}
	if err := c.Session.ValidateClientTransport(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
