package session

import "time"

type SecurityMode string

const (
	// SecurityModeDevelopment accepts self-signed receiver certificates.
	SecurityModeDevelopment SecurityMode = "development"
	// SecurityModeStrict verifies the receiver against a configured CA bundle.
	SecurityModeStrict SecurityMode = "strict"
)

// TLSConfig controls receiver certificate verification.
type TLSConfig struct {
	CAFile             string
	ServerName         string
	InsecureSkipVerify bool
}

// Config defines transport/session defaults.
type Config struct {
	ConnectTimeout    time.Duration
	HandshakeTimeout  time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	HeartbeatInterval time.Duration
	MaxMessageBytes   uint32
	SecurityMode      SecurityMode
	TLS               TLSConfig
}

// DefaultConfig returns defaults suited to a receiver on the local network.
// ReadTimeout spans three missed heartbeats.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:    5 * time.Second,
		HandshakeTimeout:  5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      5 * time.Second,
		HeartbeatInterval: 5 * time.Second,
		MaxMessageBytes:   64 * 1024,
		SecurityMode:      SecurityModeDevelopment,
		TLS: TLSConfig{
			InsecureSkipVerify: true,
		},
	}
}

// WithDefaults fills zero-valued fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = def.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = def.HeartbeatInterval
	}
	if c.MaxMessageBytes == 0 {
		c.MaxMessageBytes = def.MaxMessageBytes
	}
	c.SecurityMode = NormalizeSecurityMode(c.SecurityMode)
	return c
}
