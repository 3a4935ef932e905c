package config

import (
	"fmt"
	"os"

	gotoml "github.com/pelletier/go-toml/v2"
)

// Template renders cfg in the on-disk TOML shape accepted by Load.
func Template(cfg Config) (string, error) {
	out, err := gotoml.Marshal(toFileConfig(cfg))
	if err != nil {
		return "", fmt.Errorf("config render failed: %w", err)
	}
	return string(out), nil
}

// WriteTemplate writes the default config to path.
func WriteTemplate(path string, overwrite bool) error {
	template, err := Template(DefaultConfig())
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

func toFileConfig(cfg Config) fileConfig {
	s := cfg.Session
	return fileConfig{
		SenderID:          cfg.SenderID,
		Address:           cfg.Address,
		Destination:       cfg.Destination,
		UserAgent:         cfg.UserAgent,
		MetricsAddr:       cfg.MetricsAddr,
		SecurityMode:      string(s.SecurityMode),
		ConnectTimeout:    s.ConnectTimeout.String(),
		HandshakeTimeout:  s.HandshakeTimeout.String(),
		ReadTimeout:       s.ReadTimeout.String(),
		WriteTimeout:      s.WriteTimeout.String(),
		HeartbeatInterval: s.HeartbeatInterval.String(),
		MaxMessageBytes:   s.MaxMessageBytes,
		TLSCAFile:         s.TLS.CAFile,
		TLSServerName:     s.TLS.ServerName,
		TLSInsecureSkip:   s.TLS.InsecureSkipVerify,
	}
}
