package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds settings for both binaries. Values come from defaults, an
// optional rhinomcp.yaml, and RHINOMCP_* environment overrides, in that
// order of precedence (lowest first).
type Config struct {
	LogLevel string       `mapstructure:"log_level"`
	Bridge   BridgeConfig `mapstructure:"bridge"`
	Client   ClientConfig `mapstructure:"client"`
}

// BridgeConfig configures the executor daemon.
type BridgeConfig struct {
	// TCPAddr is the command socket address. Localhost by convention;
	// the protocol carries no authentication.
	TCPAddr string `mapstructure:"tcp_addr"`
	// WSAddr enables the WebSocket transport when non-empty.
	WSAddr string `mapstructure:"ws_addr"`
	// AuditPath enables the SQLite command audit trail when non-empty.
	AuditPath string `mapstructure:"audit_path"`
	// HostVersion labels the in-process reference host.
	HostVersion string `mapstructure:"host_version"`
}

// ClientConfig configures the CLI client.
type ClientConfig struct {
	Addr string `mapstructure:"addr"`
	// Timeout bounds each command round trip. Zero keeps the default
	// fully blocking contract.
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration. cfgFile may be empty, in which case
// rhinomcp.yaml is searched in the working directory and ~/.config/rhinomcp.
// A missing config file is not an error; defaults apply.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("bridge.tcp_addr", "127.0.0.1:8888")
	v.SetDefault("bridge.ws_addr", "")
	v.SetDefault("bridge.audit_path", "")
	v.SetDefault("bridge.host_version", "memdoc-1.0")
	v.SetDefault("client.addr", "127.0.0.1:8888")
	v.SetDefault("client.timeout", time.Duration(0))

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("rhinomcp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/rhinomcp")
	}

	v.SetEnvPrefix("RHINOMCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
