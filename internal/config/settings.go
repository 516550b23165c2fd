package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Settings are tool-level options, as opposed to vehicle definitions.
// They come from defaults, an optional settings file and DRIVESIM_*
// environment variables, in increasing priority.
type Settings struct {
	DataDir    string         `mapstructure:"data_dir"`
	LogLevel   string         `mapstructure:"log_level"`
	LogFormat  string         `mapstructure:"log_format"`
	GelfAddr   string         `mapstructure:"gelf_addr"`
	Integrator string         `mapstructure:"integrator"`
	Dt         float64        `mapstructure:"dt"`
	Preset     string         `mapstructure:"preset"`
	Workers    int            `mapstructure:"workers"`
	IndexDSN   string         `mapstructure:"index_dsn"`
	Influx     InfluxSettings `mapstructure:"influx"`
}

// InfluxSettings point the influx exporter at a server. An empty URL means
// line protocol is written to a file instead.
type InfluxSettings struct {
	URL    string `mapstructure:"url"`
	Token  string `mapstructure:"token"`
	Org    string `mapstructure:"org"`
	Bucket string `mapstructure:"bucket"`
}

const EnvPrefix = "DRIVESIM"

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "./data")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("integrator", "rk4")
	v.SetDefault("dt", DefaultDt)
	v.SetDefault("preset", DefaultPreset)
	v.SetDefault("workers", 4)
	v.SetDefault("gelf_addr", "")
	v.SetDefault("index_dsn", "")
	v.SetDefault("influx.url", "")
	v.SetDefault("influx.token", "")
	v.SetDefault("influx.org", "drivesim")
	v.SetDefault("influx.bucket", "telemetry")
}

// LoadSettings reads settings. An empty path skips the file.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading settings file: %w", err)
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("error decoding settings: %w", err)
	}
	if s.Dt <= 0 {
		return nil, fmt.Errorf("%w: dt must be positive, got %g", ErrInvalid, s.Dt)
	}
	return s, nil
}

// IndexPath is the run index DSN, defaulting to runs.db in the data dir.
func (s *Settings) IndexPath() string {
	if s.IndexDSN != "" {
		return s.IndexDSN
	}
	return filepath.Join(s.DataDir, "runs.db")
}
