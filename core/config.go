package cek

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config is shared by the binaries. Every field can come from a YAML file
// and be overridden from the environment.
type Config struct {
	Socket    string `yaml:"socket"`
	TraceDB   string `yaml:"trace_db"`
	LogLevel  string `yaml:"log_level"`
	MaxSteps  int    `yaml:"max_steps"`
	MaxTraces int    `yaml:"max_traces"`
	History   string `yaml:"history"`
}

func DefaultConfig() Config {
	return Config{
		Socket:    "/tmp/cek.sock",
		LogLevel:  "info",
		MaxTraces: 1000,
		History:   ".cek_history",
	}
}

// LoadConfig reads the YAML file named by CEK_CONFIG (if any) over the
// defaults, then applies environment overrides.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if path := os.Getenv("CEK_CONFIG"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		defer f.Close()
		if err := cfg.decode(f); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", filepath.Base(path), err)
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("CEK_SOCK"); v != "" {
		c.Socket = v
	}
	if v := getenv("CEK_TRACE_DB"); v != "" {
		c.TraceDB = v
	}
	if v := getenv("CEK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("CEK_MAX_STEPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("CEK_MAX_STEPS: want a non-negative integer, got %q", v)
		}
		c.MaxSteps = n
	}
	return nil
}

// Logger builds the stderr console logger the binaries share.
func (c Config) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("config: log_level: %w", err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(level).
		With().Timestamp().Logger(), nil
}
