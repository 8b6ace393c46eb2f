package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const (
	envWorkers   = "VOICENOTE_WORKERS"
	envBatchSize = "VOICENOTE_BATCH_SIZE"
)

// Load reads a YAML config file over Default() and applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default() when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config file: %w", err)
		}
	}

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv resolves credentials and numeric overrides from the process environment.
func (c *Config) ApplyEnv() error {
	if c.Deepgram.APIKeyEnv != "" {
		if v := os.Getenv(c.Deepgram.APIKeyEnv); v != "" {
			c.Deepgram.APIKey = v
		}
	}
	if c.Gemini.APIKeyEnv != "" {
		if v := os.Getenv(c.Gemini.APIKeyEnv); v != "" {
			c.Gemini.APIKey = v
		}
	}

	if v := os.Getenv(envWorkers); v != "" {
		n, err := envInt(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConfiguration, envWorkers, err)
		}
		c.Polish.Workers = n
	}
	if v := os.Getenv(envBatchSize); v != "" {
		n, err := envInt(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConfiguration, envBatchSize, err)
		}
		c.Transcribe.BatchSize = n
	}
	return nil
}

// envInt parses v in base 10, so "010" is ten and "08" is eight.
func envInt(v string) (int, error) {
	v = strings.TrimSpace(v)
	sign := ""
	if strings.HasPrefix(v, "-") || strings.HasPrefix(v, "+") {
		sign, v = v[:1], v[1:]
	}
	if trimmed := strings.TrimLeft(v, "0"); trimmed != v {
		if trimmed == "" {
			trimmed = "0"
		}
		v = trimmed
	}
	return cast.ToIntE(sign + v)
}
