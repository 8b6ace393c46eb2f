package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		stage   Stage
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:  "valid transcribe config",
			stage: StageTranscribe,
			mutate: func(c *Config) {
				c.Deepgram.APIKey = "key"
			},
			wantErr: false,
		},
		{
			name:    "missing deepgram key",
			stage:   StageTranscribe,
			mutate:  func(c *Config) {},
			wantErr: true,
		},
		{
			name:  "zero batch size",
			stage: StageTranscribe,
			mutate: func(c *Config) {
				c.Deepgram.APIKey = "key"
				c.Transcribe.BatchSize = 0
			},
			wantErr: true,
		},
		{
			name:  "negative batch size",
			stage: StageTranscribe,
			mutate: func(c *Config) {
				c.Deepgram.APIKey = "key"
				c.Transcribe.BatchSize = -2
			},
			wantErr: true,
		},
		{
			name:  "unknown empty response policy",
			stage: StageTranscribe,
			mutate: func(c *Config) {
				c.Deepgram.APIKey = "key"
				c.Transcribe.EmptyResponse = "ignore"
			},
			wantErr: true,
		},
		{
			name:    "valid polish config without any key",
			stage:   StagePolish,
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:  "negative workers",
			stage: StagePolish,
			mutate: func(c *Config) {
				c.Polish.Workers = -1
			},
			wantErr: true,
		},
		{
			name:  "gemini provider without key",
			stage: StagePolish,
			mutate: func(c *Config) {
				c.Polish.Provider = ProviderGemini
			},
			wantErr: true,
		},
		{
			name:  "unknown format",
			stage: StagePolish,
			mutate: func(c *Config) {
				c.Polish.Format = "pdf"
			},
			wantErr: true,
		},
		{
			name:  "watch with output equal to input",
			stage: StagePolish,
			mutate: func(c *Config) {
				c.Watch = true
				c.Polish.Input = "data/notes"
				c.Polish.Output = "./data/notes/"
			},
			wantErr: true,
		},
		{
			name:  "same input and output without watch",
			stage: StagePolish,
			mutate: func(c *Config) {
				c.Polish.Input = "data/notes"
				c.Polish.Output = "data/notes"
			},
			wantErr: false,
		},
		{
			name:  "watch with separate output",
			stage: StagePolish,
			mutate: func(c *Config) {
				c.Watch = true
				c.Polish.Input = "data/transcripts"
				c.Polish.Output = "data/notes"
			},
			wantErr: false,
		},
		{
			name:  "missing paths",
			stage: StagePolish,
			mutate: func(c *Config) {
				c.Polish.Input = ""
				c.Polish.Output = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate(tt.stage)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrConfiguration) {
				t.Errorf("Validate() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Transcribe.BatchSize = 0
	cfg.Transcribe.Input = ""

	err := cfg.Validate(StageTranscribe)
	if err == nil {
		t.Fatal("Validate() should fail")
	}
	for _, want := range []string{"batch_size", "transcribe.input", "DEEPGRAM_API_KEY"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestValidateDefaultsWorkers(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(StagePolish); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Polish.Workers < 1 {
		t.Errorf("Workers = %d, want >= 1", cfg.Polish.Workers)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
transcribe:
  input: "data/audio"
  output: "data/transcripts"
  prefix: "202509"
  batch_size: 8

polish:
  workers: 3
  format: docx

deepgram:
  timeout: 90s

logging:
  level: "debug"
  format: "json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Transcribe.Input != "data/audio" {
		t.Errorf("Input = %v, want %v", cfg.Transcribe.Input, "data/audio")
	}
	if cfg.Transcribe.BatchSize != 8 {
		t.Errorf("BatchSize = %d, want 8", cfg.Transcribe.BatchSize)
	}
	if cfg.Deepgram.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", cfg.Deepgram.Timeout)
	}
	// Unset fields keep their defaults.
	if cfg.Deepgram.Model != "nova-2" {
		t.Errorf("Model = %v, want nova-2", cfg.Deepgram.Model)
	}
	if len(cfg.Transcribe.Extensions) != 5 {
		t.Errorf("Extensions = %v, want defaults", cfg.Transcribe.Extensions)
	}
	if cfg.Polish.Workers != 3 || cfg.Polish.Format != FormatDocx {
		t.Errorf("Polish = %+v", cfg.Polish)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("transcribe:\n  batchsize: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should reject unknown field")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Transcribe.BatchSize != 4 {
		t.Errorf("BatchSize = %d, want 4", cfg.Transcribe.BatchSize)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "dg-secret")
	t.Setenv(envWorkers, "6")
	t.Setenv(envBatchSize, "2")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.Deepgram.APIKey != "dg-secret" {
		t.Errorf("APIKey = %q", cfg.Deepgram.APIKey)
	}
	if cfg.Polish.Workers != 6 {
		t.Errorf("Workers = %d, want 6", cfg.Polish.Workers)
	}
	if cfg.Transcribe.BatchSize != 2 {
		t.Errorf("BatchSize = %d, want 2", cfg.Transcribe.BatchSize)
	}
}

func TestApplyEnvInvalidNumber(t *testing.T) {
	t.Setenv(envWorkers, "many")

	err := Default().ApplyEnv()
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("ApplyEnv() error = %v, want ErrConfiguration", err)
	}
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(StagePolish); err != nil {
		t.Errorf("Validate(polish) error = %v", err)
	}
	if cfg.Transcribe.BatchSize != 4 || cfg.Ollama.Model != "llama3" {
		t.Errorf("unexpected example values: %+v", cfg.Transcribe)
	}
}

func TestApplyEnvLeadingZeros(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{"010", 10, false},
		{"08", 8, false},
		{"007", 7, false},
		{"0", 0, false},
		{"000", 0, false},
		{" 12 ", 12, false},
		{"-04", -4, false},
		{"0x10", 0, true},
		{"ten", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv(envBatchSize, tt.value)
			cfg := Default()
			err := cfg.ApplyEnv()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnv() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg.Transcribe.BatchSize != tt.want {
				t.Errorf("BatchSize = %d, want %d", cfg.Transcribe.BatchSize, tt.want)
			}
		})
	}
}
