package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// ErrConfiguration marks every error that must abort a run before any work starts.
var ErrConfiguration = errors.New("configuration error")

// Stage selects which half of the pipeline a config is validated for.
type Stage string

const (
	StageTranscribe Stage = "transcribe"
	StagePolish     Stage = "polish"
)

type Config struct {
	Transcribe  TranscribeConfig  `yaml:"transcribe"`
	Polish      PolishConfig      `yaml:"polish"`
	Deepgram    DeepgramConfig    `yaml:"deepgram"`
	Ollama      OllamaConfig      `yaml:"ollama"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	// Watch keeps the run alive after the first pass and processes new input files.
	Watch bool `yaml:"watch"`
}

type TranscribeConfig struct {
	Input      string   `yaml:"input"`
	Output     string   `yaml:"output"`
	Prefix     string   `yaml:"prefix"`
	Extensions []string `yaml:"extensions"`
	BatchSize  int      `yaml:"batch_size"`
	// EmptyResponse is "empty" (write an empty transcript) or "fail".
	EmptyResponse string `yaml:"empty_response"`
}

type PolishConfig struct {
	Input      string   `yaml:"input"`
	Output     string   `yaml:"output"`
	Prefix     string   `yaml:"prefix"`
	Extensions []string `yaml:"extensions"`
	Workers    int      `yaml:"workers"`
	Provider   string   `yaml:"provider"`
	Format     string   `yaml:"format"`
}

type DeepgramConfig struct {
	URL         string        `yaml:"url"`
	Model       string        `yaml:"model"`
	SmartFormat bool          `yaml:"smart_format"`
	MimeType    string        `yaml:"mimetype"`
	APIKeyEnv   string        `yaml:"api_key_env"`
	APIKey      string        `yaml:"-"`
	Timeout     time.Duration `yaml:"timeout"`
}

type OllamaConfig struct {
	URL     string        `yaml:"url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type GeminiConfig struct {
	// BaseURL overrides the API endpoint, e.g. for a proxy. Empty uses the SDK default.
	BaseURL   string        `yaml:"base_url"`
	Model     string        `yaml:"model"`
	APIKeyEnv string        `yaml:"api_key_env"`
	APIKey    string        `yaml:"-"`
	Timeout   time.Duration `yaml:"timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	// RequestsPerMinute paces remote calls across all workers; 0 disables pacing.
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"

	FormatMarkdown = "markdown"
	FormatDocx     = "docx"

	EmptyResponseEmpty = "empty"
	EmptyResponseFail  = "fail"

	DefaultTimeout = 5 * time.Minute
)

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Transcribe: TranscribeConfig{
			Input:         "./in",
			Output:        "./out",
			Prefix:        "2025080",
			Extensions:    []string{".mp3", ".wav", ".m4a", ".ogg", ".flac"},
			BatchSize:     4,
			EmptyResponse: EmptyResponseEmpty,
		},
		Polish: PolishConfig{
			Input:      "/data/transcriptions",
			Output:     "/data/polished",
			Extensions: []string{".md"},
			Provider:   ProviderOllama,
			Format:     FormatMarkdown,
		},
		Deepgram: DeepgramConfig{
			URL:         "https://api.deepgram.com/v1/listen",
			Model:       "nova-2",
			SmartFormat: true,
			MimeType:    "audio/mp3",
			APIKeyEnv:   "DEEPGRAM_API_KEY",
			Timeout:     DefaultTimeout,
		},
		Ollama: OllamaConfig{
			URL:     "http://localhost:19190/api/generate",
			Model:   "llama3",
			Timeout: DefaultTimeout,
		},
		Gemini: GeminiConfig{
			Model:     "gemini-2.5-flash",
			APIKeyEnv: "GEMINI_API_KEY",
			Timeout:   DefaultTimeout,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate fills unset defaults and checks the fields the given stage needs.
// All problems are reported together, wrapped in ErrConfiguration.
func (c *Config) Validate(stage Stage) error {
	c.fillDefaults()

	var errs error
	switch stage {
	case StageTranscribe:
		errs = c.validateTranscribe()
	case StagePolish:
		errs = c.validatePolish()
	default:
		errs = fmt.Errorf("unknown stage %q", stage)
	}

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, errs)
	}
	return nil
}

func (c *Config) validateTranscribe() error {
	var errs error
	t := c.Transcribe
	if t.Input == "" {
		errs = multierr.Append(errs, errors.New("transcribe.input is required"))
	}
	if t.Output == "" {
		errs = multierr.Append(errs, errors.New("transcribe.output is required"))
	}
	if t.BatchSize <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("transcribe.batch_size must be positive, got %d", t.BatchSize))
	}
	if len(t.Extensions) == 0 {
		errs = multierr.Append(errs, errors.New("transcribe.extensions must not be empty"))
	}
	if t.EmptyResponse != EmptyResponseEmpty && t.EmptyResponse != EmptyResponseFail {
		errs = multierr.Append(errs, fmt.Errorf("transcribe.empty_response must be %q or %q, got %q",
			EmptyResponseEmpty, EmptyResponseFail, t.EmptyResponse))
	}
	if c.Deepgram.URL == "" {
		errs = multierr.Append(errs, errors.New("deepgram.url is required"))
	}
	if c.Deepgram.APIKey == "" {
		errs = multierr.Append(errs, fmt.Errorf("deepgram api key missing: set %s", c.Deepgram.APIKeyEnv))
	}
	if c.Deepgram.Timeout <= 0 {
		errs = multierr.Append(errs, errors.New("deepgram.timeout must be positive"))
	}
	return errs
}

func (c *Config) validatePolish() error {
	var errs error
	p := c.Polish
	if p.Input == "" {
		errs = multierr.Append(errs, errors.New("polish.input is required"))
	}
	if p.Output == "" {
		errs = multierr.Append(errs, errors.New("polish.output is required"))
	}
	if p.Workers <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("polish.workers must be positive, got %d", p.Workers))
	}
	if len(p.Extensions) == 0 {
		errs = multierr.Append(errs, errors.New("polish.extensions must not be empty"))
	}
	if c.Watch && p.Input != "" && samePath(p.Input, p.Output) {
		errs = multierr.Append(errs, fmt.Errorf("polish.output must differ from polish.input in watch mode, both are %q", p.Input))
	}
	if p.Format != FormatMarkdown && p.Format != FormatDocx {
		errs = multierr.Append(errs, fmt.Errorf("polish.format must be %q or %q, got %q", FormatMarkdown, FormatDocx, p.Format))
	}

	switch p.Provider {
	case ProviderOllama:
		if c.Ollama.URL == "" {
			errs = multierr.Append(errs, errors.New("ollama.url is required"))
		}
		if c.Ollama.Timeout <= 0 {
			errs = multierr.Append(errs, errors.New("ollama.timeout must be positive"))
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			errs = multierr.Append(errs, fmt.Errorf("gemini api key missing: set %s", c.Gemini.APIKeyEnv))
		}
		if c.Gemini.Timeout <= 0 {
			errs = multierr.Append(errs, errors.New("gemini.timeout must be positive"))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("polish.provider must be %q or %q, got %q", ProviderOllama, ProviderGemini, p.Provider))
	}
	return errs
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// fillDefaults only touches zero values; explicit negatives stay so Validate can reject them.
func (c *Config) fillDefaults() {
	if c.Transcribe.EmptyResponse == "" {
		c.Transcribe.EmptyResponse = EmptyResponseEmpty
	}
	if c.Polish.Workers == 0 {
		c.Polish.Workers = max(1, runtime.NumCPU()/2)
	}
	if c.Polish.Provider == "" {
		c.Polish.Provider = ProviderOllama
	}
	c.Polish.Provider = strings.ToLower(c.Polish.Provider)
	if c.Polish.Format == "" {
		c.Polish.Format = FormatMarkdown
	}
	c.Polish.Format = strings.ToLower(c.Polish.Format)
	if c.Deepgram.Timeout == 0 {
		c.Deepgram.Timeout = DefaultTimeout
	}
	if c.Ollama.Timeout == 0 {
		c.Ollama.Timeout = DefaultTimeout
	}
	if c.Gemini.Timeout == 0 {
		c.Gemini.Timeout = DefaultTimeout
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
