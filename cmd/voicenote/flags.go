package main

import (
	"flag"

	"github.com/nguyentantai21042004/voicenote-flow/internal/config"
)

type flags struct {
	configPath string
	input      string
	output     string
	prefix     string
	batchSize  int
	workers    int
	apiURL     string
	provider   string
	format     string
	watch      bool
}

func registerFlags(fs *flag.FlagSet) *flags {
	f := &flags{}
	fs.StringVar(&f.configPath, "config", "config.yaml", "path to the YAML config file; defaults apply when it does not exist")
	fs.StringVar(&f.input, "input", "", "input directory")
	fs.StringVar(&f.output, "output", "", "output directory")
	fs.StringVar(&f.prefix, "prefix", "", "only process files whose name starts with this prefix")
	fs.IntVar(&f.batchSize, "batch-size", 0, "transcribe: files processed concurrently per batch")
	fs.IntVar(&f.workers, "workers", 0, "polish: number of concurrent workers")
	fs.StringVar(&f.apiURL, "api-url", "", "override the remote endpoint (Deepgram for transcribe, Ollama for polish)")
	fs.StringVar(&f.provider, "provider", "", "polish: ollama or gemini")
	fs.StringVar(&f.format, "format", "", "polish: markdown or docx")
	fs.BoolVar(&f.watch, "watch", false, "keep running and process files added to the input directory (overrides watch in the config)")
	return f
}

// apply copies only the flags that were set on the command line over cfg.
func (f *flags) apply(fs *flag.FlagSet, cfg *config.Config, stage config.Stage) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "input":
			if stage == config.StageTranscribe {
				cfg.Transcribe.Input = f.input
			} else {
				cfg.Polish.Input = f.input
			}
		case "output":
			if stage == config.StageTranscribe {
				cfg.Transcribe.Output = f.output
			} else {
				cfg.Polish.Output = f.output
			}
		case "prefix":
			if stage == config.StageTranscribe {
				cfg.Transcribe.Prefix = f.prefix
			} else {
				cfg.Polish.Prefix = f.prefix
			}
		case "batch-size":
			cfg.Transcribe.BatchSize = f.batchSize
		case "workers":
			cfg.Polish.Workers = f.workers
		case "api-url":
			if stage == config.StageTranscribe {
				cfg.Deepgram.URL = f.apiURL
			} else {
				cfg.Ollama.URL = f.apiURL
			}
		case "provider":
			cfg.Polish.Provider = f.provider
		case "format":
			cfg.Polish.Format = f.format
		case "watch":
			cfg.Watch = f.watch
		}
	})
}
