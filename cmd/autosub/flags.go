package main

import (
	"github.com/spf13/cobra"

	"autosub/internal/config"
)

// flagOverrides holds the run flags. Only flags the user actually set
// override the loaded configuration.
type flagOverrides struct {
	model              string
	outputDir          string
	outputSRT          bool
	outputAudio        bool
	outputVideo        bool
	language           string
	translateOff       bool
	translateTo        string
	batchSize          int
	maxWorkers         int
	extractWorkers     int
	device             string
	verbose            bool
	enhanceConsistency bool
}

func (f *flagOverrides) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.model, "model", "m", "", "WhisperX model name (e.g. small, large-v3, base.en)")
	flags.StringVarP(&f.outputDir, "output-dir", "o", "", "Directory for generated outputs")
	flags.BoolVarP(&f.outputSRT, "output-srt", "s", false, "Write subtitle files into the output directory")
	flags.BoolVarP(&f.outputAudio, "output-audio", "a", false, "Keep extracted audio in the output directory")
	flags.BoolVarP(&f.outputVideo, "output-video", "v", false, "Burn subtitles into <name>_subtitled.mp4")
	flags.StringVar(&f.language, "language", "", "Spoken language code; empty lets the model detect it")
	flags.BoolVar(&f.translateOff, "translate-off", false, "Disable translation")
	flags.StringVar(&f.translateTo, "translate-to", "", "Target language code for translation")
	flags.IntVar(&f.batchSize, "batch-size", 0, "Subtitle lines per translation request")
	flags.IntVar(&f.maxWorkers, "max-workers", 0, "Concurrent translation requests")
	flags.IntVar(&f.extractWorkers, "extract-workers", 0, "Concurrent audio extractions")
	flags.StringVar(&f.device, "device", "", "Transcription device: auto, cpu, or cuda")
	flags.BoolVar(&f.verbose, "verbose", false, "Enable debug logging")
	flags.BoolVar(&f.enhanceConsistency, "enhance-consistency", false, "Condition each window on the previous text")
}

// apply copies changed flags into cfg and reports whether anything changed.
func (f *flagOverrides) apply(cmd *cobra.Command, cfg *config.Config) bool {
	changed := false
	set := func(name string) bool {
		if cmd.Flags().Changed(name) {
			changed = true
			return true
		}
		return false
	}
	if set("model") {
		cfg.Transcription.Model = f.model
	}
	if set("output-dir") {
		cfg.Paths.OutputDir = f.outputDir
	}
	if set("output-srt") {
		cfg.Output.Subtitles = f.outputSRT
	}
	if set("output-audio") {
		cfg.Output.Audio = f.outputAudio
	}
	if set("output-video") {
		cfg.Output.Video = f.outputVideo
	}
	if set("language") {
		cfg.Transcription.Language = f.language
	}
	if set("translate-off") {
		cfg.Translation.Enabled = !f.translateOff
	}
	if set("translate-to") {
		cfg.Translation.Target = f.translateTo
		if !cmd.Flags().Changed("translate-off") {
			cfg.Translation.Enabled = true
		}
	}
	if set("batch-size") {
		cfg.Translation.BatchSize = f.batchSize
	}
	if set("max-workers") {
		cfg.Translation.MaxWorkers = f.maxWorkers
	}
	if set("extract-workers") {
		cfg.Extraction.Workers = f.extractWorkers
	}
	if set("device") {
		cfg.Transcription.Device = f.device
	}
	if set("enhance-consistency") {
		cfg.Transcription.EnhanceConsistency = f.enhanceConsistency
	}
	return changed
}
