package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/sonido-chords/extraction/config"
	"github.com/RyanBlaney/sonido-chords/logging"
	"github.com/RyanBlaney/sonido-chords/transcode"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "chordscan",
	Short: "Extract chord sequences from audio",
	Long: `chordscan turns a recording into a chord sequence by matching
chroma profiles against chord templates.

Settings are read from chordscan.yaml, CHORDSCAN_* environment
variables and flags, in increasing order of precedence.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	defaults := config.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "config file (default ./chordscan.yaml)")
	flags.Int("frame-size", defaults.FrameSize, "samples per analysis frame")
	flags.Int("hop-size", defaults.HopSize, "samples between frames")
	flags.Int("sample-rate", defaults.SampleRate, "rate input audio is resampled to")
	flags.String("window", defaults.Window, "analysis window (hann, hamming, blackman, rectangular)")
	flags.String("chroma", defaults.ChromaMethod, "chromagram method (stft, cqt)")
	flags.Float64("low-freq-cutoff", defaults.LowFreqCutoff, "ignore spectrum below this frequency (Hz)")
	flags.Float64("tuning", defaults.TuningReference, "tuning reference for A4 (Hz)")
	flags.Float64("min-duration", defaults.MinSegmentDuration, "shortest chord segment reported (s)")
	flags.String("silence-label", defaults.SilenceLabel, "label for frames with no energy (default: first template)")
	flags.String("templates", defaults.TemplatesFile, "YAML/JSON chord template table")
	flags.Int("workers", defaults.Workers, "frame workers, 0 = automatic")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")

	bindings := map[string]string{
		"frame_size":           "frame-size",
		"hop_size":             "hop-size",
		"sample_rate":          "sample-rate",
		"window":               "window",
		"chroma_method":        "chroma",
		"low_freq_cutoff":      "low-freq-cutoff",
		"tuning_reference":     "tuning",
		"min_segment_duration": "min-duration",
		"silence_label":        "silence-label",
		"templates_file":       "templates",
		"workers":              "workers",
		"log.level":            "log-level",
		"log.format":           "log-format",
	}
	for key, flag := range bindings {
		cobra.CheckErr(v.BindPFlag(key, flags.Lookup(flag)))
	}
}

func initConfig(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("chordscan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "chordscan"))
		}
	}

	v.SetEnvPrefix("CHORDSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	if err := setupLogging(v.GetString("log.level"), v.GetString("log.format")); err != nil {
		return err
	}

	if used := v.ConfigFileUsed(); used != "" {
		logging.Debug("Loaded config file", logging.Fields{"path": used})
	}
	return nil
}

// setupLogging installs logrus as the global logger
func setupLogging(levelName, format string) error {
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}

	l := logrus.New()
	l.SetOutput(os.Stderr)
	switch format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger := logging.NewLogrusLogger(l)
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)
	return nil
}

// loadConfig merges file, environment and flags into an extraction config
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newDecoder(cfg *config.Config) *transcode.Decoder {
	decoderConfig := transcode.DefaultDecoderConfig()
	decoderConfig.TargetSampleRate = cfg.SampleRate
	return transcode.NewDecoder(decoderConfig)
}
