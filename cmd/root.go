package cmd

import (
	"fmt"
	"os"

	"chordprep/config"
	"chordprep/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config

	flagCorpus    string
	flagLoader    string
	flagBackend   string
	flagWorkers   int
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:   "chordprep",
	Short: "Builds chord-recognition training sets from annotated guitar recordings.",
	Long: `chordprep aligns tempo-adaptive spectral frames of every recording with the
chord annotations of the corpus, caches the resulting dataset and trains a
random forest classifier on it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		applyFlags(cmd, c)
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(cfg.Log.Level),
			Format:     cfg.Log.Format,
			OutputPath: cfg.Log.File,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "YAML configuration file")
	pf.StringVar(&flagCorpus, "corpus", "", "corpus root holding the audio and annotation directories")
	pf.StringVar(&flagLoader, "loader", "", "waveform loader: wav or ffmpeg")
	pf.StringVar(&flagBackend, "cache-backend", "", "dataset cache backend: file, redis, minio, badger or none")
	pf.IntVarP(&flagWorkers, "workers", "w", 0, "tracks processed in parallel")
	pf.StringVar(&flagLogLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&flagLogFormat, "log-format", "", "json or console")
}

// applyFlags overrides configuration with the flags set on the command line.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("corpus") {
		c.Corpus.Root = flagCorpus
	}
	if flags.Changed("loader") {
		c.Features.Loader = flagLoader
	}
	if flags.Changed("cache-backend") {
		c.Cache.Backend = flagBackend
	}
	if flags.Changed("workers") {
		c.Build.Workers = flagWorkers
	}
	if flags.Changed("log-level") {
		c.Log.Level = flagLogLevel
	}
	if flags.Changed("log-format") {
		c.Log.Format = flagLogFormat
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
