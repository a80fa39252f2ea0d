// SPDX-License-Identifier: MIT
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"audioviz/internal/analysis"
	"audioviz/internal/config"
	"audioviz/internal/source"
	"audioviz/pkg/build"
)

// Options carries the parsed CLI result back to main.
type Options struct {
	Config *config.Config
	Run    bool // run the streaming engine (root command)
}

// ParseArgs builds the configuration from config file plus flags and
// executes one-off subcommands. When Run is true the caller should start
// the engine.
func ParseArgs() (*Options, error) {
	buildInfo := build.GetBuildFlags()

	var (
		configPath string
		method     string
		sourceKind string
		wavPath    string
		wsAddress  string
		verbose    bool
	)
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Streams audio-reactive visualization vectors to rendering clients",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, method, sourceKind, wavPath, wsAddress, verbose)
			if err != nil {
				return err
			}
			opts.Config = cfg
			opts.Run = true
			return nil
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// One-shot analysis of a WAV file: prints the vector per frame as JSON
	// lines, for piping into offline tooling.
	analyzeCmd := &cobra.Command{
		Use:   "analyze <file.wav>",
		Short: "Analyze a WAV file and print visualization vectors as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, method, sourceKind, wavPath, wsAddress, verbose)
			if err != nil {
				return err
			}
			return analyzeFile(cmd, args[0], cfg)
		},
	}
	rootCmd.AddCommand(analyzeCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", "",
		"Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&method, "method", "m", "",
		"Analysis method: fft or rms")
	rootCmd.PersistentFlags().StringVarP(&sourceKind, "source", "s", "",
		"Audio source: sine, wav or stdin")
	rootCmd.PersistentFlags().StringVarP(&wavPath, "wav", "w", "",
		"Path to a WAV file (implies --source wav)")
	rootCmd.PersistentFlags().StringVarP(&wsAddress, "ws-address", "a", "",
		"Listen address for the WebSocket broadcast server")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Show verbose output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return opts, nil
}

// loadConfig layers CLI flags over the file/env configuration.
func loadConfig(path, method, sourceKind, wavPath, wsAddress string, verbose bool) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if method != "" {
		cfg.Analysis.Method = method
	}
	if wavPath != "" {
		cfg.Source.Kind = source.KindWAV
		cfg.Source.WAVPath = wavPath
	}
	if sourceKind != "" {
		cfg.Source.Kind = sourceKind
	}
	if wsAddress != "" {
		cfg.Transport.WSAddress = wsAddress
	}
	if verbose {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// analyzeFile runs the one-shot offline analysis path.
func analyzeFile(cmd *cobra.Command, path string, cfg *config.Config) error {
	method, err := analysis.ParseMethod(cfg.Analysis.Method)
	if err != nil {
		return err
	}

	src, err := source.OpenWAV(path, cfg.Source.FrameSamples, false)
	if err != nil {
		return err
	}
	defer src.Close()

	analyzer := analysis.New()
	enc := json.NewEncoder(cmd.OutOrStdout())
	for {
		frame, err := src.ReadFrame()
		if err != nil {
			break // io.EOF ends the file
		}
		bins := analyzer.Analyze(frame, method)
		if len(bins) == 0 {
			continue
		}
		if err := enc.Encode(bins); err != nil {
			return fmt.Errorf("failed to encode vector: %w", err)
		}
	}
	return nil
}
