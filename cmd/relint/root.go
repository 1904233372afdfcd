// Package main implements the command-line interface for the relint
// (Release Lint) tool. It validates GitOps Helm release manifests and
// computes their effective configuration without contacting a cluster.
//
// The main CLI commands are:
//   - lint: Check HelmRepository/HelmRelease documents against the rule set
//   - inspect: Summarize a release (chart, source, ordered value layers)
//   - render: Merge the ordered value layers into the effective values tree
//
// Each command has various flags for configuration. See the help output for details.
package main

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lucas-albers-lz4/relint/pkg/debug"
	log "github.com/lucas-albers-lz4/relint/pkg/log"
)

// Global flag variables
var (
	cfgFile      string
	debugEnabled bool
	logLevel     string
)

// AppFs defines the filesystem interface to use, allows mocking in tests.
var AppFs = afero.NewOsFs()

// SetFs replaces the current filesystem with the provided one and returns a
// function to restore it. This is primarily used for testing.
func SetFs(newFs afero.Fs) func() {
	oldFs := AppFs
	AppFs = newFs
	return func() { AppFs = oldFs }
}

var rootCmd = &cobra.Command{
	Use:   "relint",
	Short: "Lint and render GitOps Helm release manifests",
	Long: `relint (Release Lint) validates HelmRepository and HelmRelease manifests
the way the cluster-side controller would, before anything is committed.

It checks document schema and cross-document consistency (lint), summarizes
what a release deploys and where its configuration comes from (inspect), and
replays the controller's ordered value merge locally using stand-in files for
externally managed Secrets and ConfigMaps (render).`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Setup logging before any command logic runs.
		level := log.LevelInfo
		if debugEnabled {
			level = log.LevelDebug
		} else if logLevel != "" {
			parsedLevel, err := log.ParseLevel(logLevel)
			if err != nil {
				log.Warnf("Invalid log level specified: '%s'. Using default: %s. Error: %v", logLevel, level, err)
			} else {
				level = parsedLevel
			}
		}
		log.SetLevel(level)

		// The --debug flag wins; otherwise honor RELINT_DEBUG.
		if debugEnabled {
			debug.Enabled = true
			debug.Printf("--debug flag enabled debug logging.")
		} else if debugEnv := os.Getenv("RELINT_DEBUG"); debugEnv != "" {
			debugVal, err := strconv.ParseBool(debugEnv)
			if err != nil {
				debug.Enabled = false
			} else {
				debug.Enabled = debugVal
			}
		}

		if debug.Enabled {
			debug.Printf("Effective log level set to %s", level)
		}
		return nil
	},
}

// Execute runs the root command and wraps any dispatch error.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("execute command: %w", err)
	}
	return nil
}

// init sets up the root command and its flags.
func init() {
	cobra.OnInitialize(initConfig)

	// Accept underscore spellings of flags (e.g. --log_level).
	rootCmd.PersistentFlags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.relint.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugEnabled, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "set log level (debug, info, warn, error)")

	// Add commands
	rootCmd.AddCommand(newLintCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newRenderCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Search config in the working directory first, then home, with
		// name ".relint" (without extension).
		viper.SetConfigName(".relint")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("RELINT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		debug.Printf("Using config file: %s", viper.ConfigFileUsed())
	}
}

// Get the root command - useful for testing
func getRootCmd() *cobra.Command {
	return rootCmd
}

// executeCommand is a helper for testing Cobra commands
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)

	root.SetArgs(args)
	err = root.Execute()

	return buf.String(), err
}
