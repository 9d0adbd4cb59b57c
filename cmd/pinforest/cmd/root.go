package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/i5heu/pinforest/internal/config"
	"github.com/i5heu/pinforest/internal/eventLog"
)

const version = "0.1.0"

var (
	configPath string
	apiFlag    string
	dataDir    string
	logLevel   string

	conf   config.Config
	logger *logrus.Logger
	events *eventLog.Hook
)

var rootCmd = &cobra.Command{
	Use:   "pinforest",
	Short: "Browse and prune the pinned DAG forest of an IPFS node",
	Long: `pinforest reads the pin set of an IPFS node through its RPC API,
classifies every pinned block as directory or not, and assembles the
directories into a forest of named, sized links.

Unpinning a root also drops every descendant that no remaining directory
links to.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return setup(cmd)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.Path(), "path to the config file")
	rootCmd.PersistentFlags().StringVar(&apiFlag, "api", "", "RPC API address of the node (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory of the durable cache (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
}

func setup(cmd *cobra.Command) error {
	var err error
	conf, err = config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("api") {
		conf.API = apiFlag
	}
	if flags.Changed("data-dir") {
		conf.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		conf.LogLevel = logLevel
	}
	if err := conf.Validate(); err != nil {
		return err
	}

	lvl, err := conf.Level()
	if err != nil {
		return err
	}

	logger = logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(lvl)
	events = eventLog.New(eventLog.DefaultCapacity)
	logger.AddHook(events)
	return nil
}
