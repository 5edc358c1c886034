// Package cmd provides the buttonbook command-line interface.
//
// Configuration is read from several sources, highest priority first:
//
//  1. Command-line flags (--config, --port, --stories, ...)
//  2. BUTTONBOOK_CONFIG_FILE, naming a config file to read
//  3. BUTTONBOOK_<SECTION>_<KEY> environment variables
//  4. .buttonbook.yml in the current directory
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/buttonbook/internal/catalog"
	"github.com/conneroisu/buttonbook/internal/config"
	"github.com/conneroisu/buttonbook/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "buttonbook",
	Short: "A story catalog and live preview for the Button component",
	Long: `buttonbook renders the Button component's stories in a browser or a
terminal and checks that each rendered button honours its props.

Quick Start:
  buttonbook serve                 Start the preview server on :6006
  buttonbook list                  List all stories
  buttonbook render Primary        Print a story's HTML
  buttonbook check                 Verify every story's rendered output
  buttonbook browse                Browse stories in the terminal`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .buttonbook.yml, can also use BUTTONBOOK_CONFIG_FILE)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().StringP("stories", "s", "", "YAML stories file (default: built-in stories)")

	SetViperBindings(rootCmd, map[string]string{
		"log.level":            "log-level",
		"log.format":           "log-format",
		"catalog.stories_file": "stories",
	})
}

// initConfig selects the config file and enables environment overrides.
func initConfig() {
	switch {
	case cfgFile != "":
		viper.SetConfigFile(cfgFile)
	case os.Getenv("BUTTONBOOK_CONFIG_FILE") != "":
		viper.SetConfigFile(os.Getenv("BUTTONBOOK_CONFIG_FILE"))
	default:
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".buttonbook")
	}

	config.BindEnv(viper.GetViper())

	// a missing or unreadable file falls back to defaults
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads the configuration and builds the logger it describes.
func loadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, newLogger(cfg), nil
}

func newLogger(cfg *config.Config) logging.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logging.LevelInfo
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}

// loadCatalog returns the stories file's catalog, or the built-in stories
// when no file is configured.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.StoriesFile == "" {
		return catalog.NewDefault(cfg.Catalog.Title), nil
	}

	cat := catalog.New(catalog.DefaultMeta(cfg.Catalog.Title))
	if err := cat.Reload(cfg.Catalog.StoriesFile); err != nil {
		return nil, fmt.Errorf("failed to load stories: %w", err)
	}

	return cat, nil
}
