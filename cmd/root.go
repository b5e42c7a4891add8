// Package cmd implements the conddispatch command line.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/conddispatch/internal/config"
	"github.com/zjrosen/conddispatch/internal/log"
)

const defaultConfigPath = ".conddispatch/config.yaml"

var version = "dev"

// app holds the state shared by every subcommand of one invocation.
type app struct {
	cfgFile string
	debug   bool
	cfg     config.Config
	cleanup func()
}

func newRootCmd() *cobra.Command {
	return (&app{}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "conddispatch",
		Short: "Conditional dispatch playground",
		Long: `conddispatch resolves calls against groups of candidate implementations,
picking the first registered candidate whose predicate accepts the arguments.

Built-in groups: area (circle, rectangle, square) and perimeter.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: .conddispatch/config.yaml or ~/.config/conddispatch/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false,
		"write a debug log (also CONDDISPATCH_DEBUG=1)")

	root.AddCommand(
		newAreaCmd(a),
		newRunCmd(a),
		newGroupsCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) setup(*cobra.Command, []string) error {
	cfg, err := loadConfig(a.cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	if a.debug || os.Getenv("CONDDISPATCH_DEBUG") != "" {
		path := cfg.Log.Path
		if env := os.Getenv("CONDDISPATCH_LOG"); env != "" {
			path = env
		}
		cleanup, err := log.Init(path)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		log.SetMinLevel(log.ParseLevel(cfg.Log.Level))
		a.cleanup = cleanup
		log.Info(log.CatConfig, "conddispatch starting", "version", version, "config", a.cfgFile)
	}
	return nil
}

func (a *app) teardown() {
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
}

// loadConfig layers the config file, if any, over the defaults. An explicit
// path must exist; the implicit lookup is optional.
func loadConfig(cfgFile string) (config.Config, error) {
	v := viper.New()
	defaults := config.Defaults()
	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.expiration", defaults.Cache.Expiration)
	v.SetDefault("cache.cleanup_interval", defaults.Cache.CleanupInterval)
	v.SetDefault("cache.sliding", defaults.Cache.Sliding)
	v.SetDefault("log.path", defaults.Log.Path)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
	v.SetDefault("metrics.addr", defaults.Metrics.Addr)

	v.SetEnvPrefix("CONDDISPATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config lookup order:
	// 1. --config
	// 2. .conddispatch/config.yaml (current directory)
	// 3. ~/.config/conddispatch/config.yaml (user config)
	switch {
	case cfgFile != "":
		v.SetConfigFile(cfgFile)
	case fileExists(defaultConfigPath):
		v.SetConfigFile(defaultConfigPath)
	default:
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "conddispatch"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return config.Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return config.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Execute runs the root command
func Execute() error {
	a := &app{}
	defer a.teardown()
	return a.rootCmd().Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}
