// Command assetserve serves a static asset directory over HTTP, answering the
// root path with a single entry-point file. The listening port is taken from
// the PORT environment variable.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/f4ah6o/assetserve/cmd"
	"github.com/f4ah6o/assetserve/internal/config"
	"github.com/f4ah6o/assetserve/internal/inspect"
	"github.com/f4ah6o/assetserve/internal/logging"
	"github.com/f4ah6o/assetserve/internal/server"
)

func rootMain(command *cobra.Command, _ []string) error {
	opts := config.Options{
		ConfigPath: rootConfiguration.config,
		EnvFile:    rootConfiguration.envFile,
		AssetDir:   rootConfiguration.assets,
		EntryFile:  rootConfiguration.entry,
		LogLevel:   rootConfiguration.logLevel,
	}
	if command.Flags().Changed("max-connections") {
		opts.MaxConnections = &rootConfiguration.maxConnections
	}

	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)

	// Inspection problems never prevent startup.
	inspectLogger := logger.Sublogger("inspect")
	if report, err := inspect.Entry(cfg.EntryFile, cfg.AssetDir); err != nil {
		inspectLogger.Warn(err)
	} else {
		report.Log(inspectLogger)
	}

	return server.New(cfg, logger.Sublogger("server")).ListenAndServe()
}

var rootCommand = &cobra.Command{
	Use:          "assetserve",
	Short:        "Serve a static asset directory with an entry point for /",
	Args:         cobra.NoArgs,
	Run:          cmd.Mainify(rootMain),
	SilenceUsage: true,
}

var rootConfiguration struct {
	// config is the path to an optional TOML or YAML configuration file.
	config string
	// envFile is the dotenv file to load.
	envFile string
	// assets is the asset directory.
	assets string
	// entry is the entry-point file.
	entry string
	// maxConnections caps simultaneous connections.
	maxConnections int
	// logLevel is the log level name.
	logLevel string
}

func init() {
	flags := rootCommand.Flags()
	flags.SortFlags = false
	flags.StringVarP(&rootConfiguration.config, "config", "c", "", "Configuration file (.toml, .yaml or .yml)")
	flags.StringVar(&rootConfiguration.envFile, "env-file", "", "Environment file to load (default \""+config.DefaultEnvFile+"\" if present)")
	flags.StringVar(&rootConfiguration.assets, "assets", "", "Asset directory (default \""+config.DefaultAssetDir+"\")")
	flags.StringVar(&rootConfiguration.entry, "entry", "", "Entry-point file served for / (default \""+config.DefaultEntryFile+"\")")
	flags.IntVar(&rootConfiguration.maxConnections, "max-connections", 0, "Maximum simultaneous connections (0 for unlimited)")
	flags.StringVar(&rootConfiguration.logLevel, "log-level", "", "Log level (disabled, error, warn, info, debug, trace)")
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
