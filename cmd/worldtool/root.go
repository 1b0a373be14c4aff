// Root command for the worldtool CLI.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OnlyWorlds/worldtool/internal/paths"
	"github.com/OnlyWorlds/worldtool/pkg/worldtool"
)

// Exit codes: 0 success, 1 user error, 2 system error.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
	flagWorld     string
	flagVerbose   bool
)

// Values loaded from config.yaml by PersistentPreRunE so all
// subcommands can use them.
var (
	configDataDir string
	configBaseURL string
	configAPIKey  string
	configAPIPin  string
	configWorld   string
)

var rootCmd = &cobra.Command{
	Use:     "worldtool",
	Short:   "Worldtool is a client for the world API",
	Version: worldtool.Version,
	Long: `Worldtool edits world records stored behind the remote world API.
It infers field kinds from live data, keeps cross-record references
consistent, and caches fetched records locally for offline inspection.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		configDataDir = cfg.GetString(cfgKeyDataDir)
		configBaseURL = cfg.GetString(cfgKeyBaseURL)
		configAPIKey = cfg.GetString(cfgKeyAPIKey)
		configAPIPin = cfg.GetString(cfgKeyAPIPin)
		configWorld = cfg.GetString(cfgKeyWorld)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $(CWD)/.worldtool)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.worldtool-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagWorld, "world", "", "world id (overrides config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(countsCmd)
}

// setupLogging installs the process-wide slog handler. Logs go to
// stderr so --json output on stdout stays machine-readable.
func setupLogging() {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// resolveDataDir returns the data directory path with precedence:
// --data-dir flag > config.yaml data_dir > WORLDTOOL_DATA_DIR env >
// default $(CWD)/.worldtool-db.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveConfigDir returns the configuration directory with precedence:
// --config-dir flag > WORLDTOOL_CONFIG_DIR env > DefaultConfigDir().
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// resolveWorldID returns the active world id: --world flag > config.yaml.
// May be empty; the API client then adopts the key's sole world.
func resolveWorldID() string {
	if flagWorld != "" {
		return flagWorld
	}
	return configWorld
}
