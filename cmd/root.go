package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/internal/iocache"
	"github.com/huangsam/xssbench/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "xssbench",
	Short: "Build a benchmark of XSS fixes from vulnerability-fixing commits.",
	Long: `xssbench turns a batch of vulnerability-fixing commits into triage-ready findings.

For every commit it clones the repository, resolves the parent, extracts the fix
diff, scans the vulnerable tree with Semgrep and stores the result for review.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigLocation()

	// Set environment variable prefix
	viper.SetEnvPrefix("XSSBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("store-backend", schema.SQLiteBackend)
	viper.SetDefault("store-db-connect", "")
	viper.SetDefault("download-dir", contract.DefaultDownloadDir)
	viper.SetDefault("log-level", contract.DefaultLogLevel)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
	viper.SetDefault("clone-timeout", contract.DefaultCloneTimeout.String())
	viper.SetDefault("exclude-repos", contract.DefaultExcludeRepos)
	viper.SetDefault("supported-extensions", contract.DefaultSupportedExtensions)
	viper.SetDefault("ruleset-url", contract.DefaultRulesetURL)
	viper.SetDefault("ruleset-file", contract.DefaultRulesetFile)
	viper.SetDefault("semgrep-binary", contract.DefaultSemgrepBinary)
	viper.SetDefault("directory", contract.DefaultHarvestDir)
}

// setConfigLocation points Viper at --config or the default search paths.
func setConfigLocation() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".xssbench") // Name of config file (without extension)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
}

// loadConfigFile merges the config file, if any, into Viper.
func loadConfigFile() error {
	setConfigLocation()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// resolveConfig unmarshals every source into the raw input and validates it into cfg.
func resolveConfig() error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and parsing into the global cfg.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	contract.ConfigureLogging(os.Stderr, cfg.LogLevel)
	return nil
}

// sharedSetup validates config and opens the findings store.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	if err := resolveConfig(); err != nil {
		return err
	}

	// 4. Initialize persistence layer with validated config
	if err := iocache.InitStores(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}

	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// storeSetup validates config without opening the store.
// Clearing and migrating act on the database directly and must not trigger
// the automatic upgrade that opening a store performs.
func storeSetup(_ *cobra.Command, _ []string) error {
	return resolveConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
