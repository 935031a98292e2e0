// Package cmd defines the command-line interface for xssbench.
package cmd

import (
	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(harvestCmd)
	rootCmd.AddCommand(findingsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the findings subcommands to the parent findings command
	findingsCmd.AddCommand(findingsListCmd)
	findingsCmd.AddCommand(findingsShowCmd)
	findingsCmd.AddCommand(findingsUpdateCmd)
	findingsCmd.AddCommand(findingsStatusCmd)
	findingsCmd.AddCommand(findingsClearCmd)
	findingsCmd.AddCommand(findingsExportCmd)
	findingsCmd.AddCommand(findingsMigrateCmd)
	findingsCmd.AddCommand(findingsRenumberCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Findings store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for sqlite (file path) or mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("download-dir", contract.DefaultDownloadDir, "Directory that holds cloned repositories")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: error or warn or info or debug or trace")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of buildCmd to Viper
	buildCmd.Flags().String("input", "", "Path to the batch document of vulnerability-fixing commits")
	buildCmd.Flags().Bool("diffs-only", false, "Scan only files changed by the fix instead of the whole tree")
	buildCmd.Flags().Bool("skip-ruleset-download", false, "Use the ruleset file on disk without refreshing it")
	buildCmd.Flags().Bool("progress", false, "Show a progress bar on stderr")
	if err := viper.BindPFlags(buildCmd.Flags()); err != nil {
		contract.LogFatal("Error binding build flags", err)
	}

	// Bind all flags of harvestCmd to Viper
	harvestCmd.Flags().String("directory", contract.DefaultHarvestDir, "Directory of raw commit documents laid out as owner/repo/commit.json")
	harvestCmd.Flags().Bool("no-download", false, "Do not clone repositories to resolve parent commits")
	if err := viper.BindPFlags(harvestCmd.Flags()); err != nil {
		contract.LogFatal("Error binding harvest flags", err)
	}

	// Reviewer edits are read straight from the command so unset flags stay unset.
	findingsUpdateCmd.Flags().String("status", "", "Triage status: unreviewed or true_positive or false_positive or unknown")
	findingsUpdateCmd.Flags().String("taxonomy", "", "Taxonomy category: A, B, C, D or E")
	findingsUpdateCmd.Flags().String("notes", "", "Reviewer notes (pass an empty string to clear)")

	// Bind all flags of findingsMigrateCmd to Viper
	findingsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(findingsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding findings migrate flags", err)
	}

	findingsRenumberCmd.Flags().Int64("offset", 0, "Amount to add to every selected ID (may be negative)")
	findingsRenumberCmd.Flags().Int64("from", 1, "First ID to renumber")
	findingsRenumberCmd.Flags().Int64("to", 0, "Last ID to renumber (0 means the highest stored ID)")
}
