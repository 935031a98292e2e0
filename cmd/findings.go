package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/internal/iocache"
	"github.com/huangsam/xssbench/internal/outwriter"
	"github.com/huangsam/xssbench/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// findingsCmd focused on reviewing and maintaining stored findings.
var findingsCmd = &cobra.Command{
	Use:   "findings",
	Short: "Review and maintain stored findings",
	Long: `Review findings produced by 'build' and maintain the findings store.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  list     - Show findings in review order
  show     - Show one finding with its diff and scanner output
  update   - Record a triage decision
  status   - Show store statistics and connection info
  clear    - Remove all stored findings
  export   - Write all findings to a Parquet file
  migrate  - Move the store schema to a given version
  renumber - Shift a range of finding IDs

Examples:
  # Review unreviewed findings first
  xssbench findings list

  # Mark finding 42 as a confirmed XSS fix
  xssbench findings update 42 --status true_positive --taxonomy B`,
}

// findingsListCmd lists every stored finding.
var findingsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List findings in review order",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		findings, err := iocache.Manager.GetFindingStore().List(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to list findings", err)
		}
		if err := outwriter.NewOutWriter().WriteFindings(findings, cfg); err != nil {
			contract.LogFatal("Failed to print findings", err)
		}
	},
}

// findingsShowCmd prints one finding in full.
var findingsShowCmd = &cobra.Command{
	Use:     "show ID",
	Short:   "Show a finding with its commit message, diff and scanner output",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		id, err := parseFindingID(args[0])
		if err != nil {
			contract.LogFatal("Invalid finding id", err)
		}
		f, err := iocache.Manager.GetFindingStore().Get(rootCtx, id)
		if err != nil {
			contract.LogFatal("Failed to get finding", err)
		}
		if err := outwriter.NewOutWriter().WriteFinding(f, cfg); err != nil {
			contract.LogFatal("Failed to print finding", err)
		}
	},
}

// findingsUpdateCmd records a reviewer decision.
var findingsUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Record a triage decision for a finding",
	Long: `Set the triage status, taxonomy category or notes of one finding.

Only the flags you pass are changed.

Examples:
  xssbench findings update 42 --status false_positive --notes "sanitized upstream"
  xssbench findings update 42 --taxonomy C`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseFindingID(args[0])
		if err != nil {
			contract.LogFatal("Invalid finding id", err)
		}
		update, err := triageUpdateFromFlags(cmd)
		if err != nil {
			contract.LogFatal("Invalid update", err)
		}
		if err := iocache.Manager.GetFindingStore().Update(rootCtx, id, update); err != nil {
			contract.LogFatal("Failed to update finding", err)
		}
		fmt.Printf("Finding %d updated.\n", id)
	},
}

// findingsStatusCmd shows store status.
var findingsStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display store statistics and connection details",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetFindingStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		iocache.PrintStoreStatus(status)
	},
}

// findingsClearCmd removes every stored finding.
var findingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored findings",
	Long: `Delete all findings from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the findings and migration tables

Examples:
  # Clear the default SQLite store
  xssbench findings clear

  # Clear a MySQL store (set connection string via env variable)
  XSSBENCH_STORE_BACKEND=mysql XSSBENCH_STORE_DB_CONNECT="..." xssbench findings clear`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearFindings(cfg.StoreBackend, sqlitePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear findings", err)
		}
		fmt.Println("Findings cleared successfully.")
	},
}

// findingsExportCmd writes the store to Parquet.
var findingsExportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export all findings to a Parquet file (requires --output-file)",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteFindingsExport(rootCtx, iocache.Manager.GetFindingStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export findings", err)
		}
	},
}

// findingsMigrateCmd moves the schema to a target version.
var findingsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the findings store schema",
	Long: `Apply or roll back findings store migrations.

Examples:
  # Upgrade to the latest schema
  xssbench findings migrate

  # Roll back everything
  xssbench findings migrate --target-version 0`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		connStr := cfg.StoreDBConnect
		if cfg.StoreBackend == schema.SQLiteBackend {
			connStr = sqlitePath()
		}
		if err := iocache.MigrateFindings(cfg.StoreBackend, connStr, viper.GetInt("target-version")); err != nil {
			contract.LogFatal("Failed to migrate findings store", err)
		}
	},
}

// findingsRenumberCmd shifts a range of finding IDs.
var findingsRenumberCmd = &cobra.Command{
	Use:   "renumber",
	Short: "Shift finding IDs by an offset",
	Long: `Move every finding with an ID in [--from, --to] by --offset.

The change is refused when a target ID already belongs to another finding.

Examples:
  # Make room for 603 findings imported from another store
  xssbench findings renumber --offset 603

  # Close a gap left by deleted findings
  xssbench findings renumber --offset -1 --from 604`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		offset, _ := cmd.Flags().GetInt64("offset")
		from, _ := cmd.Flags().GetInt64("from")
		to, _ := cmd.Flags().GetInt64("to")

		store := iocache.Manager.GetFindingStore()
		if to == 0 {
			status, err := store.GetStatus()
			if err != nil {
				contract.LogFatal("Failed to get store status", err)
			}
			to = max(status.LastID, from)
		}
		if err := iocache.ExecuteRenumber(rootCtx, store, offset, from, to); err != nil {
			contract.LogFatal("Failed to renumber findings", err)
		}
	},
}

// sqlitePath returns the SQLite file configured by --store-db-connect or the default.
func sqlitePath() string {
	if cfg.StoreDBConnect != "" {
		return cfg.StoreDBConnect
	}
	return contract.GetStoreDBFilePath()
}

// parseFindingID parses a positive finding ID argument.
func parseFindingID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("id must be a positive integer, got %q", raw)
	}
	return id, nil
}

// triageUpdateFromFlags collects the update flags that were passed.
func triageUpdateFromFlags(cmd *cobra.Command) (schema.TriageUpdate, error) {
	var update schema.TriageUpdate
	flags := cmd.Flags()

	if flags.Changed("status") {
		raw, _ := flags.GetString("status")
		status, err := schema.ParseTriageStatus(raw)
		if err != nil {
			return update, err
		}
		update.Status = &status
	}
	if flags.Changed("taxonomy") {
		raw, _ := flags.GetString("taxonomy")
		taxonomy, err := schema.ParseTaxonomy(raw)
		if err != nil {
			return update, err
		}
		update.Taxonomy = &taxonomy
	}
	if flags.Changed("notes") {
		notes, _ := flags.GetString("notes")
		update.Notes = &notes
	}

	if update.Empty() {
		return update, errors.New("nothing to update: pass --status, --taxonomy or --notes")
	}
	return update, nil
}
