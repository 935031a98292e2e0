package cmd

import (
	"errors"

	"github.com/huangsam/xssbench/core"
	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/internal/iocache"
	"github.com/spf13/cobra"
)

// buildCmd runs the dataset pipeline over a batch document.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Scan every commit in a batch and store findings for triage.",
	Long: `Process a batch of vulnerability-fixing commits into findings.

For each row the pipeline:
- Clones the repository into --download-dir unless it is present or excluded
- Uses the first parent recorded in the batch row
- Extracts the fix diff and the list of changed files
- Skips fixes whose changed files are mostly in unsupported languages
- Checks out the parent, runs Semgrep and restores the original branch
- Stores the finding, skipping pairs that were already built

Examples:
  # Build from a harvested batch
  xssbench build --input github_data.json --progress

  # Scan only the files changed by each fix
  xssbench build --input github_data.json --diffs-only

  # Reuse a ruleset that is already on disk
  xssbench build --input github_data.json --skip-ruleset-download`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := sharedSetupWrapper(cmd, args); err != nil {
			return err
		}
		if cfg.InputFile == "" {
			return errors.New("--input is required")
		}
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBuild(rootCtx, cfg, iocache.Manager); err != nil {
			contract.LogFatal("Build failed", err)
		}
	},
}
