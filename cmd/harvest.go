package cmd

import (
	"github.com/huangsam/xssbench/core"
	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/internal/iocache"
	"github.com/spf13/cobra"
)

// harvestCmd turns raw commit documents into a batch document.
var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Convert raw GitHub commit documents into a build batch.",
	Long: `Walk a directory of GitHub commit documents and write a batch for 'build'.

The directory is laid out as owner/repo/<commit>.json, one GitHub API commit
object per file. Parents are resolved from a local clone when possible and
fall back to the parents listed in the document.

The batch is written to --output-file (default: github_data.json).

Examples:
  # Harvest the default directory
  xssbench harvest

  # Harvest without cloning anything
  xssbench harvest --directory raw_commits --no-download --output-file batch.json`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHarvest(rootCtx, cfg, iocache.Manager); err != nil {
			contract.LogFatal("Harvest failed", err)
		}
	},
}
