package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/internal/parquet"
	"github.com/huangsam/xssbench/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintFindings outputs the review queue, dispatching based on the output format configured.
func PrintFindings(findings []schema.Finding, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, findings)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFindingsCSV(w, findings)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errors.New("--output-file is required for parquet output")
		}
		if err := parquet.WriteFindingsParquet(parquet.ConvertFindings(findings), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFindingsTable(w, findings, cfg)
		}, "Wrote table")
	}
	return nil
}

// writeFindingsTable renders the review queue as a table.
func writeFindingsTable(w io.Writer, findings []schema.Finding, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Repository", "Fix Commit", "Status", "Taxonomy", "Message"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
	})

	width := GetMaxTableMessageWidth(cfg)
	counts := make(map[schema.TriageStatus]int)
	var data [][]string
	for _, f := range findings {
		counts[f.TriageStatus]++
		data = append(data, []string{
			strconv.FormatInt(f.ID, 10),
			f.Repository(),
			shortCommit(f.FixCommit),
			triageLabel(f.TriageStatus, cfg.UseColors),
			taxonomyText(f.Taxonomy),
			contract.TruncateText(contract.FirstLine(f.RepoMessage), width),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d findings (%d unreviewed, %d true positive, %d false positive, %d unknown)\n",
		len(findings), counts[schema.Unreviewed], counts[schema.TruePositive], counts[schema.FalsePositive], counts[schema.UnknownStatus])
	return err
}

// writeFindingsCSV writes the review queue in CSV format, diffs and scanner output included.
func writeFindingsCSV(w io.Writer, findings []schema.Finding) error {
	header := []string{
		"id",
		"repo_url",
		"repo_message",
		"fix_commit",
		"previous_commit",
		"triage_status",
		"taxonomy",
		"reviewer_notes",
		"created_at",
		"diff_text",
		"semgrep_output",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, f := range findings {
			taxonomy := ""
			if f.Taxonomy != nil {
				taxonomy = string(*f.Taxonomy)
			}
			rec := []string{
				strconv.FormatInt(f.ID, 10),
				f.RepoURL,
				f.RepoMessage,
				f.FixCommit,
				f.PreviousCommit,
				string(f.TriageStatus),
				taxonomy,
				f.ReviewerNotes,
				f.CreatedAt.UTC().Format(time.RFC3339),
				f.DiffText,
				f.ScanOutput,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// triageLabel picks the colored or plain label.
func triageLabel(status schema.TriageStatus, useColors bool) string {
	if useColors {
		return contract.GetColorTriageLabel(status)
	}
	return contract.GetPlainTriageLabel(status)
}
