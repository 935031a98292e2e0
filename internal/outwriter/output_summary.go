package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintBuildSummary outputs the build summary, dispatching based on the output format configured.
func PrintBuildSummary(summary schema.BuildSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryCSV(w, summary)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryTable(w, summary, cfg)
		}, "Wrote table")
	}
}

// summaryRows pairs each outcome with its count, in display order.
func summaryRows(s schema.BuildSummary) [][]string {
	return [][]string{
		{"Total", strconv.Itoa(s.Total)},
		{"Created", strconv.Itoa(s.Created)},
		{"Skipped", strconv.Itoa(s.Skipped)},
		{"Suppressed", strconv.Itoa(s.Suppressed)},
		{"Errored", strconv.Itoa(s.Errored)},
	}
}

func writeSummaryTable(w io.Writer, s schema.BuildSummary, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Outcome", "Rows"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(summaryRows(s)); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Build %s completed in %v. Store backend: %s\n", s.RunID, s.Duration, cfg.StoreBackend)
	return err
}

func writeSummaryCSV(w io.Writer, s schema.BuildSummary) error {
	header := []string{"run_id", "total", "created", "skipped", "suppressed", "errored", "duration_ms"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		return cw.Write([]string{
			s.RunID,
			strconv.Itoa(s.Total),
			strconv.Itoa(s.Created),
			strconv.Itoa(s.Skipped),
			strconv.Itoa(s.Suppressed),
			strconv.Itoa(s.Errored),
			strconv.FormatInt(s.Duration.Milliseconds(), 10),
		})
	})
}
