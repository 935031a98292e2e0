package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/schema"

	"github.com/olekukonko/tablewriter"
)

// PrintFindingDetail prints every field of one finding. Text output shows the
// metadata as a table followed by the diff and scanner output verbatim.
func PrintFindingDetail(f schema.Finding, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, f)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeFindingDetail(w, f, cfg)
	}, "Wrote finding")
}

func writeFindingDetail(w io.Writer, f schema.Finding, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Field", "Value"})

	taxonomy := taxonomyText(f.Taxonomy)
	if f.Taxonomy != nil {
		taxonomy = fmt.Sprintf("%s (%s)", *f.Taxonomy, f.Taxonomy.Description())
	}
	data := [][]string{
		{"ID", strconv.FormatInt(f.ID, 10)},
		{"Repository", f.RepoURL},
		{"Fix Commit", f.FixCommit},
		{"Previous Commit", f.PreviousCommit},
		{"Status", triageLabel(f.TriageStatus, cfg.UseColors)},
		{"Taxonomy", taxonomy},
		{"Created", f.CreatedAt.Local().Format(time.DateTime)},
		{"Message", contract.TruncateText(contract.FirstLine(f.RepoMessage), GetMaxTableMessageWidth(cfg))},
	}
	if f.ReviewerNotes != "" {
		data = append(data, []string{"Notes", f.ReviewerNotes})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, section := range []struct{ title, body string }{
		{"Commit message", f.RepoMessage},
		{"Diff", f.DiffText},
		{"Scanner output", f.ScanOutput},
	} {
		if _, err := fmt.Fprintf(w, "\n== %s ==\n%s\n", section.title, strings.TrimRight(section.body, "\n")); err != nil {
			return err
		}
	}
	return nil
}
