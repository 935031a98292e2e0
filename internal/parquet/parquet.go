// Package parquet provides data structures and functions for exporting triaged
// findings to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/xssbench/schema"
	"github.com/parquet-go/parquet-go"
)

// Finding is one stored finding as a Parquet row.
// This struct maps to the finding database table.
type Finding struct {
	// ID is the store-assigned identifier
	ID int64 `parquet:"id,snappy"`

	// RepoURL is the GitHub URL of the repository
	RepoURL string `parquet:"repo_url,snappy"`

	// RepoMessage is the message of the fix commit
	RepoMessage string `parquet:"repo_message,snappy"`

	FixCommit      string `parquet:"fix_commit,snappy"`
	PreviousCommit string `parquet:"previous_commit,snappy"`

	// DiffText and ScanOutput hold either the captured text or a failure marker
	DiffText   string `parquet:"diff_text,snappy"`
	ScanOutput string `parquet:"semgrep_results_on_diff,snappy"`

	TriageStatus string `parquet:"triage_status,snappy"`

	// Taxonomy is unset until a reviewer classifies the finding
	Taxonomy *string `parquet:"taxonomy,optional,snappy"`

	ReviewerNotes string `parquet:"reviewer_notes,snappy"`

	// CreatedAt is when the pipeline stored the finding (TIMESTAMP with nanosecond precision)
	CreatedAt time.Time `parquet:"created_at,snappy"`
}

// WriteFindingsParquet writes a slice of Finding structs to a Parquet file.
func WriteFindingsParquet(data []Finding, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the Finding struct tags
	writer := parquet.NewGenericWriter[Finding](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// ConvertFindings converts schema.Finding to Finding for Parquet export.
func ConvertFindings(findings []schema.Finding) []Finding {
	result := make([]Finding, len(findings))
	for i, f := range findings {
		var taxonomy *string
		if f.Taxonomy != nil {
			t := string(*f.Taxonomy)
			taxonomy = &t
		}
		result[i] = Finding{
			ID:             f.ID,
			RepoURL:        f.RepoURL,
			RepoMessage:    f.RepoMessage,
			FixCommit:      f.FixCommit,
			PreviousCommit: f.PreviousCommit,
			DiffText:       f.DiffText,
			ScanOutput:     f.ScanOutput,
			TriageStatus:   string(f.TriageStatus),
			Taxonomy:       taxonomy,
			ReviewerNotes:  f.ReviewerNotes,
			CreatedAt:      f.CreatedAt,
		}
	}
	return result
}
