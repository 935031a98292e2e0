package iocache

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/internal/parquet"
)

// ExecuteFindingsExport writes every stored finding to a Parquet file.
func ExecuteFindingsExport(ctx context.Context, store contract.FindingStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalFindings == 0 {
		return errors.New("no findings found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total findings: %d\n", status.TotalFindings)

	findings, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve findings: %w", err)
	}

	rows := parquet.ConvertFindings(findings)
	if err := parquet.WriteFindingsParquet(rows, outputFile); err != nil {
		return fmt.Errorf("failed to write findings: %w", err)
	}
	fmt.Printf("Exported %d findings to: %s\n", len(rows), outputFile)

	fmt.Println("\nExport complete! The Parquet file can be used with:")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}

// ExecuteRenumber shifts finding IDs and prints every change.
func ExecuteRenumber(ctx context.Context, store contract.FindingStore, offset, from, to int64) error {
	shifts, err := store.ShiftIDs(ctx, offset, from, to)
	if err != nil {
		return fmt.Errorf("failed to renumber findings: %w", err)
	}
	if len(shifts) == 0 {
		fmt.Printf("No findings with ids in [%d, %d]\n", from, to)
		return nil
	}
	for _, s := range shifts {
		fmt.Printf("%d -> %d\n", s.OldID, s.NewID)
	}
	fmt.Printf("Renumbered %d findings\n", len(shifts))
	return nil
}
