// Package outwriter has output and writer logic.
package outwriter

import (
	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the command layer.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteFindings prints the review queue using the configured output format.
func (ow *OutWriter) WriteFindings(findings []schema.Finding, cfg *contract.Config) error {
	return PrintFindings(findings, cfg)
}

// WriteFinding prints one finding in full using the configured output format.
func (ow *OutWriter) WriteFinding(finding schema.Finding, cfg *contract.Config) error {
	return PrintFindingDetail(finding, cfg)
}

// WriteBuildSummary prints the outcome of a dataset build using the configured output format.
func (ow *OutWriter) WriteBuildSummary(summary schema.BuildSummary, cfg *contract.Config) error {
	return PrintBuildSummary(summary, cfg)
}
