package schema

import (
	"fmt"
	"strings"
)

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the findings store.
	DatabaseBackend string

	// TriageStatus is the reviewer verdict attached to a finding.
	TriageStatus string

	// Taxonomy classifies why the ruleset did or did not catch a fix.
	Taxonomy string

	// ScanMode selects what the scanner is pointed at.
	ScanMode string

	// FetchStatus reports what the fetcher did for a repository.
	FetchStatus string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All triage statuses supported.
const (
	Unreviewed    TriageStatus = "unreviewed" // default
	TruePositive  TriageStatus = "true_positive"
	FalsePositive TriageStatus = "false_positive"
	UnknownStatus TriageStatus = "unknown"
)

// All taxonomy categories supported.
const (
	TaxonomyA Taxonomy = "A"
	TaxonomyB Taxonomy = "B"
	TaxonomyC Taxonomy = "C"
	TaxonomyD Taxonomy = "D"
	TaxonomyE Taxonomy = "E"
)

// All scan modes supported.
const (
	WholeTreeScan    ScanMode = "tree" // default
	ChangedFilesScan ScanMode = "changed"
)

// All fetch outcomes.
const (
	FetchPresent  FetchStatus = "present"
	FetchCloned   FetchStatus = "cloned"
	FetchExcluded FetchStatus = "excluded"
	FetchTimeout  FetchStatus = "timeout"
	FetchFailed   FetchStatus = "failed"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// AllTriageStatuses lists statuses in review-queue order.
var AllTriageStatuses = []TriageStatus{Unreviewed, UnknownStatus, TruePositive, FalsePositive}

// AllTaxonomies lists every taxonomy category.
var AllTaxonomies = []Taxonomy{TaxonomyA, TaxonomyB, TaxonomyC, TaxonomyD, TaxonomyE}

var triageSymbols = map[TriageStatus]string{
	Unreviewed:    "",
	TruePositive:  "👍",
	FalsePositive: "👎",
	UnknownStatus: "🤷",
}

var taxonomyDescriptions = map[Taxonomy]string{
	TaxonomyA: "Detected XSS, and the fix addressed the finding",
	TaxonomyB: "Detected XSS, but the fix was not the fix recommended by the policy",
	TaxonomyC: "Framework not covered",
	TaxonomyD: "Language not covered",
	TaxonomyE: "XSS not detected",
}

// Symbol returns the display symbol for the status. Unreviewed has none.
func (s TriageStatus) Symbol() string {
	return triageSymbols[s]
}

// Valid reports whether s is a known status.
func (s TriageStatus) Valid() bool {
	_, ok := triageSymbols[s]
	return ok
}

// ParseTriageStatus accepts a status name or its display symbol.
func ParseTriageStatus(v string) (TriageStatus, error) {
	v = strings.TrimSpace(v)
	for status, symbol := range triageSymbols {
		if strings.EqualFold(v, string(status)) || (symbol != "" && v == symbol) {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid triage status %q. must be unreviewed, true_positive, false_positive, unknown", v)
}

// Description returns the long form of the category.
func (t Taxonomy) Description() string {
	return taxonomyDescriptions[t]
}

// Valid reports whether t is a known category.
func (t Taxonomy) Valid() bool {
	_, ok := taxonomyDescriptions[t]
	return ok
}

// ParseTaxonomy accepts a category letter in either case.
func ParseTaxonomy(v string) (Taxonomy, error) {
	t := Taxonomy(strings.ToUpper(strings.TrimSpace(v)))
	if !t.Valid() {
		return "", fmt.Errorf("invalid taxonomy %q. must be one of A, B, C, D, E", v)
	}
	return t, nil
}
