// Package schema has the data types shared by the pipeline, the store and the outputs.
package schema

import (
	"strings"
	"time"
)

// GitHubURLPrefix is prepended to an owner/name identifier to build a repository URL.
const GitHubURLPrefix = "https://github.com/"

// Finding is one candidate XSS fix with everything a reviewer needs to triage it.
type Finding struct {
	ID             int64        `json:"id"`
	RepoURL        string       `json:"repo_url"`
	RepoMessage    string       `json:"repo_message"`
	FixCommit      string       `json:"fix_commit"`
	PreviousCommit string       `json:"previous_commit"`
	DiffText       string       `json:"diff_text"`
	ScanOutput     string       `json:"semgrep_output"`
	TriageStatus   TriageStatus `json:"triage_status"`
	Taxonomy       *Taxonomy    `json:"taxonomy,omitempty"`
	ReviewerNotes  string       `json:"reviewer_notes"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Repository returns the owner/name part of RepoURL.
func (f Finding) Repository() string {
	return strings.TrimPrefix(f.RepoURL, GitHubURLPrefix)
}

// RepoURLFor builds the stored URL for an owner/name identifier.
func RepoURLFor(repository string) string {
	return GitHubURLPrefix + repository
}

// TriageUpdate carries reviewer edits. Nil fields are left untouched.
type TriageUpdate struct {
	Status   *TriageStatus
	Taxonomy *Taxonomy
	Notes    *string
}

// Empty reports whether the update changes nothing.
func (u TriageUpdate) Empty() bool {
	return u.Status == nil && u.Taxonomy == nil && u.Notes == nil
}

// BuildSummary reports the outcome of one dataset build.
type BuildSummary struct {
	RunID      string        `json:"run_id"`
	Total      int           `json:"total"`
	Created    int           `json:"created"`
	Skipped    int           `json:"skipped"`
	Suppressed int           `json:"suppressed"`
	Errored    int           `json:"errored"`
	Duration   time.Duration `json:"duration"`
}

// KeyShift records one renumbered finding.
type KeyShift struct {
	OldID int64 `json:"old_id"`
	NewID int64 `json:"new_id"`
}
