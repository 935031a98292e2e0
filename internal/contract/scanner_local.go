package contract

import "context"

// SemgrepScanner implements the Scanner interface with the semgrep CLI.
type SemgrepScanner struct {
	runner    Runner
	binary    string
	ruleset   string
	extraArgs []string
}

var _ Scanner = &SemgrepScanner{} // Compile-time check

// NewSemgrepScanner creates a scanner that runs binary with the given ruleset file.
func NewSemgrepScanner(r Runner, binary string, ruleset string, extraArgs []string) *SemgrepScanner {
	if binary == "" {
		binary = DefaultSemgrepBinary
	}
	return &SemgrepScanner{runner: r, binary: binary, ruleset: ruleset, extraArgs: extraArgs}
}

// Args returns the command-line arguments used for targets.
func (s *SemgrepScanner) Args(targets []string) []string {
	args := make([]string, 0, 2+len(s.extraArgs)+len(targets))
	args = append(args, "--config", s.ruleset)
	args = append(args, s.extraArgs...)
	return append(args, targets...)
}

// Scan implements the Scanner interface.
func (s *SemgrepScanner) Scan(ctx context.Context, repoPath string, targets []string) ProcResult {
	return s.runner.Run(ctx, repoPath, s.binary, s.Args(targets)...)
}
