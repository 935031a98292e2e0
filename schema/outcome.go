package schema

// Failure identifies why a pipeline step produced no usable text.
type Failure int

// All failure kinds. FailNone means the step succeeded.
const (
	FailNone Failure = iota
	FailDiffRun
	FailDiffDecode
	FailFileListRun
	FailFileListDecode
	FailScanRun
	FailScanDecode
	FailNotSupported
	FailOnlyAdded
)

// These strings are persisted in place of the missing text. Reviewers and
// older datasets match on them, so they must not change.
var failureSentinels = map[Failure]string{
	FailDiffRun:        "git diff run returned an error.",
	FailDiffDecode:     "couldn't decode git diff output.",
	FailFileListRun:    "git diff for files only returned an error.",
	FailFileListDecode: "couldn't decode git diff files.",
	FailScanRun:        "semgrep run returned an error.",
	FailScanDecode:     "couldn't decode semgrep output.",
	FailNotSupported:   "Not Supported.",
	FailOnlyAdded:      "only added files diff'ed.",
}

// Sentinel returns the persisted marker for f, or "" for FailNone.
func (f Failure) Sentinel() string {
	return failureSentinels[f]
}

// String implements fmt.Stringer.
func (f Failure) String() string {
	if f == FailNone {
		return "ok"
	}
	return f.Sentinel()
}

// TextResult is the outcome of a step that yields text (diff, scanner output).
type TextResult struct {
	Text    string
	Failure Failure
}

// OK reports whether the step succeeded.
func (r TextResult) OK() bool {
	return r.Failure == FailNone
}

// Value returns the text on success, otherwise the failure sentinel.
func (r TextResult) Value() string {
	if r.OK() {
		return r.Text
	}
	return r.Failure.Sentinel()
}

// TextFailure builds a failed TextResult.
func TextFailure(f Failure) TextResult {
	return TextResult{Failure: f}
}

// FileListResult is the outcome of listing changed files.
// Files must only be read when OK returns true.
type FileListResult struct {
	Files   []string
	Failure Failure
}

// OK reports whether the listing succeeded.
func (r FileListResult) OK() bool {
	return r.Failure == FailNone
}
