package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/xssbench/schema"
	log "github.com/sirupsen/logrus"
)

// Color variables for console output.
var (
	TruePositiveColor  = color.New(color.FgRed, color.Bold) // confirmed XSS
	FalsePositiveColor = color.New(color.FgGreen)
	UnknownColor       = color.New(color.FgYellow)
	UnreviewedColor    = color.New(color.FgCyan)
)

// GetPlainTriageLabel returns the status name followed by its symbol, if any.
func GetPlainTriageLabel(status schema.TriageStatus) string {
	if sym := status.Symbol(); sym != "" {
		return string(status) + " " + sym
	}
	return string(status)
}

// GetColorTriageLabel returns a colored triage label for console output (table).
func GetColorTriageLabel(status schema.TriageStatus) string {
	text := GetPlainTriageLabel(status)

	switch status {
	case schema.TruePositive:
		return TruePositiveColor.Sprint(text)
	case schema.FalsePositive:
		return FalsePositiveColor.Sprint(text)
	case schema.UnknownStatus:
		return UnknownColor.Sprint(text)
	default:
		return UnreviewedColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// SplitList splits a comma-separated option into trimmed, non-empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	log.WithError(err).Error(msg)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	log.WithError(err).Warn(msg)
}

// GetStoreDBFilePath returns the default path to the SQLite findings database.
// RULE_STATS_DB overrides it for compatibility with existing review setups.
func GetStoreDBFilePath() string {
	if p := os.Getenv("RULE_STATS_DB"); p != "" {
		return p
	}
	return DefaultStoreDBFile
}

// TruncateText shortens s to maxWidth runes with an ellipsis suffix.
// Requires maxWidth > 3 so the ellipsis fits alongside at least one rune.
func TruncateText(s string, maxWidth int) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// FirstLine returns the first line of a commit message.
func FirstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
