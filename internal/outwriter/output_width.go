package outwriter

import (
	"os"

	"github.com/huangsam/xssbench/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableMessageWidth calculates the maximum width for the commit message
// column in the findings table based on terminal width.
func GetMaxTableMessageWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// ID + Repository + Fix Commit + Status + Taxonomy, with borders/padding
	baseWidth := 8 + 30 + 12 + 20 + 10
	baseWidth += 15

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
