package core

import (
	"path"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2"
	"github.com/huangsam/xssbench/internal/contract"
	log "github.com/sirupsen/logrus"
)

// ExtensionSet is the allow-list of file extensions the ruleset understands.
type ExtensionSet map[string]struct{}

// NewExtensionSet builds a set from extensions such as ".js".
func NewExtensionSet(exts []string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, ext := range exts {
		set[ext] = struct{}{}
	}
	return set
}

// DefaultExtensionSet returns the languages covered by the XSS ruleset.
func DefaultExtensionSet() ExtensionSet {
	return NewExtensionSet(contract.SplitList(contract.DefaultSupportedExtensions))
}

// Supports reports whether name has an allowed extension.
func (s ExtensionSet) Supports(name string) bool {
	_, ok := s[fileExtension(name)]
	return ok
}

// LangSupported reports whether few enough files fall outside the allow-list.
// A list is rejected when unsupported files exceed a fifth of it, rounded down.
func LangSupported(files []string, allow ExtensionSet) bool {
	maxUnsupported := len(files) / 5
	var unsupported []string
	for _, f := range files {
		if !allow.Supports(f) {
			unsupported = append(unsupported, f)
		}
	}
	if len(unsupported) <= maxUnsupported {
		return true
	}
	log.WithFields(log.Fields{
		"unsupported": len(unsupported),
		"total":       len(files),
		"languages":   detectLanguages(unsupported),
	}).Info("Changed files are mostly in languages the ruleset does not cover")
	return false
}

// detectLanguages names the languages of files for logging.
func detectLanguages(files []string) []string {
	seen := map[string]struct{}{}
	for _, f := range files {
		lang, _ := enry.GetLanguageByExtension(f)
		if lang == "" {
			lang = "unknown"
		}
		seen[lang] = struct{}{}
	}
	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// fileExtension returns the extension of the base name, treating a leading dot
// as part of the name so ".eslintrc" has none and ".eslintrc.json" has ".json".
func fileExtension(name string) string {
	base := strings.TrimLeft(path.Base(strings.ReplaceAll(name, "\\", "/")), ".")
	return path.Ext(base)
}
