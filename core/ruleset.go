package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrRulesetInvalid is returned when a downloaded ruleset is not a rules document.
var ErrRulesetInvalid = errors.New("ruleset is not a valid rules document")

// maxRulesetSize bounds how much of the ruleset response is read.
const maxRulesetSize = 32 << 20

type rulesetDoc struct {
	Rules []map[string]any `yaml:"rules"`
}

// ValidateRuleset checks that data is YAML with a non-empty rules list.
func ValidateRuleset(data []byte) error {
	var doc rulesetDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrRulesetInvalid, err)
	}
	if len(doc.Rules) == 0 {
		return fmt.Errorf("%w: no rules found", ErrRulesetInvalid)
	}
	return nil
}

// EnsureRuleset downloads the ruleset at url into dest, replacing any previous copy
// only once the download validates. It returns the absolute path of dest.
func EnsureRuleset(ctx context.Context, client *http.Client, url string, dest string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	log.WithField("url", url).Info("Downloading ruleset")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("invalid ruleset url %q: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download ruleset: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status downloading ruleset: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRulesetSize))
	if err != nil {
		return "", fmt.Errorf("failed to read ruleset: %w", err)
	}
	if err := ValidateRuleset(data); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", err
	}
	if err := writeFileAtomic(abs, data); err != nil {
		return "", fmt.Errorf("failed to save ruleset to %s: %w. Check that the directory is writable", abs, err)
	}
	return abs, nil
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".ruleset-*.yaml")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
