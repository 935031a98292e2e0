package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/schema"
)

// WithCheckout checks out commit, runs fn and always restores the previously
// checked-out ref, even when fn fails or panics. When the current ref cannot be
// recorded, nothing is checked out and fn does not run.
func WithCheckout(ctx context.Context, client contract.GitClient, repoPath string, commit string, fn func() error) (err error) {
	previous, err := client.GetCurrentRef(ctx, repoPath)
	if err != nil {
		return fmt.Errorf("failed to record current ref: %w", err)
	}
	if err := client.Checkout(ctx, repoPath, commit); err != nil {
		return fmt.Errorf("failed to check out %s: %w", commit, err)
	}
	defer func() {
		// Restore even when ctx was cancelled mid-scan.
		if rerr := client.Checkout(context.WithoutCancel(ctx), repoPath, previous); rerr != nil {
			loggerFrom(ctx).WithError(rerr).WithField("ref", previous).Error("Failed to restore checkout")
			if err == nil {
				err = fmt.Errorf("failed to restore %s: %w", previous, rerr)
			}
		}
	}()
	return fn()
}

// ScanTree runs the scanner over the whole tree as of baseline.
func ScanTree(ctx context.Context, client contract.GitClient, scanner contract.Scanner, repoPath string, baseline string) schema.TextResult {
	loggerFrom(ctx).WithField("path", repoPath).Info("Running scanner on tree")
	return scanAt(ctx, client, scanner, repoPath, baseline, func() ([]string, bool) {
		return nil, true
	})
}

// ScanChangedFiles runs the scanner over the changed files that exist at baseline.
// Files added by the fix do not exist yet, and if nothing else is left the
// scanner is not run at all.
func ScanChangedFiles(ctx context.Context, client contract.GitClient, scanner contract.Scanner, repoPath string, baseline string, files []string) schema.TextResult {
	loggerFrom(ctx).WithField("path", repoPath).Info("Running scanner on changed files")
	return scanAt(ctx, client, scanner, repoPath, baseline, func() ([]string, bool) {
		var targets []string
		for _, f := range files {
			if _, err := os.Stat(filepath.Join(repoPath, filepath.FromSlash(f))); err == nil {
				targets = append(targets, f)
			}
		}
		return targets, len(targets) > 0
	})
}

// scanAt checks out baseline, asks targets for the scan targets and runs the scanner.
func scanAt(ctx context.Context, client contract.GitClient, scanner contract.Scanner, repoPath string, baseline string, targets func() ([]string, bool)) schema.TextResult {
	result := schema.TextFailure(schema.FailScanRun)
	err := WithCheckout(ctx, client, repoPath, baseline, func() error {
		files, ok := targets()
		if !ok {
			result = schema.TextFailure(schema.FailOnlyAdded)
			return nil
		}
		res := scanner.Scan(ctx, repoPath, files)
		if !res.OK() {
			loggerFrom(ctx).WithError(res.Error()).Warn("Scanner run failed")
			result = schema.TextFailure(schema.FailScanRun)
			return nil
		}
		text, ok := contract.DecodeText(res.Stdout)
		if !ok {
			result = schema.TextFailure(schema.FailScanDecode)
			return nil
		}
		result = schema.TextResult{Text: text}
		return nil
	})
	if err != nil {
		loggerFrom(ctx).WithError(err).Warn("Checkout failed around scan")
		if result.OK() {
			// The tree may not have been at baseline; do not trust the output.
			return schema.TextFailure(schema.FailScanRun)
		}
	}
	return result
}
