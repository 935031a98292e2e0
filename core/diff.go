package core

import (
	"context"
	"strings"

	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/schema"
)

// DiffText returns the textual diff between oldCommit and newCommit.
func DiffText(ctx context.Context, client contract.GitClient, repoPath string, oldCommit string, newCommit string) schema.TextResult {
	loggerFrom(ctx).WithField("path", repoPath).Debug("Running git diff")

	res := client.GetDiff(ctx, repoPath, oldCommit, newCommit)
	if !res.OK() {
		loggerFrom(ctx).WithError(res.Error()).Debug("git diff failed")
		return schema.TextFailure(schema.FailDiffRun)
	}
	text, ok := contract.DecodeText(res.Stdout)
	if !ok {
		return schema.TextFailure(schema.FailDiffDecode)
	}
	return schema.TextResult{Text: text}
}

// ChangedFiles lists the files that differ between oldCommit and newCommit.
func ChangedFiles(ctx context.Context, client contract.GitClient, repoPath string, oldCommit string, newCommit string) schema.FileListResult {
	res := client.GetChangedFiles(ctx, repoPath, oldCommit, newCommit)
	if !res.OK() {
		loggerFrom(ctx).WithError(res.Error()).Debug("git diff --name-only failed")
		return schema.FileListResult{Failure: schema.FailFileListRun}
	}
	text, ok := contract.DecodeText(res.Stdout)
	if !ok {
		return schema.FileListResult{Failure: schema.FailFileListDecode}
	}
	return schema.FileListResult{Files: splitFileList(text)}
}

// splitFileList splits newline-separated names, dropping the trailing empty entry.
func splitFileList(text string) []string {
	files := []string{}
	for _, line := range strings.Split(text, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			files = append(files, name)
		}
	}
	return files
}
