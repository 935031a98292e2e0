package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/xssbench/internal/contract"
)

// ErrParentUnresolved is returned when the parent of a commit cannot be determined.
var ErrParentUnresolved = errors.New("parent commit retriever returned error")

// ResolveParent returns the first parent of commit in the clone at repoPath.
func ResolveParent(ctx context.Context, client contract.GitClient, repoPath string, commit string) (string, error) {
	if _, err := os.Stat(repoPath); err != nil {
		return "", fmt.Errorf("%w: repository %q is not available locally", ErrParentUnresolved, repoPath)
	}

	res := client.GetParents(ctx, repoPath, commit)
	if !res.OK() {
		return "", fmt.Errorf("%w: %v", ErrParentUnresolved, res.Error())
	}
	parents := strings.Fields(strings.TrimRight(string(res.Stdout), "\r\n"))
	if len(parents) == 0 {
		return "", fmt.Errorf("%w: commit %s has no parent", ErrParentUnresolved, commit)
	}
	return parents[0], nil
}
