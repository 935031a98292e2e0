package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/go-github/v50/github"
	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/schema"
	log "github.com/sirupsen/logrus"
)

// CommitFile is one raw commit document found on disk.
type CommitFile struct {
	Path       string
	Repository string
	Commit     string
}

// CollectCommitFiles walks dir for documents laid out as <owner>/<name>/<sha>.json.
func CollectCommitFiles(dir string) ([]CommitFile, error) {
	var files []CommitFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 3 {
			log.WithField("path", path).Warn("Commit document is not inside <owner>/<name>, skipping")
			return nil
		}
		repository := parts[len(parts)-3] + "/" + parts[len(parts)-2]
		if !schema.ValidRepository(repository) {
			log.WithField("path", path).Warn("Commit document has an invalid repository path, skipping")
			return nil
		}
		files = append(files, CommitFile{
			Path:       path,
			Repository: repository,
			Commit:     strings.TrimSuffix(d.Name(), ".json"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk commit directory %q: %w", dir, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// ParseCommitFile decodes a GitHub commit API document.
func ParseCommitFile(path string) (*github.RepositoryCommit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var commit github.RepositoryCommit
	if err := json.Unmarshal(data, &commit); err != nil {
		return nil, fmt.Errorf("failed to decode commit document %q: %w", path, err)
	}
	return &commit, nil
}

// Harvest turns raw commit documents into batch rows with resolved parents.
// When fetch is true every repository is cloned first.
func Harvest(ctx context.Context, client contract.GitClient, fetcher *Fetcher, dir string, fetch bool) ([]schema.BatchRow, error) {
	files, err := CollectCommitFiles(dir)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"documents": len(files), "directory": dir}).Info("Collected commit documents")

	if fetch {
		seen := map[string]struct{}{}
		for _, f := range files {
			if _, ok := seen[f.Repository]; ok {
				continue
			}
			seen[f.Repository] = struct{}{}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			fetcher.Fetch(ctx, f.Repository)
		}
	}

	rows := make([]schema.BatchRow, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry := log.WithFields(log.Fields{"repo": f.Repository, "commit": f.Commit})

		doc, err := ParseCommitFile(f.Path)
		if err != nil {
			entry.WithError(err).Warn("Skipping unreadable commit document")
			continue
		}

		parent, err := ResolveParent(ctx, client, fetcher.LocalPath(f.Repository), f.Commit)
		if err != nil {
			parent = documentParent(doc)
			if parent == "" {
				entry.WithError(err).Warn("Dropping commit with no resolvable parent")
				continue
			}
			entry.WithField("parent", parent).Info("Using parent recorded in the commit document")
		}

		rows = append(rows, schema.BatchRow{
			Repository: f.Repository,
			Commit:     f.Commit,
			Parent:     []string{parent},
			Message:    doc.GetCommit().GetMessage(),
		})
	}
	return rows, nil
}

// documentParent returns the first parent listed in the document, if any.
func documentParent(doc *github.RepositoryCommit) string {
	if len(doc.Parents) == 0 {
		return ""
	}
	return doc.Parents[0].GetSHA()
}
