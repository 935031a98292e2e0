package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// Batch document column names.
const (
	ColRepository = "repository"
	ColCommit     = "commit"
	ColParent     = "parent"
	ColMessage    = "message"
)

// BatchColumns is the column order used when writing a batch document.
var BatchColumns = []string{ColRepository, ColCommit, ColParent, ColMessage}

var repositoryPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// BatchRow is one candidate fix: a repository, the fix commit and its parents.
type BatchRow struct {
	Repository string   `json:"repository"`
	Commit     string   `json:"commit"`
	Parent     []string `json:"parent"`
	Message    string   `json:"message"`
}

// Baseline returns the first parent, the pre-fix commit the scanner runs against.
func (r BatchRow) Baseline() string {
	return r.Parent[0]
}

// ValidRepository reports whether id looks like owner/name and cannot escape the download root.
func ValidRepository(id string) bool {
	if !repositoryPattern.MatchString(id) {
		return false
	}
	for _, part := range strings.Split(id, "/") {
		if part == "." || part == ".." {
			return false
		}
	}
	return true
}

// splitDocument is the column-oriented "split" layout: columns, index and data rows.
type splitDocument struct {
	Columns []string            `json:"columns"`
	Index   []int               `json:"index"`
	Data    [][]json.RawMessage `json:"data"`
}

// ReadBatch loads a batch document from path.
func ReadBatch(path string) ([]BatchRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file %q: %w. Check that the path exists", path, err)
	}
	defer func() { _ = f.Close() }()
	return DecodeBatch(f)
}

// DecodeBatch parses a batch document. Columns are located by name.
func DecodeBatch(r io.Reader) ([]BatchRow, error) {
	var doc splitDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode batch document: %w", err)
	}

	pos := make(map[string]int, len(doc.Columns))
	for i, name := range doc.Columns {
		pos[name] = i
	}
	for _, name := range BatchColumns {
		if _, ok := pos[name]; !ok {
			return nil, fmt.Errorf("batch document is missing column %q", name)
		}
	}

	rows := make([]BatchRow, 0, len(doc.Data))
	for i, cells := range doc.Data {
		if len(cells) != len(doc.Columns) {
			return nil, fmt.Errorf("batch row %d has %d cells, expected %d", i, len(cells), len(doc.Columns))
		}
		var row BatchRow
		fields := []struct {
			col string
			dst any
		}{
			{ColRepository, &row.Repository},
			{ColCommit, &row.Commit},
			{ColParent, &row.Parent},
			{ColMessage, &row.Message},
		}
		for _, fld := range fields {
			if err := json.Unmarshal(cells[pos[fld.col]], fld.dst); err != nil {
				return nil, fmt.Errorf("batch row %d column %q: %w", i, fld.col, err)
			}
		}
		if err := row.validate(); err != nil {
			return nil, fmt.Errorf("batch row %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r BatchRow) validate() error {
	if !ValidRepository(r.Repository) {
		return fmt.Errorf("invalid repository %q. expected owner/name", r.Repository)
	}
	if r.Commit == "" {
		return errors.New("commit is empty")
	}
	if len(r.Parent) == 0 || r.Parent[0] == "" {
		return fmt.Errorf("commit %s has no parent", r.Commit)
	}
	return nil
}

// WriteBatch writes rows to path as an indented batch document.
func WriteBatch(path string, rows []BatchRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create batch file %q: %w. Check that the directory is writable", path, err)
	}
	if err := EncodeBatch(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// EncodeBatch writes rows in the split layout.
func EncodeBatch(w io.Writer, rows []BatchRow) error {
	doc := struct {
		Columns []string `json:"columns"`
		Index   []int    `json:"index"`
		Data    [][]any  `json:"data"`
	}{
		Columns: BatchColumns,
		Index:   make([]int, len(rows)),
		Data:    make([][]any, len(rows)),
	}
	for i, row := range rows {
		parent := row.Parent
		if parent == nil {
			parent = []string{}
		}
		doc.Index[i] = i
		doc.Data[i] = []any{row.Repository, row.Commit, parent, row.Message}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode batch document: %w", err)
	}
	return nil
}
