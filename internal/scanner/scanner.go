// Package scanner walks a local data directory and groups the files it finds
// by the directory that directly contains them.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/dl-alexandre/gxlib/internal/scanner/exclude"
	"github.com/dl-alexandre/gxlib/internal/types"
	"github.com/dl-alexandre/gxlib/internal/utils"
)

// Scan walks root top-down and returns one entry per directory that holds at
// least one file, sorted by path. Symlinked directories are neither followed
// nor listed; any other non-directory, dangling symlinks included, counts as
// a file. A missing root yields no entries. Directories that cannot be read
// are skipped.
func Scan(ctx context.Context, root string, matcher *exclude.Matcher) ([]types.FolderEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, utils.WrapAppError(utils.NewCLIError(utils.ErrCodeInvalidPath,
			fmt.Sprintf("cannot stat data directory %s", root)).
			WithContext("path", root).
			Build(), err)
	}
	if !info.IsDir() {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidPath,
			fmt.Sprintf("data directory %s is not a directory", root)).
			WithContext("path", root).
			Build())
	}

	w := &walker{root: root, matcher: matcher}
	if err := w.walk(ctx, root, "."); err != nil {
		return nil, err
	}

	sort.Slice(w.entries, func(i, j int) bool {
		return w.entries[i].Path < w.entries[j].Path
	})
	return w.entries, nil
}

// Map renders entries as directory -> newline-joined file list
func Map(entries []types.FolderEntry) map[string]string {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if len(e.Files) == 0 {
			continue
		}
		out[e.Path] = e.Joined()
	}
	return out
}

type walker struct {
	root    string
	matcher *exclude.Matcher
	entries []types.FolderEntry
}

func (w *walker) walk(ctx context.Context, dir, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	children, err := os.ReadDir(dir)
	if err != nil {
		if dir == w.root {
			return utils.WrapAppError(utils.NewCLIError(utils.ErrCodeInvalidPath,
				fmt.Sprintf("cannot read data directory %s", dir)).
				WithContext("path", dir).
				Build(), err)
		}
		return nil
	}

	var files []string
	var subdirs []string
	for _, d := range children {
		childRel := d.Name()
		if rel != "." {
			childRel = path.Join(rel, d.Name())
		}
		full := filepath.Join(dir, d.Name())

		isDir := d.IsDir()
		if d.Type()&fs.ModeSymlink != 0 {
			// symlinked directories are not descended into, and not files either
			if target, err := os.Stat(full); err == nil && target.IsDir() {
				continue
			}
		}

		if w.matcher.IsExcluded(childRel, isDir) {
			continue
		}
		if isDir {
			subdirs = append(subdirs, d.Name())
			continue
		}
		files = append(files, full)
	}

	if len(files) > 0 {
		w.entries = append(w.entries, types.FolderEntry{Path: dir, Files: files})
	}

	for _, name := range subdirs {
		childRel := name
		if rel != "." {
			childRel = path.Join(rel, name)
		}
		if err := w.walk(ctx, filepath.Join(dir, name), childRel); err != nil {
			return err
		}
	}
	return nil
}
