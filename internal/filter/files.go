// Package filter provides file discovery and filtering capabilities.
// It implements a composable filter system that walks an input tree and
// keeps the files whose names match a glob pattern.
package filter

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dirsend/internal/errors"
)

// FileInfo identifies a discovered file. Path is always rooted at the
// discovery root as given, even when that root is a symlink.
type FileInfo struct {
	Path    string
	RelPath string
}

// FileFilter defines a predicate function for file filtering.
// Filters receive the path relative to the discovery root.
type FileFilter func(relPath string, d fs.DirEntry) (bool, error)

// NewFileDiscovery creates a FileDiscovery rooted at root that keeps files
// matching pattern at any depth.
func NewFileDiscovery(root, pattern string) *FileDiscovery {
	return &FileDiscovery{
		root:    filepath.Clean(root),
		pattern: pattern,
		filters: buildFilters(filepath.Clean(root), pattern),
	}
}

// FileDiscovery handles recursive directory traversal with filtering.
type FileDiscovery struct {
	root    string
	pattern string
	filters []FileFilter
}

// Pattern returns the glob pattern files are matched against.
func (fd *FileDiscovery) Pattern() string {
	return fd.pattern
}

// Discover recursively traverses the root and returns the matching files
// sorted by relative path, so runs over the same tree are reproducible.
// A symlinked root is walked through its target.
func (fd *FileDiscovery) Discover() ([]FileInfo, error) {
	walkRoot, err := filepath.EvalSymlinks(fd.root)
	if err != nil {
		return nil, errors.WrapFileError(fd.root, err)
	}

	var files []FileInfo

	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != walkRoot && errors.IsPermission(err) {
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			return errors.WrapFileError(path, err)
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return errors.WrapFileError(path, err)
		}

		shouldProcess, err := fd.shouldProcessFile(rel, d)
		if err != nil {
			return err
		}
		if !shouldProcess {
			return nil
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fd.root, rel),
			RelPath: rel,
		})
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

func (fd *FileDiscovery) shouldProcessFile(relPath string, d fs.DirEntry) (bool, error) {
	for _, filter := range fd.filters {
		should, err := filter(relPath, d)
		if err != nil {
			return false, err
		}
		if !should {
			return false, nil
		}
	}
	return true, nil
}

func buildFilters(root, pattern string) []FileFilter {
	return []FileFilter{
		regularFileFilter(root),
		globFilter(pattern),
	}
}

// globFilter matches the base name against pattern. Patterns holding a path
// separator are matched against the slash-separated relative path instead.
func globFilter(pattern string) FileFilter {
	return func(relPath string, _ fs.DirEntry) (bool, error) {
		target := filepath.Base(relPath)
		if strings.Contains(pattern, "/") {
			target = filepath.ToSlash(relPath)
		}

		matched, err := filepath.Match(pattern, target)
		if err != nil {
			return false, errors.NewConfigError("invalid file filter pattern: "+pattern, err)
		}
		return matched, nil
	}
}

// regularFileFilter keeps regular files and symlinks that resolve to one.
// Dangling links are skipped.
func regularFileFilter(root string) FileFilter {
	return func(relPath string, d fs.DirEntry) (bool, error) {
		if d.Type().IsRegular() {
			return true, nil
		}
		if d.Type()&fs.ModeSymlink == 0 {
			return false, nil
		}

		info, err := os.Stat(filepath.Join(root, relPath))
		if err != nil {
			return false, nil
		}
		return info.Mode().IsRegular(), nil
	}
}
