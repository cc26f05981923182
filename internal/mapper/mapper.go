// Package mapper pairs every discovered input file with the path it maps to
// under the output root, preserving the relative directory structure.
package mapper

import (
	"iter"
	"path/filepath"

	"dirsend/internal/errors"
	"dirsend/internal/filter"
)

// FileMapping pairs an input file with its output path.
type FileMapping struct {
	InputPath  string
	OutputPath string
	RelPath    string
}

// Mapper discovers input files and maps them onto the output root.
type Mapper struct {
	inputDir    string
	outputDir   string
	failIfEmpty bool
	discovery   *filter.FileDiscovery
}

// New creates a Mapper for files under inputDir matching pattern.
func New(inputDir, outputDir, pattern string, failIfEmpty bool) *Mapper {
	return &Mapper{
		inputDir:    filepath.Clean(inputDir),
		outputDir:   filepath.Clean(outputDir),
		failIfEmpty: failIfEmpty,
		discovery:   filter.NewFileDiscovery(inputDir, pattern),
	}
}

// Open walks the input tree and returns a cursor over the mappings.
// When the mapper was built with failIfEmpty and nothing matches, Open returns
// an *errors.EmptyInputError and no cursor.
func (m *Mapper) Open() (*Cursor, error) {
	files, err := m.discovery.Discover()
	if err != nil {
		return nil, err
	}

	if len(files) == 0 && m.failIfEmpty {
		return nil, errors.NewEmptyInputError(m.inputDir, m.discovery.Pattern())
	}

	return &Cursor{outputDir: m.outputDir, files: files}, nil
}

// Cursor yields FileMappings one at a time. It cannot be rewound.
type Cursor struct {
	outputDir string
	files     []filter.FileInfo
	pos       int
}

// Next returns the next mapping, or false once the cursor is exhausted.
func (c *Cursor) Next() (FileMapping, bool) {
	if c.pos >= len(c.files) {
		return FileMapping{}, false
	}

	f := c.files[c.pos]
	c.pos++
	return FileMapping{
		InputPath:  f.Path,
		OutputPath: filepath.Join(c.outputDir, f.RelPath),
		RelPath:    f.RelPath,
	}, true
}

// Len returns the total number of mappings the cursor was opened with.
func (c *Cursor) Len() int {
	return len(c.files)
}

// Remaining returns how many mappings have not been yielded yet.
func (c *Cursor) Remaining() int {
	return len(c.files) - c.pos
}

// All returns a sequence that drains the cursor.
func (c *Cursor) All() iter.Seq[FileMapping] {
	return func(yield func(FileMapping) bool) {
		for {
			m, ok := c.Next()
			if !ok || !yield(m) {
				return
			}
		}
	}
}
