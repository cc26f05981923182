package filter

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeTree(t *testing.T, root string, files []string) {
	t.Helper()
	for _, name := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("DICM"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestNewFileDiscovery(t *testing.T) {
	discovery := NewFileDiscovery("/incoming/", "*.dcm")

	if discovery == nil {
		t.Fatal("expected non-nil FileDiscovery")
	}
	if discovery.root != filepath.Clean("/incoming") {
		t.Errorf("expected cleaned root, got %s", discovery.root)
	}
	if discovery.Pattern() != "*.dcm" {
		t.Errorf("expected pattern *.dcm, got %s", discovery.Pattern())
	}
	if len(discovery.filters) == 0 {
		t.Error("expected at least one filter")
	}
}

func TestFileDiscoveryDiscover(t *testing.T) {
	tempDir := t.TempDir()
	writeTree(t, tempDir, []string{
		"b.dcm",
		"a.dcm",
		"notes.txt",
		".hidden.dcm",
		"series1/img002.dcm",
		"series1/img001.dcm",
		"series1/deep/img003.dcm",
		"series2/report.pdf",
	})
	if err := os.Mkdir(filepath.Join(tempDir, "folder.dcm"), 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name          string
		pattern       string
		expectedFiles []string
	}{
		{
			name:    "dcm suffix at any depth",
			pattern: "*.dcm",
			expectedFiles: []string{
				".hidden.dcm",
				"a.dcm",
				"b.dcm",
				filepath.Join("series1", "deep", "img003.dcm"),
				filepath.Join("series1", "img001.dcm"),
				filepath.Join("series1", "img002.dcm"),
			},
		},
		{
			name:          "text files only",
			pattern:       "*.txt",
			expectedFiles: []string{"notes.txt"},
		},
		{
			name:    "prefix glob",
			pattern: "img00?.dcm",
			expectedFiles: []string{
				filepath.Join("series1", "deep", "img003.dcm"),
				filepath.Join("series1", "img001.dcm"),
				filepath.Join("series1", "img002.dcm"),
			},
		},
		{
			name:          "relative path glob",
			pattern:       "series1/*.dcm",
			expectedFiles: []string{filepath.Join("series1", "img001.dcm"), filepath.Join("series1", "img002.dcm")},
		},
		{
			name:          "no match",
			pattern:       "*.nii",
			expectedFiles: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			discovery := NewFileDiscovery(tempDir, tt.pattern)
			files, err := discovery.Discover()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(files) != len(tt.expectedFiles) {
				t.Fatalf("expected %d files, got %d: %v", len(tt.expectedFiles), len(files), files)
			}
			for i, file := range files {
				if file.RelPath != tt.expectedFiles[i] {
					t.Errorf("file %d: expected %s, got %s", i, tt.expectedFiles[i], file.RelPath)
				}
				if file.Path != filepath.Join(tempDir, file.RelPath) {
					t.Errorf("path %s does not join root and relative path", file.Path)
				}
			}
		})
	}
}

func TestDiscoverFollowsFileSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	tempDir := t.TempDir()
	store := t.TempDir()
	writeTree(t, store, []string{"linked.dcm"})

	if err := os.Symlink(filepath.Join(store, "linked.dcm"), filepath.Join(tempDir, "linked.dcm")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(store, "missing.dcm"), filepath.Join(tempDir, "dangling.dcm")); err != nil {
		t.Fatal(err)
	}

	files, err := NewFileDiscovery(tempDir, "*.dcm").Discover()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || files[0].RelPath != "linked.dcm" {
		t.Errorf("expected only linked.dcm, got %v", files)
	}
}

func TestDiscoverThroughSymlinkedRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	target := t.TempDir()
	writeTree(t, target, []string{"a.dcm", "series/b.dcm"})
	link := filepath.Join(t.TempDir(), "incoming")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	files, err := NewFileDiscovery(link, "*.dcm").Discover()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"a.dcm", filepath.Join("series", "b.dcm")}
	if len(files) != len(expected) {
		t.Fatalf("expected %d files, got %d: %v", len(expected), len(files), files)
	}
	for i, file := range files {
		if file.RelPath != expected[i] {
			t.Errorf("file %d: expected %s, got %s", i, expected[i], file.RelPath)
		}
		if file.Path != filepath.Join(link, expected[i]) {
			t.Errorf("file %d: expected path under %s, got %s", i, link, file.Path)
		}
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := NewFileDiscovery(filepath.Join(t.TempDir(), "missing"), "*.dcm").Discover()
	if err == nil {
		t.Error("expected error for missing root")
	}
}

func TestDiscoverInvalidPattern(t *testing.T) {
	tempDir := t.TempDir()
	writeTree(t, tempDir, []string{"a.dcm"})

	_, err := NewFileDiscovery(tempDir, "[dcm").Discover()
	if err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestGlobFilter(t *testing.T) {
	tests := []struct {
		pattern  string
		relPath  string
		expected bool
	}{
		{"*.dcm", "a.dcm", true},
		{"*.dcm", filepath.Join("x", "y", "a.dcm"), true},
		{"*.dcm", "a.DCM", false},
		{"*.dcm", "a.dcm.bak", false},
		{"x/*.dcm", filepath.Join("x", "a.dcm"), true},
		{"x/*.dcm", filepath.Join("y", "a.dcm"), false},
	}

	for _, tt := range tests {
		matched, err := globFilter(tt.pattern)(tt.relPath, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if matched != tt.expected {
			t.Errorf("globFilter(%q)(%q) = %v, expected %v", tt.pattern, tt.relPath, matched, tt.expected)
		}
	}
}
