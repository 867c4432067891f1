package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var skipDirs = map[string]bool{
	"vendor":        true,
	"node_modules":  true,
	".git":          true,
	"dist":          true,
	"build":         true,
	"coverage":      true,
	".venv":         true,
	"venv":          true,
	"__pycache__":   true,
	".mypy_cache":   true,
	".pytest_cache": true,
	".ruff_cache":   true,
}

// FileScanner implements domain.ProjectScanner by walking the filesystem.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

// Scan lists files under roots (relative to projectPath) whose extension is
// in extensions. An empty extensions list matches every file. Missing roots
// are ignored. Returned paths are slash-separated and relative to
// projectPath, sorted and free of duplicates.
func (s *FileScanner) Scan(projectPath string, roots []string, extensions []string) ([]string, error) {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}

	want := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		want[strings.ToLower(ext)] = true
	}

	seen := map[string]bool{}
	var files []string
	for _, root := range roots {
		start := filepath.Join(absPath, filepath.FromSlash(root))
		if _, err := os.Stat(start); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != start && skipDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if len(want) > 0 && !want[strings.ToLower(filepath.Ext(d.Name()))] {
				return nil
			}

			rel, err := filepath.Rel(absPath, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if !seen[rel] {
				seen[rel] = true
				files = append(files, rel)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}
