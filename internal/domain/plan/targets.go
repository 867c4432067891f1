package plan

import (
	"path/filepath"
	"strings"
)

// FilterTargets keeps the files that lie under one of roots and carry one
// of extensions. Empty extensions match every file.
func FilterTargets(files, roots, extensions []string) []string {
	want := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		want[strings.ToLower(ext)] = true
	}
	var out []string
	for _, f := range files {
		if !underAny(f, roots) {
			continue
		}
		if len(want) > 0 && !want[strings.ToLower(filepath.Ext(f))] {
			continue
		}
		out = append(out, filepath.ToSlash(f))
	}
	return out
}
