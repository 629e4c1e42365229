// Package exclude matches slash-separated paths, relative to the scan root,
// against user supplied exclusion patterns.
package exclude

import (
	"path"
	"strings"
)

// Matcher holds a compiled list of patterns. A nil Matcher excludes nothing.
//
// Pattern forms:
//   - "name/"   a directory and everything under it
//   - "*.tmp"   a glob tried against the full relative path and the base name
//   - "a/b"     an exact relative path, or any path below it
//   - "name"    additionally matches any file whose base name is name
type Matcher struct {
	patterns []string
}

// New builds a Matcher from patterns, dropping blanks. It returns nil when
// nothing remains so that callers can skip matching altogether.
func New(patterns []string) *Matcher {
	var kept []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kept = append(kept, strings.TrimPrefix(p, "./"))
	}
	if len(kept) == 0 {
		return nil
	}
	return &Matcher{patterns: kept}
}

// Patterns returns the active patterns
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}

// IsExcluded reports whether relPath should be skipped
func (m *Matcher) IsExcluded(relPath string, isDir bool) bool {
	if m == nil {
		return false
	}
	relPath = strings.TrimPrefix(relPath, "./")
	if relPath == "" || relPath == "." {
		return false
	}
	base := path.Base(relPath)

	for _, p := range m.patterns {
		if strings.HasSuffix(p, "/") {
			dir := strings.TrimSuffix(p, "/")
			if relPath == dir || strings.HasPrefix(relPath, dir+"/") {
				return true
			}
			if isDir && !strings.Contains(dir, "/") && base == dir {
				return true
			}
			continue
		}
		if strings.ContainsAny(p, "*?[") {
			if ok, _ := path.Match(p, relPath); ok {
				return true
			}
			if ok, _ := path.Match(p, base); ok {
				return true
			}
			continue
		}
		if relPath == p || strings.HasPrefix(relPath, p+"/") {
			return true
		}
		if !isDir && base == p {
			return true
		}
	}
	return false
}
