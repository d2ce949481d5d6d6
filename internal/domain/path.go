package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RepoPath converts p, absolute or relative to root, into the slash-separated
// root-relative key file states are recorded under. Paths that leave root are
// reported as not found.
func RepoPath(root, p string) (string, error) {
	if p == "" {
		return "", ErrEmptyPath
	}
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return "", fmt.Errorf("%w: %s is outside %s", ErrFileStateNotFound, p, root)
		}
		p = rel
	}

	rel := filepath.ToSlash(filepath.Clean(p))
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %s is outside %s", ErrFileStateNotFound, p, root)
	}
	return rel, nil
}
