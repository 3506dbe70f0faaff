//go:build !unix

package loader

import "path/filepath"

// dedupePaths falls back to comparing cleaned absolute paths on
// platforms without stat(2) dev/ino semantics. It will not catch a
// symlink aliasing two distinct spellings, unlike the unix build's
// dev/ino comparison.
func dedupePaths(paths []string) ([]string, error) {
	seen := make(map[string]bool, len(paths))

	var unique []string

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}

		abs = filepath.Clean(abs)

		if seen[abs] {
			continue
		}

		seen[abs] = true
		unique = append(unique, p)
	}

	return unique, nil
}
