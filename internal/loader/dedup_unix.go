//go:build unix

package loader

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// fileKey identifies a path's underlying file well enough to dedupe
// symlinks and relative-vs-absolute spellings of the same argument: the
// device/inode pair from stat(2).
type fileKey struct {
	dev, ino uint64
}

func statKey(path string) (fileKey, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fileKey{}, fmt.Errorf("stat %s: %w", path, err)
	}

	return fileKey{dev: uint64(st.Dev), ino: st.Ino}, nil
}

// dedupePaths drops later paths that stat to the same (dev, ino) as an
// earlier one, preserving first-seen order.
func dedupePaths(paths []string) ([]string, error) {
	seen := make(map[fileKey]bool, len(paths))

	var unique []string

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			unique = append(unique, p)

			continue
		}

		key, err := statKey(p)
		if err != nil {
			return nil, err
		}

		if seen[key] {
			continue
		}

		seen[key] = true
		unique = append(unique, p)
	}

	return unique, nil
}
