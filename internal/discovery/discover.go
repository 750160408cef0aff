package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Discover recursively finds all SQL files in the given directory. A path
// naming a single file is returned as is, whatever its name.
func Discover(rootPath string, opts Options) ([]DiscoveredFile, error) {
	matcher, err := NewMatcher(opts.Patterns)
	if err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("path not found: %s", absRoot)
		}
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return []DiscoveredFile{{
			Path:         absRoot,
			RelativePath: filepath.Base(absRoot),
			Encoding:     opts.Encoding,
			ModTime:      info.ModTime(),
		}}, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Skip directories we can't access
			if os.IsPermission(err) {
				return nil
			}
			return err
		}

		if d.IsDir() || !matcher.MatchFile(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}

		files = append(files, DiscoveredFile{
			Path:         path,
			RelativePath: relPath,
			Encoding:     opts.Encoding,
			ModTime:      info.ModTime(),
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return files, nil
}

// DiscoverPaths runs Discover for every path and drops duplicates. The
// result is sorted by path.
func DiscoverPaths(paths []string, opts Options) ([]DiscoveredFile, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	seen := make(map[string]bool)
	var files []DiscoveredFile
	for _, p := range paths {
		found, err := Discover(p, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to discover files in %s: %w", p, err)
		}
		for _, f := range found {
			if !seen[f.Path] {
				seen[f.Path] = true
				files = append(files, f)
			}
		}
	}

	slices.SortFunc(files, func(a, b DiscoveredFile) int {
		return strings.Compare(a.Path, b.Path)
	})
	return files, nil
}
