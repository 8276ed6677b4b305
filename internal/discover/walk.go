package discover

import (
	"context"
	"os"
	"path/filepath"
	"sort"
)

var skipDirs = map[string]struct{}{
	".git": {},
	".hg":  {},
	".svn": {},
	".bzr": {},
}

// walk returns the absolute paths of the regular files below root for which
// keep returns true. keep receives the path relative to root. Version
// control directories, the directories in prune and symlinks are skipped.
func walk(ctx context.Context, root string, prune []string, keep func(rel string) bool) ([]string, error) {
	var results []string
	pruned := make(map[string]struct{}, len(prune))
	for _, p := range prune {
		pruned[filepath.Clean(p)] = struct{}{}
	}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			if _, skip := pruned[filepath.Clean(path)]; skip {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if keep(rel) {
			results = append(results, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(results)
	return results, nil
}
