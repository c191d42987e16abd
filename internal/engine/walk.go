package engine

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/secret-squirrel/ssq/internal/ignore"
	"github.com/sirupsen/logrus"
)

// Discover walks root and returns every regular file that survives the
// resolver, in lexical walk order. Unreadable entries are skipped. A symlinked
// root is resolved once; symlinks below it are not followed. The only error
// returned is ctx's.
func Discover(ctx context.Context, root string, ign *ignore.Resolver) ([]FileTask, error) {
	var tasks []FileTask
	name := filepath.Base(root)
	root = resolveRoot(root)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{"path": p, "err": err}).Debug("walk: skipping unreadable entry")
			if d != nil && d.IsDir() && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		rel := relPath(root, p)
		if p == root {
			rel = filepath.ToSlash(name)
		}
		if d.IsDir() {
			if p == root {
				return nil
			}
			if isVCSDir(d.Name()) || ign.Skip(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ign.Skip(rel, false) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			logrus.WithFields(logrus.Fields{"path": rel, "err": err}).Debug("walk: stat failed")
			return nil
		}
		tasks = append(tasks, FileTask{Path: rel, AbsPath: p, Size: info.Size()})
		return nil
	})
	if err != nil {
		return tasks, err
	}
	return tasks, nil
}

func resolveRoot(root string) string {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return root
	}
	if resolved != filepath.Clean(root) {
		logrus.WithFields(logrus.Fields{"root": root, "target": resolved}).Debug("walk: following symlinked root")
	}
	return resolved
}

func relPath(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." {
		rel = filepath.Base(p)
	}
	return filepath.ToSlash(rel)
}

// CountTargets returns how many files a scan of cfg would visit, so a
// progress display can show a total before scanning starts. Binary files
// are still counted since classification needs their content.
func CountTargets(ctx context.Context, cfg Config) (int, error) {
	ign, err := ignore.New(cfg.Root, cfg.Ignore)
	if err != nil {
		return 0, err
	}
	tasks, err := Discover(ctx, cfg.Root, ign)
	if err != nil {
		return 0, err
	}
	return len(tasks), nil
}
