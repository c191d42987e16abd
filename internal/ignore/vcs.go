package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/sirupsen/logrus"
)

// dotIgnoreFile is the tool-neutral ignore file honored with or without a
// repository.
const dotIgnoreFile = ".ignore"

var metadataDirs = map[string]bool{".git": true, ".hg": true, ".svn": true}

// insideRepo reports whether dir or one of its parents holds a .git entry.
func insideRepo(dir string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	for {
		if _, err := os.Stat(filepath.Join(abs, ".git")); err == nil {
			return true
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return false
		}
		abs = parent
	}
}

// readDotIgnore collects the patterns of every .ignore file under dir,
// scoped to the directory holding it. Directories already excluded by the
// patterns read so far are not descended into.
func readDotIgnore(fs billy.Filesystem, dir []string, prior []gitignore.Pattern) []gitignore.Pattern {
	var ps []gitignore.Pattern
	if f, err := fs.Open(fs.Join(append(dir, dotIgnoreFile)...)); err == nil {
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := sc.Text()
			if t := strings.TrimSpace(line); t == "" || strings.HasPrefix(t, "#") {
				continue
			}
			ps = append(ps, gitignore.ParsePattern(line, dir))
		}
		_ = f.Close()
	}

	entries, err := fs.ReadDir(fs.Join(dir...))
	if err != nil {
		logrus.WithFields(logrus.Fields{"dir": strings.Join(dir, "/"), "err": err}).Debug("reading .ignore files")
		return ps
	}
	seen := append(append([]gitignore.Pattern(nil), prior...), ps...)
	m := gitignore.NewMatcher(seen)
	for _, e := range entries {
		if !e.IsDir() || metadataDirs[e.Name()] {
			continue
		}
		sub := append(append([]string(nil), dir...), e.Name())
		if m.Match(sub, true) {
			continue
		}
		ps = append(ps, readDotIgnore(fs, sub, seen)...)
	}
	return ps
}
