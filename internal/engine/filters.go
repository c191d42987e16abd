package engine

// vcsDirs hold version control metadata, never source. They are pruned even
// though other dotfiles and dot-directories are walked.
var vcsDirs = map[string]bool{
	".git": true,
	".hg":  true,
	".svn": true,
	".bzr": true,
}

func isVCSDir(name string) bool {
	return vcsDirs[name]
}
