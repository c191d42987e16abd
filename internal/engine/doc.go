// Package engine contains the core scanning logic for ssq. It walks the
// target tree, classifies each file, runs the compiled rules over every line
// and collects matches. This package is internal; external consumers should
// use the stable facade in pkg/core.
package engine
