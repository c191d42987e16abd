// Package ssq provides the command-line interface for secret-squirrel. It
// wires configuration, the scan engine, progress display and reports.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/secret-squirrel/ssq/cmd/ssq"
//	func main() { ssq.Execute() }
package ssq
