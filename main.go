package main

import "github.com/secret-squirrel/ssq/cmd/ssq"

func main() { ssq.Execute() }
