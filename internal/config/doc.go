// Package config loads secret-squirrel configuration from the base and
// repo-local YAML files and merges them. It is internal; CLI code turns the
// merged FileConfig into engine configuration.
package config
