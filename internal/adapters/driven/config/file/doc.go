// Package file provides file-based configuration: the TOML settings store
// and the YAML feed list with optional live reload.
package file
