// Package file loads the application configuration from TOML or YAML files.
//
// Values are layered: built-in defaults, then the file, then VERSESEARCH_*
// environment variables. Only fields present in a layer override the one
// below it.
package file
