// Package config provides the configuration of harsanitizer: the options
// collected from CLI flags, the optional .harsanitizer YAML file merged
// into them, and the XDG directories used for run history.
package config
