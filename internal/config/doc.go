// Package config loads, validates, and normalizes the transplant
// configuration file.
package config
