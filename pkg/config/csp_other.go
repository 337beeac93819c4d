//go:build !windows

// pkg/config/csp_other.go - CSP fallback stub for non-Windows builds.

package config

import "errors"

func loadConfigFromCSP() (*Configuration, error) {
	return nil, errors.New("CSP registry configuration is only available on Windows")
}
