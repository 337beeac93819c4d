//go:build windows

// pkg/config/csp_windows.go - CSP OMA-URI registry fallback for configuration.

package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"golang.org/x/sys/windows/registry"
)

// loadConfigFromCSP loads configuration from Windows CSP OMA-URI registry
// settings. This serves as a fallback when the Config.yaml file doesn't exist.
func loadConfigFromCSP() (*Configuration, error) {
	config := GetDefaultConfig()

	key, err := registry.OpenKey(registry.LOCAL_MACHINE, CSPRegistryPath, registry.READ)
	if err != nil {
		return nil, fmt.Errorf("opening CSP registry key %s: %w", CSPRegistryPath, err)
	}
	defer key.Close()

	loadStringFromRegistry(key, "InstallPathCurrentUser", &config.InstallPathCurrentUser)
	loadStringFromRegistry(key, "InstallPathAllUsers", &config.InstallPathAllUsers)
	loadStringFromRegistry(key, "SavePathRoot", &config.SavePathRoot)
	loadStringFromRegistry(key, "CachePath", &config.CachePath)
	loadStringFromRegistry(key, "LogPath", &config.LogPath)
	loadStringFromRegistry(key, "LogLevel", &config.LogLevel)

	loadIntFromRegistry(key, "MinFreeSpaceMB", &config.MinFreeSpaceMB)
	loadIntFromRegistry(key, "HTTPTimeoutSeconds", &config.HTTPTimeoutSeconds)

	loadBoolFromRegistry(key, "Debug", &config.Debug)
	loadBoolFromRegistry(key, "Verbose", &config.Verbose)
	loadBoolFromRegistry(key, "ContinueOnInstalled", &config.ContinueOnInstalled)

	loadRepositoriesFromRegistry(key, &config.Repositories)

	applyFallbacks(config)
	return config, nil
}

// loadStringFromRegistry loads a string value from registry if it exists.
func loadStringFromRegistry(key registry.Key, valueName string, target *string) {
	if val, _, err := key.GetStringValue(valueName); err == nil && val != "" {
		*target = val
		log.Printf("CSP: Loaded %s = %s", valueName, val)
	}
}

// loadBoolFromRegistry loads a boolean value from registry if it exists.
// Accepts various formats: "true"/"false", "1"/"0", DWORD 1/0
func loadBoolFromRegistry(key registry.Key, valueName string, target *bool) {
	if val, _, err := key.GetStringValue(valueName); err == nil {
		if parsed, parseErr := strconv.ParseBool(val); parseErr == nil {
			*target = parsed
			log.Printf("CSP: Loaded %s = %t", valueName, parsed)
			return
		}
	}

	if val, _, err := key.GetIntegerValue(valueName); err == nil {
		*target = val != 0
		log.Printf("CSP: Loaded %s = %t", valueName, val != 0)
	}
}

// loadIntFromRegistry loads an integer value from registry if it exists.
func loadIntFromRegistry(key registry.Key, valueName string, target *int) {
	if val, _, err := key.GetStringValue(valueName); err == nil {
		if parsed, parseErr := strconv.Atoi(val); parseErr == nil {
			*target = parsed
			log.Printf("CSP: Loaded %s = %d", valueName, parsed)
			return
		}
	}

	if val, _, err := key.GetIntegerValue(valueName); err == nil {
		*target = int(val)
		log.Printf("CSP: Loaded %s = %d", valueName, int(val))
	}
}

// loadRepositoriesFromRegistry loads the repository map, stored as
// multi-string (or comma-separated) "Name=URL" entries.
func loadRepositoriesFromRegistry(key registry.Key, target *map[string]string) {
	var entries []string
	if vals, _, err := key.GetStringsValue("Repositories"); err == nil {
		entries = vals
	} else if val, _, err := key.GetStringValue("Repositories"); err == nil && val != "" {
		entries = strings.Split(val, ",")
	}

	repos := make(map[string]string)
	for _, entry := range entries {
		name, url, found := strings.Cut(strings.TrimSpace(entry), "=")
		if !found || name == "" || url == "" {
			continue
		}
		repos[strings.TrimSpace(name)] = strings.TrimSpace(url)
	}
	if len(repos) > 0 {
		*target = repos
		log.Printf("CSP: Loaded Repositories = %v", repos)
	}
}
