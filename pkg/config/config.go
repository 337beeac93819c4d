// pkg/config/config.go - configuration settings for modman.

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const ConfigPath = `C:\ProgramData\ModMan\Config.yaml`

// CSP OMA-URI registry path for enterprise policy configuration
const CSPRegistryPath = `SOFTWARE\ModMan\Config`

// Configuration holds the configurable options for modman in YAML format
type Configuration struct {
	// Repositories maps a repository name to its package feed base URL.
	Repositories map[string]string `yaml:"Repositories"`

	// Module roots used by install mode and the already-installed scan.
	InstallPathCurrentUser string `yaml:"InstallPathCurrentUser"`
	InstallPathAllUsers    string `yaml:"InstallPathAllUsers"`

	// SavePathRoot is the default root for save mode; a per-module Path
	// override wins over it.
	SavePathRoot string `yaml:"SavePathRoot"`

	CachePath string `yaml:"CachePath"`
	LogPath   string `yaml:"LogPath"`
	LogLevel  string `yaml:"LogLevel"`
	Debug     bool   `yaml:"Debug"`
	Verbose   bool   `yaml:"Verbose"`

	// ContinueOnInstalled switches the already-installed pre-check from
	// halting the batch to skipping the module.
	ContinueOnInstalled bool `yaml:"ContinueOnInstalled"`

	// MinFreeSpaceMB is the preflight free-space warning threshold.
	MinFreeSpaceMB int `yaml:"MinFreeSpaceMB"`

	// HTTP timeout for feed queries and package downloads (in seconds).
	HTTPTimeoutSeconds int `yaml:"HTTPTimeoutSeconds"`
}

// LoadConfig loads the configuration from the default YAML file.
// If the YAML file doesn't exist, it falls back to CSP OMA-URI registry settings.
func LoadConfig() (*Configuration, error) {
	return LoadConfigFrom(ConfigPath)
}

// LoadConfigFrom loads the configuration from the given YAML file.
func LoadConfigFrom(path string) (*Configuration, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("Configuration file does not exist: %s", path)

		// Try CSP fallback
		config, cspErr := loadConfigFromCSP()
		if cspErr == nil {
			log.Printf("Loaded configuration from CSP OMA-URI registry settings")
			return config, nil
		}

		log.Printf("No CSP registry settings either (%v); using built-in defaults", cspErr)
		return GetDefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file: %w", err)
	}

	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing configuration file: %w", err)
	}
	applyFallbacks(config)
	return config, nil
}

// SaveConfig saves the current configuration to the default YAML file.
func SaveConfig(config *Configuration) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("serializing configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(ConfigPath), 0755); err != nil {
		return fmt.Errorf("creating configuration directory: %w", err)
	}

	if err := os.WriteFile(ConfigPath, data, 0644); err != nil {
		return fmt.Errorf("writing configuration file: %w", err)
	}
	return nil
}

// GetDefaultConfig provides default configuration values.
func GetDefaultConfig() *Configuration {
	// Use ProgramW6432 environment variable to force 64-bit Program Files path
	programFiles := os.Getenv("ProgramW6432")
	if programFiles == "" {
		programFiles = `C:\Program Files`
	}
	userProfile := os.Getenv("USERPROFILE")
	if userProfile == "" {
		userProfile, _ = os.UserHomeDir()
	}
	return &Configuration{
		Repositories: map[string]string{
			"PSGallery": "https://www.powershellgallery.com/api/v2",
		},
		InstallPathCurrentUser: filepath.Join(userProfile, "Documents", "WindowsPowerShell", "Modules"),
		InstallPathAllUsers:    filepath.Join(programFiles, "WindowsPowerShell", "Modules"),
		SavePathRoot:           filepath.Join(os.TempDir(), "Modules"),
		CachePath:              `C:\ProgramData\ModMan\Cache`,
		LogPath:                `C:\ProgramData\ModMan\Logs`,
		LogLevel:               "INFO",
		Debug:                  false,
		Verbose:                false,
		ContinueOnInstalled:    false,
		MinFreeSpaceMB:         512,
		HTTPTimeoutSeconds:     60,
	}
}

// applyFallbacks fills any values a partial YAML file left empty.
func applyFallbacks(config *Configuration) {
	defaults := GetDefaultConfig()
	if len(config.Repositories) == 0 {
		config.Repositories = defaults.Repositories
	}
	if config.InstallPathCurrentUser == "" {
		config.InstallPathCurrentUser = defaults.InstallPathCurrentUser
	}
	if config.InstallPathAllUsers == "" {
		config.InstallPathAllUsers = defaults.InstallPathAllUsers
	}
	if config.SavePathRoot == "" {
		config.SavePathRoot = defaults.SavePathRoot
	}
	if config.CachePath == "" {
		config.CachePath = defaults.CachePath
	}
	if config.LogPath == "" {
		config.LogPath = defaults.LogPath
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.MinFreeSpaceMB == 0 {
		config.MinFreeSpaceMB = defaults.MinFreeSpaceMB
	}
	if config.HTTPTimeoutSeconds == 0 {
		config.HTTPTimeoutSeconds = defaults.HTTPTimeoutSeconds
	}
}

// ModuleRoots returns the install roots in scan order: all-users first,
// then current-user.
func (c *Configuration) ModuleRoots() []string {
	return []string{c.InstallPathAllUsers, c.InstallPathCurrentUser}
}
