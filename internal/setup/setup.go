// Package setup registers the urocalc-mcp server with a desktop MCP client
// by editing the client's JSON configuration file.
package setup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
)

const (
	// ServerName is the key of the server entry in the client config.
	ServerName = "urology-calculators"
	// BinaryName is the MCP server executable.
	BinaryName = "urocalc-mcp"
)

// ClientConfig represents the desktop client's configuration file structure.
// Unknown top-level keys are preserved on save.
type ClientConfig struct {
	MCPServers map[string]MCPServerConfig `json:"mcpServers"`
	extra      map[string]json.RawMessage
}

// MCPServerConfig represents a single MCP server configuration.
type MCPServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Options contains options for the setup process.
type Options struct {
	ConfigPath   string // Client config file; empty uses the platform default
	BinaryPath   string // Path to the server binary; empty searches for it
	StrictRanges bool   // Enforce advisory input ranges
	LogLevel     string // Server log level
}

// DefaultClientConfigPath returns the path to the desktop client's config file.
func DefaultClientConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support", "Claude")
	case "linux":
		// Try XDG config first, then fallback
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "Claude")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config", "Claude")
		}
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", errors.New("APPDATA environment variable not set")
		}
		configDir = filepath.Join(appData, "Claude")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return filepath.Join(configDir, "claude_desktop_config.json"), nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return DefaultClientConfigPath()
}

// LoadClientConfig loads the existing client configuration. A missing file
// yields an empty configuration.
func LoadClientConfig(configPath string) (*ClientConfig, error) {
	config := &ClientConfig{
		MCPServers: make(map[string]MCPServerConfig),
		extra:      make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &config.extra); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if raw, ok := config.extra["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &config.MCPServers); err != nil {
			return nil, fmt.Errorf("failed to parse mcpServers: %w", err)
		}
		delete(config.extra, "mcpServers")
	}
	if config.MCPServers == nil {
		config.MCPServers = make(map[string]MCPServerConfig)
	}

	return config, nil
}

// SaveClientConfig writes the configuration, creating its directory.
func SaveClientConfig(configPath string, config *ClientConfig) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := make(map[string]any, len(config.extra)+1)
	for k, v := range config.extra {
		out[k] = v
	}
	out["mcpServers"] = config.MCPServers

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Configure adds or updates the calculator server entry and returns the
// config path written.
func Configure(opts Options) (string, error) {
	configPath, err := resolvePath(opts.ConfigPath)
	if err != nil {
		return "", err
	}

	config, err := LoadClientConfig(configPath)
	if err != nil {
		return "", err
	}

	binaryPath := opts.BinaryPath
	if binaryPath == "" {
		binaryPath, err = FindBinary()
		if err != nil {
			return "", fmt.Errorf("could not find server binary: %w", err)
		}
	}

	serverConfig := MCPServerConfig{
		Command: binaryPath,
		Env:     make(map[string]string),
	}
	if opts.StrictRanges {
		serverConfig.Env["UROCALC_STRICT_RANGES"] = strconv.FormatBool(true)
	}
	if opts.LogLevel != "" {
		serverConfig.Env["UROCALC_LOG_LEVEL"] = opts.LogLevel
	}

	config.MCPServers[ServerName] = serverConfig

	if err := SaveClientConfig(configPath, config); err != nil {
		return "", err
	}
	return configPath, nil
}

// Remove deletes the calculator server entry. It reports whether an entry
// was present.
func Remove(configPath string) (bool, error) {
	configPath, err := resolvePath(configPath)
	if err != nil {
		return false, err
	}
	config, err := LoadClientConfig(configPath)
	if err != nil {
		return false, err
	}
	if _, ok := config.MCPServers[ServerName]; !ok {
		return false, nil
	}
	delete(config.MCPServers, ServerName)
	return true, SaveClientConfig(configPath, config)
}

// FindBinary attempts to find the server binary in common locations.
func FindBinary() (string, error) {
	if path, err := exec.LookPath(BinaryName); err == nil {
		return path, nil
	}

	locations := []string{
		"./" + BinaryName,
		"./build/" + BinaryName,
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".local", "bin", BinaryName))
	}
	locations = append(locations, "/usr/local/bin/"+BinaryName)

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			absPath, err := filepath.Abs(loc)
			if err != nil {
				return loc, nil
			}
			return absPath, nil
		}
	}

	return "", fmt.Errorf("binary '%s' not found in common locations", BinaryName)
}

// Status represents the current setup status.
type Status struct {
	ConfigPath string   `json:"config_path"`
	Configured bool     `json:"configured"`
	ServerPath string   `json:"server_path,omitempty"`
	Issues     []string `json:"issues"`
}

// GetStatus checks whether the server is registered and its binary exists.
func GetStatus(configPath string) (*Status, error) {
	configPath, err := resolvePath(configPath)
	if err != nil {
		return nil, err
	}
	status := &Status{ConfigPath: configPath, Issues: []string{}}

	config, err := LoadClientConfig(configPath)
	if err != nil {
		return nil, err
	}

	serverConfig, ok := config.MCPServers[ServerName]
	if !ok {
		status.Issues = append(status.Issues, "urology calculators are not registered with the MCP client")
		return status, nil
	}

	status.Configured = true
	status.ServerPath = serverConfig.Command

	info, err := os.Stat(serverConfig.Command)
	switch {
	case os.IsNotExist(err):
		status.Issues = append(status.Issues, fmt.Sprintf("Server binary not found at: %s", serverConfig.Command))
	case err == nil && runtime.GOOS != "windows" && info.Mode()&0o111 == 0:
		status.Issues = append(status.Issues, fmt.Sprintf("Server binary is not executable: %s", serverConfig.Command))
	}

	return status, nil
}

// OK reports whether the setup has no issues.
func (s *Status) OK() bool {
	return s.Configured && len(s.Issues) == 0
}
