package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/crmarques/reason/config"
	"github.com/crmarques/reason/yamlutil"
)

var configFileNames = []string{"config.json", "config.yaml", "config.yml"}

func decodeWorkspaceFile(path string) (config.Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config.Workspace{}, err
	}
	return decodeWorkspace(data, formatForPath(path))
}

func decodeWorkspace(data []byte, format string) (config.Workspace, error) {
	var cfg config.Workspace

	if format == config.ResourceFormatJSON {
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return config.Workspace{}, validationError("invalid workspace config json", err)
		}
		return cfg, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return config.Workspace{}, validationError("invalid workspace config yaml", err)
	}
	return cfg, nil
}

func encodeWorkspace(cfg config.Workspace, format string) ([]byte, error) {
	if format == config.ResourceFormatYAML {
		return yamlutil.Marshal(cfg)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return config.ResourceFormatYAML
	default:
		return config.ResourceFormatJSON
	}
}

func configFileNameForFormat(format string) string {
	if format == config.ResourceFormatYAML {
		return "config.yaml"
	}
	return "config.json"
}

// expandPath resolves a leading ~ and makes the path absolute against the
// working directory.
func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", internalError("failed to resolve user home directory", err)
		}
		path = filepath.Join(homeDir, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
	}

	cleanPath := filepath.Clean(path)
	if cleanPath == "" {
		return "", validationError("path is empty", nil)
	}

	absolute, err := filepath.Abs(cleanPath)
	if err != nil {
		return "", internalError("failed to resolve absolute path", err)
	}
	return absolute, nil
}

// findConfigFile returns the first existing config file in baseDir.
func findConfigFile(baseDir string) (string, bool, error) {
	for _, name := range configFileNames {
		candidate := filepath.Join(baseDir, name)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", false, internalError("failed to inspect workspace config", err)
		}
	}
	return "", false, nil
}
