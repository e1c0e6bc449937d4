package file

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/crmarques/reason/config"
)

func validateWorkspace(cfg config.Workspace) error {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return validationError("base-dir must not be empty", nil)
	}

	if strings.TrimSpace(cfg.MetadataFile) == "" {
		return validationError("metadata-file must not be empty", nil)
	}

	if cfg.ResourceFormat != config.ResourceFormatJSON && cfg.ResourceFormat != config.ResourceFormatYAML {
		return validationError("resource-format must be json or yaml", nil)
	}

	if err := validateRemote(cfg.Remote); err != nil {
		return err
	}

	if cfg.Logging.MaxSizeMB < 0 || cfg.Logging.MaxBackups < 0 {
		return validationError("logging rotation limits must not be negative", nil)
	}

	return nil
}

func validateRemote(remote config.Remote) error {
	parsed, err := url.Parse(remote.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return validationError(fmt.Sprintf("remote.base-url %q must be an absolute URL", remote.BaseURL), err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return validationError("remote.base-url scheme must be http or https", nil)
	}

	if remote.Timeout != "" {
		timeout, err := time.ParseDuration(remote.Timeout)
		if err != nil {
			return validationError(fmt.Sprintf("remote.timeout %q is not a duration", remote.Timeout), err)
		}
		if timeout <= 0 {
			return validationError("remote.timeout must be positive", nil)
		}
	}

	if remote.RequestsPerSecond < 0 {
		return validationError("remote.requests-per-second must not be negative", nil)
	}

	if remote.TLS != nil {
		certFile := strings.TrimSpace(remote.TLS.ClientCertFile)
		keyFile := strings.TrimSpace(remote.TLS.ClientKeyFile)
		if (certFile == "") != (keyFile == "") {
			return validationError("remote.tls requires both client-cert-file and client-key-file", nil)
		}
	}
	return nil
}

func normalizeWorkspace(cfg config.Workspace) config.Workspace {
	cfg.BaseDir = strings.TrimSpace(cfg.BaseDir)
	cfg.MetadataFile = strings.TrimSpace(cfg.MetadataFile)
	cfg.ResourceFormat = strings.ToLower(strings.TrimSpace(cfg.ResourceFormat))
	if cfg.ResourceFormat == "yml" {
		cfg.ResourceFormat = config.ResourceFormatYAML
	}
	cfg.Remote.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Remote.BaseURL), "/")
	cfg.Auth.APIKey = strings.TrimSpace(cfg.Auth.APIKey)
	return cfg
}

func applyWorkspaceDefaults(cfg config.Workspace) config.Workspace {
	cfg = normalizeWorkspace(cfg)
	if cfg.BaseDir == "" {
		cfg.BaseDir = config.DefaultBaseDir
	}
	if cfg.MetadataFile == "" {
		cfg.MetadataFile = config.DefaultMetadataFile
	}
	if cfg.ResourceFormat == "" {
		cfg.ResourceFormat = config.ResourceFormatJSON
	}
	if cfg.Remote.BaseURL == "" {
		cfg.Remote.BaseURL = config.DefaultBaseURL
	}
	return cfg
}

func applyEnvOverrides(cfg config.Workspace, lookup func(string) (string, bool)) config.Workspace {
	if value, ok := lookup(config.APIKeyEnvVar); ok && strings.TrimSpace(value) != "" {
		cfg.Auth.APIKey = value
	}
	if value, ok := lookup(config.BaseURLEnvVar); ok && strings.TrimSpace(value) != "" {
		cfg.Remote.BaseURL = value
	}
	return cfg
}

func applyOverrides(cfg config.Workspace, overrides map[string]string) (config.Workspace, error) {
	for _, key := range sortedOverrideKeys(overrides) {
		value := overrides[key]
		switch key {
		case "base-dir":
			cfg.BaseDir = value
		case "metadata-file":
			cfg.MetadataFile = value
		case "resource-format":
			cfg.ResourceFormat = value
		case "remote.base-url":
			cfg.Remote.BaseURL = value
		case "remote.timeout":
			cfg.Remote.Timeout = value
		case "remote.requests-per-second":
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return config.Workspace{}, validationError("override remote.requests-per-second must be a number", err)
			}
			cfg.Remote.RequestsPerSecond = parsed
		case "remote.tls.ca-cert-file":
			ensureTLS(&cfg.Remote).CACertFile = value
		case "remote.tls.insecure-skip-verify":
			parsed, err := strconv.ParseBool(value)
			if err != nil {
				return config.Workspace{}, validationError("override remote.tls.insecure-skip-verify must be true or false", err)
			}
			ensureTLS(&cfg.Remote).InsecureSkipVerify = parsed
		case "auth.api-key":
			cfg.Auth.APIKey = value
		case "logging.file":
			cfg.Logging.File = value
		case "metrics.file":
			cfg.Metrics.File = value
		default:
			return config.Workspace{}, unknownOverrideError(key)
		}
	}

	return cfg, nil
}

func ensureTLS(remote *config.Remote) *config.TLS {
	if remote.TLS == nil {
		remote.TLS = &config.TLS{}
	}
	return remote.TLS
}

func sortedOverrideKeys(overrides map[string]string) []string {
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func unknownOverrideError(key string) error {
	return validationError(fmt.Sprintf("unknown override key %q", key), nil)
}
