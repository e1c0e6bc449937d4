package config

import "time"

type WorkspaceSelection struct {
	// ConfigPath points at an explicit config file. Empty means the default
	// location inside the base directory or the REASON_CONFIG env var.
	ConfigPath string
	Overrides  map[string]string
}

const (
	ConfigFileEnvVar     = "REASON_CONFIG"
	APIKeyEnvVar         = "REASON_API_KEY"
	BaseURLEnvVar        = "REASON_BASE_URL"
	DefaultBaseDir       = "./reason"
	DefaultMetadataFile  = ".meta.json"
	DefaultBaseURL       = "https://localhost:3001/api/v1"
	DefaultRemoteTimeout = 30 * time.Second
	ResourceFormatJSON   = "json"
	ResourceFormatYAML   = "yaml"
)

// Workspace is the persisted configuration of one local reason workspace.
type Workspace struct {
	BaseDir        string     `json:"base-dir" yaml:"base-dir"`
	MetadataFile   string     `json:"metadata-file,omitempty" yaml:"metadata-file,omitempty"`
	ResourceFormat string     `json:"resource-format,omitempty" yaml:"resource-format,omitempty"`
	Remote         Remote     `json:"remote,omitzero" yaml:"remote,omitempty"`
	Auth           Auth       `json:"auth,omitzero" yaml:"auth,omitempty"`
	Repository     Repository `json:"repository,omitzero" yaml:"repository,omitempty"`
	Logging        Logging    `json:"logging,omitzero" yaml:"logging,omitempty"`
	Metrics        Metrics    `json:"metrics,omitzero" yaml:"metrics,omitempty"`
}

type Remote struct {
	BaseURL           string  `json:"base-url,omitempty" yaml:"base-url,omitempty"`
	Timeout           string  `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	RequestsPerSecond float64 `json:"requests-per-second,omitempty" yaml:"requests-per-second,omitempty"`
	TLS               *TLS    `json:"tls,omitempty" yaml:"tls,omitempty"`
}

// TLS customizes certificate checks of the remote API, typically for a
// self-hosted server with a private CA.
type TLS struct {
	CACertFile         string `json:"ca-cert-file,omitempty" yaml:"ca-cert-file,omitempty"`
	ClientCertFile     string `json:"client-cert-file,omitempty" yaml:"client-cert-file,omitempty"`
	ClientKeyFile      string `json:"client-key-file,omitempty" yaml:"client-key-file,omitempty"`
	InsecureSkipVerify bool   `json:"insecure-skip-verify,omitempty" yaml:"insecure-skip-verify,omitempty"`
}

// TimeoutDuration returns the configured request timeout or the default when
// unset or unparsable. Validation rejects unparsable values before use.
func (r Remote) TimeoutDuration() time.Duration {
	if r.Timeout == "" {
		return DefaultRemoteTimeout
	}
	parsed, err := time.ParseDuration(r.Timeout)
	if err != nil || parsed <= 0 {
		return DefaultRemoteTimeout
	}
	return parsed
}

type Auth struct {
	APIKey string `json:"api-key,omitempty" yaml:"api-key,omitempty"`
}

type Repository struct {
	Git GitRepository `json:"git,omitzero" yaml:"git,omitempty"`
}

type GitRepository struct {
	AutoInit   bool `json:"auto-init,omitempty" yaml:"auto-init,omitempty"`
	AutoCommit bool `json:"auto-commit,omitempty" yaml:"auto-commit,omitempty"`
}

type Logging struct {
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"max-size-mb,omitempty" yaml:"max-size-mb,omitempty"`
	MaxBackups int    `json:"max-backups,omitempty" yaml:"max-backups,omitempty"`
}

type Metrics struct {
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// MetadataPath is the location of the metadata cache file.
func (w Workspace) MetadataPath() string {
	return joinBase(w.BaseDir, w.MetadataFile)
}
