package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crmarques/reason/config"
	"github.com/crmarques/reason/faults"
	"github.com/crmarques/reason/internal/providers/shared/fsutil"
)

var _ config.WorkspaceService = (*FileWorkspaceService)(nil)

type FileWorkspaceService struct {
	configFilePath string
	defaultBaseDir string
	lookupEnv      func(string) (string, bool)
}

type Option func(*FileWorkspaceService)

// WithDefaultBaseDir changes the directory searched for config.json or
// config.yaml when no explicit config path is set.
func WithDefaultBaseDir(baseDir string) Option {
	return func(s *FileWorkspaceService) {
		if baseDir != "" {
			s.defaultBaseDir = baseDir
		}
	}
}

// WithEnvLookup replaces os.LookupEnv, mainly for tests.
func WithEnvLookup(lookup func(string) (string, bool)) Option {
	return func(s *FileWorkspaceService) {
		if lookup != nil {
			s.lookupEnv = lookup
		}
	}
}

func NewFileWorkspaceService(configFilePath string, opts ...Option) *FileWorkspaceService {
	service := &FileWorkspaceService{
		configFilePath: configFilePath,
		defaultBaseDir: config.DefaultBaseDir,
		lookupEnv:      os.LookupEnv,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *FileWorkspaceService) Init(_ context.Context, cfg config.Workspace) error {
	cfg = applyWorkspaceDefaults(cfg)
	if s.configFilePath == "" && cfg.BaseDir == config.DefaultBaseDir {
		cfg.BaseDir = s.defaultBaseDir
	}
	if err := validateWorkspace(cfg); err != nil {
		return err
	}

	if existing, found, err := s.locate(); err != nil {
		return err
	} else if found {
		return validationError(fmt.Sprintf("workspace already initialized at %q", existing), nil)
	}

	baseDir, err := expandPath(cfg.BaseDir)
	if err != nil {
		return err
	}
	if existing, found, err := findConfigFile(baseDir); err != nil {
		return err
	} else if found {
		return validationError(fmt.Sprintf("workspace already initialized at %q", existing), nil)
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return internalError("failed to create workspace base directory", err)
	}

	targetPath, err := s.targetPath(cfg)
	if err != nil {
		return err
	}
	return s.write(targetPath, cfg)
}

func (s *FileWorkspaceService) Load(_ context.Context) (config.Workspace, error) {
	resolvedPath, found, err := s.locate()
	if err != nil {
		return config.Workspace{}, err
	}
	if !found {
		return config.Workspace{}, configMissingError("workspace config not found, run \"reason init\" and login first")
	}

	cfg, err := decodeWorkspaceFile(resolvedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.Workspace{}, configMissingError(fmt.Sprintf("workspace config %q not found", resolvedPath))
		}
		return config.Workspace{}, err
	}
	return cfg, nil
}

func (s *FileWorkspaceService) Resolve(ctx context.Context, selection config.WorkspaceSelection) (config.Workspace, error) {
	service := s
	if selection.ConfigPath != "" {
		scoped := *s
		scoped.configFilePath = selection.ConfigPath
		service = &scoped
	}

	cfg, err := service.Load(ctx)
	if err != nil {
		return config.Workspace{}, err
	}

	cfg = applyEnvOverrides(cfg, service.lookupEnv)
	cfg, err = applyOverrides(cfg, selection.Overrides)
	if err != nil {
		return config.Workspace{}, err
	}
	cfg = applyWorkspaceDefaults(cfg)
	if err := validateWorkspace(cfg); err != nil {
		return config.Workspace{}, err
	}

	baseDir, err := expandPath(cfg.BaseDir)
	if err != nil {
		return config.Workspace{}, err
	}
	cfg.BaseDir = baseDir
	return cfg, nil
}

func (s *FileWorkspaceService) Save(_ context.Context, cfg config.Workspace) error {
	cfg = normalizeWorkspace(cfg)
	if err := validateWorkspace(applyWorkspaceDefaults(cfg)); err != nil {
		return err
	}

	targetPath, found, err := s.locate()
	if err != nil {
		return err
	}
	if !found {
		targetPath, err = s.targetPath(applyWorkspaceDefaults(cfg))
		if err != nil {
			return err
		}
	}
	return s.write(targetPath, cfg)
}

func (s *FileWorkspaceService) Delete(ctx context.Context) error {
	cfg, err := s.Load(ctx)
	if err != nil {
		return err
	}
	cfg = applyWorkspaceDefaults(cfg)

	baseDir, err := expandPath(cfg.BaseDir)
	if err != nil {
		return err
	}
	if err := guardRemovableBaseDir(baseDir); err != nil {
		return err
	}

	if err := os.RemoveAll(baseDir); err != nil {
		return internalError("failed to remove workspace", err)
	}

	if resolvedPath, found, locateErr := s.locate(); locateErr == nil && found {
		if removeErr := os.Remove(resolvedPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			return internalError("failed to remove workspace config", removeErr)
		}
	}
	return nil
}

// ConfigPath reports the config file in use, if any.
func (s *FileWorkspaceService) ConfigPath() (string, bool, error) {
	return s.locate()
}

func (s *FileWorkspaceService) locate() (string, bool, error) {
	explicit := s.configFilePath
	if explicit == "" {
		if value, ok := s.lookupEnv(config.ConfigFileEnvVar); ok {
			explicit = value
		}
	}

	if explicit != "" {
		resolvedPath, err := expandPath(explicit)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(resolvedPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return resolvedPath, false, nil
			}
			return "", false, internalError("failed to inspect workspace config", err)
		}
		if info.IsDir() {
			return "", false, validationError(fmt.Sprintf("workspace config path %q is a directory", resolvedPath), nil)
		}
		return resolvedPath, true, nil
	}

	baseDir, err := expandPath(s.defaultBaseDir)
	if err != nil {
		return "", false, err
	}
	return findConfigFile(baseDir)
}

func (s *FileWorkspaceService) targetPath(cfg config.Workspace) (string, error) {
	explicit := s.configFilePath
	if explicit == "" {
		if value, ok := s.lookupEnv(config.ConfigFileEnvVar); ok {
			explicit = value
		}
	}
	if explicit != "" {
		return expandPath(explicit)
	}

	baseDir, err := expandPath(cfg.BaseDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, configFileNameForFormat(cfg.ResourceFormat)), nil
}

func (s *FileWorkspaceService) write(targetPath string, cfg config.Workspace) error {
	encoded, err := encodeWorkspace(cfg, formatForPath(targetPath))
	if err != nil {
		return internalError("failed to encode workspace config", err)
	}

	if err := fsutil.WriteFileAtomic(targetPath, encoded, 0o600, ".reason-config-*"); err != nil {
		return internalError("failed to write workspace config", err)
	}
	return nil
}

func guardRemovableBaseDir(baseDir string) error {
	cleaned := filepath.Clean(baseDir)
	if cleaned == string(filepath.Separator) || cleaned == filepath.VolumeName(cleaned)+string(filepath.Separator) {
		return validationError("refusing to remove filesystem root", nil)
	}
	if homeDir, err := os.UserHomeDir(); err == nil && filepath.Clean(homeDir) == cleaned {
		return validationError("refusing to remove the home directory", nil)
	}
	if workDir, err := os.Getwd(); err == nil && filepath.Clean(workDir) == cleaned {
		return validationError("refusing to remove the working directory", nil)
	}
	return nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func configMissingError(message string) error {
	return faults.NewTypedError(faults.ConfigMissingError, message, nil)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
