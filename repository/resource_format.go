package repository

import (
	"fmt"
	"path/filepath"
	"strings"
)

type ResourceFormat string

const (
	ResourceFormatJSON ResourceFormat = "json"
	ResourceFormatYAML ResourceFormat = "yaml"
)

const (
	extensionJSON = ".json"
	extensionYAML = ".yaml"
	extensionYML  = ".yml"
)

// ReadExtensions lists the record file extensions in lookup order.
var ReadExtensions = []string{extensionJSON, extensionYAML, extensionYML}

func ParseResourceFormat(raw string) (ResourceFormat, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "", "json":
		return ResourceFormatJSON, nil
	case "yaml", "yml":
		return ResourceFormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported resource format %q (expected json or yaml)", raw)
	}
}

func (f ResourceFormat) Extension() string {
	if f == ResourceFormatYAML {
		return extensionYAML
	}
	return extensionJSON
}

// FormatForExtension maps a record file extension to its format.
func FormatForExtension(extension string) (ResourceFormat, bool) {
	switch strings.ToLower(extension) {
	case extensionJSON:
		return ResourceFormatJSON, true
	case extensionYAML, extensionYML:
		return ResourceFormatYAML, true
	default:
		return "", false
	}
}

// RecordFilePath is the record file for the record directory dir: the file
// carries the directory base name.
func RecordFilePath(dir string, format ResourceFormat) string {
	return filepath.Join(dir, filepath.Base(dir)+format.Extension())
}
