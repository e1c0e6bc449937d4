package fsstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	debugctx "github.com/crmarques/reason/debugctx"
	"github.com/crmarques/reason/internal/providers/shared/fsutil"
	"github.com/crmarques/reason/record"
	"github.com/crmarques/reason/repository"
	"github.com/crmarques/reason/yamlutil"
	"go.yaml.in/yaml/v3"
)

func (r *LocalRecordRepository) Write(ctx context.Context, filePath string, content map[string]any) error {
	dir, err := r.recordDirPath(filePath)
	if err != nil {
		return err
	}

	normalized, err := record.Normalize(content)
	if err != nil {
		return err
	}

	encoded, err := r.encodePayload(normalized)
	if err != nil {
		return internalError("failed to encode record", err)
	}

	targetPath := repository.RecordFilePath(dir, r.resourceFormat)
	if err := fsutil.WriteFileAtomic(targetPath, encoded, 0o644, ".reason-tmp-*"); err != nil {
		return internalError(fmt.Sprintf("failed to write record file %q", targetPath), err)
	}
	debugctx.Printf(ctx, "record fs write file=%q bytes=%d", targetPath, len(encoded))

	for _, extension := range repository.ReadExtensions {
		siblingPath := filepath.Join(dir, filepath.Base(dir)+extension)
		if siblingPath == targetPath {
			continue
		}
		if removeErr := os.Remove(siblingPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			return internalError("failed to remove stale record file", removeErr)
		} else if removeErr == nil {
			debugctx.Printf(ctx, "record fs removed stale file=%q", siblingPath)
		}
	}

	return nil
}

// readRecord loads the record of dir. It reports false when the directory
// holds no record file.
func (r *LocalRecordRepository) readRecord(dir string, filePath string) (record.LocalRecord, bool, error) {
	for _, extension := range repository.ReadExtensions {
		candidate := filepath.Join(dir, filepath.Base(dir)+extension)
		data, err := os.ReadFile(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return record.LocalRecord{}, false, internalError(fmt.Sprintf("failed to read record file %q", candidate), err)
		}

		format, _ := repository.FormatForExtension(extension)
		decoded, err := decodePayload(data, format)
		if err != nil {
			return record.LocalRecord{}, false, invalidRecordError(candidate, err)
		}

		local, err := record.LocalFromContent(filePath, decoded)
		if err != nil {
			return record.LocalRecord{}, false, invalidRecordError(candidate, err)
		}
		return local, true, nil
	}
	return record.LocalRecord{}, false, nil
}

func (r *LocalRecordRepository) encodePayload(value any) ([]byte, error) {
	switch r.resourceFormat {
	case repository.ResourceFormatYAML:
		return yamlutil.Marshal(value)
	case repository.ResourceFormatJSON:
		fallthrough
	default:
		encoded, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(encoded, '\n'), nil
	}
}

func decodePayload(data []byte, format repository.ResourceFormat) (map[string]any, error) {
	var decoded any
	switch format {
	case repository.ResourceFormatYAML:
		if err := yaml.Unmarshal(data, &decoded); err != nil {
			return nil, validationError("invalid yaml record", err)
		}
	default:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&decoded); err != nil {
			return nil, validationError("invalid json record", err)
		}
	}

	normalized, err := record.Normalize(decoded)
	if err != nil {
		return nil, err
	}
	if normalized == nil {
		return map[string]any{}, nil
	}
	object, ok := normalized.(map[string]any)
	if !ok {
		return nil, validationError(fmt.Sprintf("record must be an object, got %T", normalized), nil)
	}
	return object, nil
}

func invalidRecordError(path string, err error) error {
	return validationError(fmt.Sprintf("invalid record file %q", path), err)
}
