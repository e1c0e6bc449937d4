package reconciler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/crmarques/reason/record"
)

type AddOptions struct {
	// Name defaults to <kind label>_<8 hex chars>.
	Name   string
	Fields map[string]any
}

// Add scaffolds a new local record of kind. The record shows up as created
// locally until it is pushed.
func (e *Engine) Add(ctx context.Context, kind record.Kind, opts AddOptions) (record.LocalRecord, error) {
	if e == nil || e.Store == nil {
		return record.LocalRecord{}, internalError("record store is not configured", nil)
	}

	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = DefaultRecordName(kind)
	}
	if dirName := recordDirName(name, ""); dirName != name {
		return record.LocalRecord{}, validationError(fmt.Sprintf("%s name %q cannot be used as a directory name", kind.Label, name), nil)
	}

	filePath := filepath.Join(localDir(kind), name)
	exists, err := e.Store.Exists(ctx, filePath)
	if err != nil {
		return record.LocalRecord{}, err
	}
	if exists {
		return record.LocalRecord{}, conflictError(fmt.Sprintf("%s %q already exists", kind.Label, name), nil)
	}

	fields, err := record.NormalizeFields(record.StripServerFields(opts.Fields))
	if err != nil {
		return record.LocalRecord{}, err
	}
	delete(fields, record.KeyName)

	local := record.LocalRecord{Name: name, FilePath: filePath, Fields: fields}
	if err := e.Store.Write(ctx, filePath, local.Content()); err != nil {
		return record.LocalRecord{}, err
	}
	return local, nil
}

// DefaultRecordName generates a record name such as function_1a2b3c4d.
func DefaultRecordName(kind record.Kind) string {
	return strings.ToLower(kind.Label) + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
