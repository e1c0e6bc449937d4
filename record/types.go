package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"github.com/crmarques/reason/faults"
)

// Envelope keys. Everything else in a record is an open attribute.
const (
	KeyID             = "id"
	KeyName           = "name"
	KeyLastUpdated    = "lastUpdated"
	KeyOrganizationID = "organizationId"
	KeyCreatedAt      = "createdAt"
	KeyFilePath       = "filePath"
)

// ServerManagedKeys are set by the remote side only. They are stripped before
// records are written locally and before content comparisons.
var ServerManagedKeys = []string{KeyLastUpdated, KeyID, KeyCreatedAt, KeyOrganizationID}

// Fields holds the schema-open attributes of a record.
type Fields map[string]any

func (f Fields) Clone() Fields {
	if f == nil {
		return Fields{}
	}
	return maps.Clone(f)
}

// LocalRecord is one record directory read from the workspace. FilePath is
// the directory holding the record file.
type LocalRecord struct {
	Name     string
	FilePath string
	Fields   Fields
}

// Content returns the attributes persisted in the record file.
func (r LocalRecord) Content() map[string]any {
	content := make(map[string]any, len(r.Fields)+1)
	for key, value := range r.Fields {
		content[key] = value
	}
	content[KeyName] = r.Name
	return content
}

// LocalFromContent builds a local record from a decoded record file. The
// folder name is used when the file does not carry a name.
func LocalFromContent(filePath string, content map[string]any) (LocalRecord, error) {
	fields, err := NormalizeFields(StripServerFields(content))
	if err != nil {
		return LocalRecord{}, err
	}

	name, _ := fields[KeyName].(string)
	delete(fields, KeyName)
	if strings.TrimSpace(name) == "" {
		name = filepath.Base(filePath)
	}

	return LocalRecord{Name: name, FilePath: filePath, Fields: fields}, nil
}

// RemoteRecord is a record as listed by the server.
type RemoteRecord struct {
	ID             string
	Name           string
	LastUpdated    int64
	OrganizationID string
	CreatedAt      string
	Fields         Fields
}

// LocalContent is the remote record in local-file form: name and open
// attributes, server-managed fields removed.
func (r RemoteRecord) LocalContent() map[string]any {
	content := make(map[string]any, len(r.Fields)+1)
	for key, value := range StripServerFields(r.Fields) {
		content[key] = value
	}
	content[KeyName] = r.Name
	return content
}

func (r RemoteRecord) toMap() map[string]any {
	values := make(map[string]any, len(r.Fields)+5)
	for key, value := range r.Fields {
		values[key] = value
	}
	values[KeyID] = r.ID
	values[KeyName] = r.Name
	values[KeyLastUpdated] = r.LastUpdated
	values[KeyOrganizationID] = r.OrganizationID
	values[KeyCreatedAt] = r.CreatedAt
	return values
}

func (r RemoteRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toMap())
}

func (r *RemoteRecord) UnmarshalJSON(data []byte) error {
	values, err := decodeObject(data)
	if err != nil {
		return err
	}
	decoded, err := remoteFromMap(values)
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}

// MetaRecord is the cached last-synced remote snapshot of a record together
// with the local directory that represents it.
type MetaRecord struct {
	RemoteRecord
	FilePath string
}

func NewMetaRecord(filePath string, remote RemoteRecord) MetaRecord {
	return MetaRecord{RemoteRecord: remote, FilePath: filePath}
}

func (m MetaRecord) MarshalJSON() ([]byte, error) {
	values := m.toMap()
	values[KeyFilePath] = m.FilePath
	return json.Marshal(values)
}

func (m *MetaRecord) UnmarshalJSON(data []byte) error {
	values, err := decodeObject(data)
	if err != nil {
		return err
	}

	filePath, _ := values[KeyFilePath].(string)
	delete(values, KeyFilePath)

	remote, err := remoteFromMap(values)
	if err != nil {
		return err
	}
	*m = MetaRecord{RemoteRecord: remote, FilePath: filePath}
	return nil
}

// StripServerFields returns a copy of values without server-managed keys and
// without the local filePath annotation.
func StripServerFields(values map[string]any) map[string]any {
	stripped := make(map[string]any, len(values))
	for key, value := range values {
		stripped[key] = value
	}
	for _, key := range ServerManagedKeys {
		delete(stripped, key)
	}
	delete(stripped, KeyFilePath)
	return stripped
}

func decodeObject(data []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var values map[string]any
	if err := decoder.Decode(&values); err != nil {
		return nil, faults.NewTypedError(faults.ValidationError, "record is not a JSON object", err)
	}
	normalized, err := foldObject(values)
	if err != nil {
		return nil, err
	}
	return normalized, nil
}

// RemoteFromMap builds a remote record from a decoded JSON object.
func RemoteFromMap(values map[string]any) (RemoteRecord, error) {
	normalized, err := foldObject(values)
	if err != nil {
		return RemoteRecord{}, err
	}
	return remoteFromMap(normalized)
}

func remoteFromMap(values map[string]any) (RemoteRecord, error) {
	id, err := stringValue(values[KeyID])
	if err != nil {
		return RemoteRecord{}, fieldError(KeyID, err)
	}
	name, err := stringValue(values[KeyName])
	if err != nil {
		return RemoteRecord{}, fieldError(KeyName, err)
	}
	lastUpdated, err := int64Value(values[KeyLastUpdated])
	if err != nil {
		return RemoteRecord{}, fieldError(KeyLastUpdated, err)
	}
	organizationID, err := stringValue(values[KeyOrganizationID])
	if err != nil {
		return RemoteRecord{}, fieldError(KeyOrganizationID, err)
	}
	createdAt, err := stringValue(values[KeyCreatedAt])
	if err != nil {
		return RemoteRecord{}, fieldError(KeyCreatedAt, err)
	}

	fields := Fields{}
	for key, value := range values {
		switch key {
		case KeyID, KeyName, KeyLastUpdated, KeyOrganizationID, KeyCreatedAt:
			continue
		}
		fields[key] = value
	}

	return RemoteRecord{
		ID:             id,
		Name:           name,
		LastUpdated:    lastUpdated,
		OrganizationID: organizationID,
		CreatedAt:      createdAt,
		Fields:         fields,
	}, nil
}

func stringValue(value any) (string, error) {
	switch typed := value.(type) {
	case nil:
		return "", nil
	case string:
		return typed, nil
	case int64:
		return fmt.Sprintf("%d", typed), nil
	default:
		return "", fmt.Errorf("expected string, got %T", value)
	}
}

func int64Value(value any) (int64, error) {
	switch typed := value.(type) {
	case nil:
		return 0, nil
	case int64:
		return typed, nil
	case float64:
		// Whole numbers within int64 are already folded to int64.
		return 0, fmt.Errorf("expected integer within int64, got %v", typed)
	default:
		return 0, fmt.Errorf("expected integer, got %T", value)
	}
}

func fieldError(key string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, fmt.Sprintf("invalid record field %q", key), cause)
}
