package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/crmarques/reason/faults"
	"github.com/crmarques/reason/record"
)

// Snapshot is the in-memory form of the metadata cache: for each kind, the
// ordered list of last-synced remote records and the local directory mapped to
// each of them. Lists of kinds this binary does not know are kept verbatim.
type Snapshot struct {
	records map[string][]record.MetaRecord
	extra   map[string]json.RawMessage
}

// NewSnapshot returns an empty snapshot carrying a list for every built-in kind.
func NewSnapshot() *Snapshot {
	snapshot := &Snapshot{
		records: map[string][]record.MetaRecord{},
		extra:   map[string]json.RawMessage{},
	}
	for _, kind := range record.Kinds() {
		snapshot.records[kind.MetadataKey] = []record.MetaRecord{}
	}
	return snapshot
}

func (s *Snapshot) Records(kind record.Kind) []record.MetaRecord {
	return slices.Clone(s.records[kind.MetadataKey])
}

func (s *Snapshot) FindByID(kind record.Kind, id string) (record.MetaRecord, bool) {
	for _, item := range s.records[kind.MetadataKey] {
		if item.ID == id {
			return item, true
		}
	}
	return record.MetaRecord{}, false
}

func (s *Snapshot) FindByFilePath(kind record.Kind, filePath string) (record.MetaRecord, bool) {
	for _, item := range s.records[kind.MetadataKey] {
		if item.FilePath == filePath {
			return item, true
		}
	}
	return record.MetaRecord{}, false
}

// Upsert replaces the record with the same id in place or appends it.
func (s *Snapshot) Upsert(kind record.Kind, item record.MetaRecord) {
	items := s.records[kind.MetadataKey]
	for idx := range items {
		if items[idx].ID == item.ID {
			items[idx] = item
			return
		}
	}
	s.records[kind.MetadataKey] = append(items, item)
}

// Prepend inserts a freshly created record at the head of the kind list.
func (s *Snapshot) Prepend(kind record.Kind, item record.MetaRecord) {
	items := s.records[kind.MetadataKey]
	s.records[kind.MetadataKey] = append([]record.MetaRecord{item}, items...)
}

// Remove drops the record with the given id and reports whether one existed.
func (s *Snapshot) Remove(kind record.Kind, id string) bool {
	items := s.records[kind.MetadataKey]
	idx := slices.IndexFunc(items, func(item record.MetaRecord) bool { return item.ID == id })
	if idx < 0 {
		return false
	}
	s.records[kind.MetadataKey] = slices.Delete(items, idx, idx+1)
	return true
}

func (s *Snapshot) Clone() *Snapshot {
	cloned := &Snapshot{
		records: make(map[string][]record.MetaRecord, len(s.records)),
		extra:   maps.Clone(s.extra),
	}
	for key, items := range s.records {
		cloned.records[key] = slices.Clone(items)
	}
	if cloned.extra == nil {
		cloned.extra = map[string]json.RawMessage{}
	}
	return cloned
}

func (s *Snapshot) MarshalJSON() ([]byte, error) {
	values := make(map[string]any, len(s.records)+len(s.extra))
	for key, raw := range s.extra {
		values[key] = raw
	}
	for key, items := range s.records {
		if items == nil {
			items = []record.MetaRecord{}
		}
		values[key] = items
	}
	return json.Marshal(values)
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return faults.NewTypedError(faults.ValidationError, "metadata cache is not a JSON object", err)
	}

	decoded := NewSnapshot()
	known := make(map[string]bool, len(record.Kinds()))
	for _, kind := range record.Kinds() {
		known[kind.MetadataKey] = true
	}

	for key, value := range raw {
		if !known[key] {
			decoded.extra[key] = value
			continue
		}
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}
		var items []record.MetaRecord
		if err := json.Unmarshal(value, &items); err != nil {
			return faults.NewTypedError(faults.ValidationError, fmt.Sprintf("invalid metadata cache list %q", key), err)
		}
		decoded.records[key] = items
	}

	*s = *decoded
	return nil
}
