package reconciler

import (
	"encoding/json"
	"slices"
)

type Status string

const (
	StatusCreatedUpstream Status = "CREATED_UPSTREAM"
	StatusCreatedLocal    Status = "CREATED_LOCAL"
	StatusUpdatedUpstream Status = "UPDATED_UPSTREAM"
	StatusUpdatedLocal    Status = "UPDATED_LOCAL"
	StatusDeletedUpstream Status = "DELETED_UPSTREAM"
	StatusDeletedLocal    Status = "DELETED_LOCAL"
	StatusUnchanged       Status = "UNCHANGED"
)

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{
		StatusCreatedUpstream,
		StatusCreatedLocal,
		StatusUpdatedUpstream,
		StatusUpdatedLocal,
		StatusDeletedUpstream,
		StatusDeletedLocal,
		StatusUnchanged,
	}
}

// Text is the human readable form used in status listings.
func (s Status) Text() string {
	switch s {
	case StatusCreatedUpstream:
		return "Created upstream"
	case StatusCreatedLocal:
		return "Created locally"
	case StatusUpdatedUpstream:
		return "Updated upstream"
	case StatusUpdatedLocal:
		return "Updated locally"
	case StatusDeletedUpstream:
		return "Deleted upstream"
	case StatusDeletedLocal:
		return "Deleted locally"
	case StatusUnchanged:
		return "Unchanged"
	default:
		return string(s)
	}
}

// IsUpstream reports whether the status describes a change made on the server
// that the workspace has not seen yet.
func (s Status) IsUpstream() bool {
	switch s {
	case StatusCreatedUpstream, StatusUpdatedUpstream, StatusDeletedUpstream:
		return true
	default:
		return false
	}
}

// Entry is one classified record. Key is the remote id when one is known and
// the local record path otherwise.
type Entry struct {
	Key    string `json:"key" yaml:"key"`
	Name   string `json:"name" yaml:"name"`
	Status Status `json:"status" yaml:"status"`
}

// StatusTable maps keys to entries in first-insertion order. Setting an
// existing key replaces its entry without moving it.
type StatusTable struct {
	keys         []string
	entries      map[string]Entry
	unclassified []string
}

func NewStatusTable() *StatusTable {
	return &StatusTable{entries: map[string]Entry{}}
}

func (t *StatusTable) Set(key string, name string, status Status) {
	if _, exists := t.entries[key]; !exists {
		t.keys = append(t.keys, key)
	}
	t.entries[key] = Entry{Key: key, Name: name, Status: status}
}

func (t *StatusTable) Get(key string) (Entry, bool) {
	entry, ok := t.entries[key]
	return entry, ok
}

func (t *StatusTable) Len() int {
	return len(t.keys)
}

func (t *StatusTable) Entries() []Entry {
	items := make([]Entry, 0, len(t.keys))
	for _, key := range t.keys {
		items = append(items, t.entries[key])
	}
	return items
}

// UpstreamEntries returns the entries that block a push.
func (t *StatusTable) UpstreamEntries() []Entry {
	items := make([]Entry, 0)
	for _, entry := range t.Entries() {
		if entry.Status.IsUpstream() {
			items = append(items, entry)
		}
	}
	return items
}

func (t *StatusTable) HasUpstreamChanges() bool {
	return len(t.UpstreamEntries()) > 0
}

// Counts returns the number of entries per status. Statuses without entries
// are present with zero.
func (t *StatusTable) Counts() map[Status]int {
	counts := make(map[Status]int, len(Statuses()))
	for _, status := range Statuses() {
		counts[status] = 0
	}
	for _, entry := range t.entries {
		counts[entry.Status]++
	}
	return counts
}

// Unclassified returns the remote ids whose cached snapshot is newer than the
// server copy and that no pass gave a status.
func (t *StatusTable) Unclassified() []string {
	return slices.Clone(t.unclassified)
}

// AllUnchanged reports whether every entry is UNCHANGED.
func (t *StatusTable) AllUnchanged() bool {
	for _, entry := range t.entries {
		if entry.Status != StatusUnchanged {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the table as its ordered entry list.
func (t *StatusTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Entries())
}

// MarshalYAML encodes the table as its ordered entry list.
func (t *StatusTable) MarshalYAML() (any, error) {
	return t.Entries(), nil
}
