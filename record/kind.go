package record

import (
	"fmt"
	"strings"

	"github.com/crmarques/reason/faults"
)

// Kind describes one category of synchronized record.
type Kind struct {
	// Name is the CLI command name.
	Name string
	// Label is the singular display name used in messages.
	Label string
	// RemotePath is the collection endpoint relative to the remote base URL.
	RemotePath string
	// LocalFolder is the folder under the workspace base directory.
	LocalFolder string
	// MetadataKey is the list key inside the metadata cache file.
	MetadataKey string
	Aliases     []string
}

var (
	Integrals = Kind{
		Name:        "integrals",
		Label:       "Integral",
		RemotePath:  "/apis",
		LocalFolder: "integrals",
		MetadataKey: "integrals",
		Aliases:     []string{"integral", "apis", "api"},
	}
	Functions = Kind{
		Name:        "functions",
		Label:       "Function",
		RemotePath:  "/functions",
		LocalFolder: "functions",
		MetadataKey: "functions",
		Aliases:     []string{"function"},
	}
)

// Kinds returns the built-in kinds in the order workspace-wide commands
// process them.
func Kinds() []Kind {
	return []Kind{Integrals, Functions}
}

func LookupKind(name string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, kind := range Kinds() {
		if kind.Name == normalized {
			return kind, nil
		}
		for _, alias := range kind.Aliases {
			if alias == normalized {
				return kind, nil
			}
		}
	}
	return Kind{}, faults.NewTypedError(faults.ValidationError, fmt.Sprintf("unknown resource kind %q", name), nil)
}

// Plural is the lowercase plural label used in headings.
func (k Kind) Plural() string {
	return strings.ToLower(k.Label) + "s"
}

func (k Kind) String() string {
	return k.Name
}
