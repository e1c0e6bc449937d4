package fsmetadata

import (
	"path/filepath"

	"github.com/crmarques/reason/faults"
	metadatadomain "github.com/crmarques/reason/metadata"
)

var _ metadatadomain.Store = (*FSMetadataService)(nil)

const DefaultFileName = ".meta.json"

// FSMetadataService keeps the metadata cache as a single JSON file inside the
// workspace base directory.
type FSMetadataService struct {
	baseDir  string
	fileName string
}

func NewFSMetadataService(baseDir string, fileName string) *FSMetadataService {
	if fileName == "" {
		fileName = DefaultFileName
	}
	return &FSMetadataService{
		baseDir:  filepath.Clean(baseDir),
		fileName: fileName,
	}
}

// Path is the absolute or base-dir relative location of the cache file.
func (s *FSMetadataService) Path() string {
	return filepath.Join(s.baseDir, s.fileName)
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
