package index

import "github.com/starford/coursedocs/internal/models"

// Manifest defines the operations on the document manifest.
// Consumers should depend on this interface rather than the concrete *DB type.
type Manifest interface {
	UpsertDocument(d models.DocumentMeta, body string) error
	DeleteDocument(path string) error
	GetDocument(path string) (*models.DocumentMeta, error)
	ListDocuments(category models.Category) ([]models.DocumentMeta, error)
	AllChecksums() (map[string]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	RecordRun(r RunRow) error
	LatestRun() (*RunRow, error)
	Close() error
}

// Verify *DB satisfies Manifest at compile time.
var _ Manifest = (*DB)(nil)
