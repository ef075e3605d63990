package dataset

import (
	"context"

	"github.com/turtacn/ReviewPulse/internal/domain/review"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/storage/minio"
)

// ObjectSource loads a CSV export stored in an S3-compatible bucket.
type ObjectSource struct {
	repo   minio.ExportRepository
	key    string
	reader *CSVReader
}

// NewObjectSource returns a Source reading the object key through repo.
func NewObjectSource(repo minio.ExportRepository, key string, reader *CSVReader) *ObjectSource {
	return &ObjectSource{repo: repo, key: key, reader: reader}
}

// Name implements Source.
func (s *ObjectSource) Name() string { return "minio" }

// Load implements Source.
func (s *ObjectSource) Load(ctx context.Context) (*review.Dataset, error) {
	body, _, err := s.repo.Open(ctx, s.key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return s.reader.Read(body)
}

//Personal.AI order the ending
