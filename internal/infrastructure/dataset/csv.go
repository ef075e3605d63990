package dataset

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"io"
	"os"
	"strings"

	"github.com/turtacn/ReviewPulse/internal/domain/review"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// Columns names the header cells that hold the record fields.  Topic columns
// are named after the taxonomy topics themselves.
type Columns struct {
	Entity string
	Date   string
	Rating string
	// Text is optional; empty means the export carries no review text.
	Text string
}

// DefaultColumns matches the Google review export.
func DefaultColumns() Columns {
	return Columns{Entity: "name", Date: "date", Rating: "Rating", Text: "Review"}
}

// CSVReader decodes review exports.
type CSVReader struct {
	taxonomy  *review.Taxonomy
	columns   Columns
	delimiter rune
}

// NewCSVReader returns a reader for exports laid out as columns.  A zero
// delimiter means comma.
func NewCSVReader(taxonomy *review.Taxonomy, columns Columns, delimiter rune) *CSVReader {
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVReader{taxonomy: taxonomy, columns: columns, delimiter: delimiter}
}

type csvLayout struct {
	entity, date, rating, text int
	topics                     []int
}

func (r *CSVReader) layout(header []string) (*csvLayout, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	find := func(name string) (int, error) {
		i, ok := index[name]
		if !ok {
			return 0, errors.New(errors.ErrCodeMissingColumn, "column not found in header").WithDetail(name)
		}
		return i, nil
	}

	l := &csvLayout{text: -1, topics: make([]int, r.taxonomy.Len())}
	var err error
	if l.entity, err = find(r.columns.Entity); err != nil {
		return nil, err
	}
	if l.date, err = find(r.columns.Date); err != nil {
		return nil, err
	}
	if l.rating, err = find(r.columns.Rating); err != nil {
		return nil, err
	}
	if r.columns.Text != "" {
		if l.text, err = find(r.columns.Text); err != nil {
			return nil, err
		}
	}
	for i, topic := range r.taxonomy.Topics() {
		if l.topics[i], err = find(topic); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Read decodes every row of in into a Dataset.  Any missing column or
// malformed row fails the whole load.
func (r *CSVReader) Read(in io.Reader) (*review.Dataset, error) {
	cr := csv.NewReader(in)
	cr.Comma = r.delimiter
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.New(errors.ErrCodeMissingColumn, "csv export is empty")
		}
		return nil, errors.Wrap(err, errors.ErrCodeMalformedRecord, "failed to read csv header")
	}
	l, err := r.layout(header)
	if err != nil {
		return nil, err
	}

	var records []review.Record
	for {
		row, err := cr.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeMalformedRecord, "failed to read csv row")
		}
		line, _ := cr.FieldPos(0)
		rec, err := l.record(row)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeMalformedRecord, "invalid csv row").WithDetailf("line %d", line)
		}
		records = append(records, rec)
	}
	return review.NewDataset(r.taxonomy, records)
}

func (l *csvLayout) record(row []string) (review.Record, error) {
	var rec review.Record
	rec.Entity = strings.TrimSpace(row[l.entity])
	date, err := review.ParseDate(row[l.date])
	if err != nil {
		return rec, err
	}
	rec.Date = date
	if rec.Rating, err = review.ParseRating(row[l.rating]); err != nil {
		return rec, err
	}
	if l.text >= 0 {
		rec.Text = row[l.text]
	}
	for i, col := range l.topics {
		on, err := review.ParseFlag(row[col])
		if err != nil {
			return rec, err
		}
		if on {
			rec.Topics = rec.Topics.With(i)
		}
	}
	return rec, nil
}

// FileSource loads a CSV export from the local filesystem.
type FileSource struct {
	path   string
	reader *CSVReader
}

// NewFileSource returns a Source reading path with reader.
func NewFileSource(path string, reader *CSVReader) *FileSource {
	return &FileSource{path: path, reader: reader}
}

// Name implements Source.
func (s *FileSource) Name() string { return "csv" }

// Load implements Source.
func (s *FileSource) Load(ctx context.Context) (*review.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetUnavailable, "failed to open csv export").WithDetail(s.path)
	}
	defer f.Close()
	return s.reader.Read(f)
}

//Personal.AI order the ending
