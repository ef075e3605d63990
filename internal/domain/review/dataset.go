package review

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// Dataset is the immutable in-memory review corpus.  It is built once at
// process start, injected into the analytics service and only read after
// that, so it is safe for concurrent use without locking.
type Dataset struct {
	taxonomy    *Taxonomy
	records     []Record
	entities    []string
	byEntity    map[string][]int
	minDate     time.Time
	maxDate     time.Time
	fingerprint string
}

// NewDataset takes ownership of records and indexes them.  Every record must
// carry an entity name, a rating in 1..5 and no topic flag beyond the
// taxonomy.
func NewDataset(taxonomy *Taxonomy, records []Record) (*Dataset, error) {
	if taxonomy == nil {
		return nil, errors.New(errors.ErrCodeEmptyTaxonomy, "dataset requires a taxonomy")
	}
	ds := &Dataset{
		taxonomy: taxonomy,
		records:  records,
		byEntity: make(map[string][]int),
	}
	mask := taxonomy.Mask()
	for i := range records {
		r := &records[i]
		if r.Entity == "" {
			return nil, errors.New(errors.ErrCodeMalformedRecord, "record without entity name").WithDetailf("row %d", i)
		}
		if err := checkRating(r.Rating, ""); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeMalformedRecord, "record rating out of range").WithDetailf("row %d", i)
		}
		if r.Topics&^mask != 0 {
			return nil, errors.New(errors.ErrCodeMalformedRecord, "record flags a topic outside the taxonomy").WithDetailf("row %d", i)
		}
		r.Date = Day(r.Date)
		if _, seen := ds.byEntity[r.Entity]; !seen {
			ds.entities = append(ds.entities, r.Entity)
		}
		ds.byEntity[r.Entity] = append(ds.byEntity[r.Entity], i)
		if i == 0 || r.Date.Before(ds.minDate) {
			ds.minDate = r.Date
		}
		if i == 0 || r.Date.After(ds.maxDate) {
			ds.maxDate = r.Date
		}
	}
	ds.fingerprint = fingerprint(taxonomy, records)
	return ds, nil
}

// Taxonomy returns the topic taxonomy the dataset was loaded with.
func (d *Dataset) Taxonomy() *Taxonomy { return d.taxonomy }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// At returns the record at row i.  Callers must not modify it.
func (d *Dataset) At(i int) *Record { return &d.records[i] }

// Entities returns entity names in order of first appearance.
func (d *Dataset) Entities() []string {
	out := make([]string, len(d.entities))
	copy(out, d.entities)
	return out
}

// HasEntity reports whether any record belongs to name.
func (d *Dataset) HasEntity(name string) bool {
	_, ok := d.byEntity[name]
	return ok
}

// Rows returns the row indices of name in dataset order.  The slice is shared
// and must not be modified.
func (d *Dataset) Rows(name string) []int { return d.byEntity[name] }

// DateRange returns the earliest and latest review dates.  Both are zero for
// an empty dataset.
func (d *Dataset) DateRange() (time.Time, time.Time) { return d.minDate, d.maxDate }

// Fingerprint identifies the dataset content; identical records and taxonomy
// yield identical fingerprints.
func (d *Dataset) Fingerprint() string { return d.fingerprint }

func fingerprint(taxonomy *Taxonomy, records []Record) string {
	h := sha256.New()
	for _, topic := range taxonomy.topics {
		h.Write([]byte(topic))
		h.Write([]byte{0})
	}
	var buf [8]byte
	for i := range records {
		r := &records[i]
		h.Write([]byte(r.Entity))
		h.Write([]byte{0})
		binary.BigEndian.PutUint64(buf[:], uint64(r.Date.Unix()))
		h.Write(buf[:])
		h.Write([]byte{byte(r.Rating)})
		binary.BigEndian.PutUint64(buf[:], uint64(r.Topics))
		h.Write(buf[:])
		h.Write([]byte(r.Text))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

//Personal.AI order the ending
