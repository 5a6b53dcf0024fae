// Package inspect keeps a queryable index of effect statuses, one per
// provider mount.
package inspect

import (
	"fmt"
	"time"

	memdb "github.com/hashicorp/go-memdb"
	"go.uber.org/multierr"
)

const table = "effects"

// Record is the indexed status of one effect.
type Record struct {
	ID        string // namespace/effect
	Mount     string
	Namespace string
	Effect    string
	IsLoading bool
	Failed    bool
	Err       error
	CallID    uint64
	LastRun   time.Duration
}

func recordID(namespace, effect string) string {
	return namespace + "/" + effect
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			table: {
				Name: table,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					"namespace": {
						Name:    "namespace",
						Indexer: &memdb.StringFieldIndex{Field: "Namespace"},
					},
					"loading": {
						Name:    "loading",
						Indexer: &memdb.BoolFieldIndex{Field: "IsLoading"},
					},
					"failed": {
						Name:    "failed",
						Indexer: &memdb.BoolFieldIndex{Field: "Failed"},
					},
				},
			},
		},
	}
}

// Index is safe for concurrent use.
type Index struct {
	db *memdb.MemDB
}

func New() (*Index, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, err
	}
	return &Index{db: db}, nil
}

// Put inserts or replaces the record of rec.Namespace/rec.Effect.
// ID and Failed are derived from the other fields.
func (i *Index) Put(rec Record) error {
	rec.ID = recordID(rec.Namespace, rec.Effect)
	rec.Failed = rec.Err != nil

	txn := i.db.Txn(true)
	defer txn.Abort()

	if err := txn.Insert(table, &rec); err != nil {
		return fmt.Errorf("inspect: put %s: %w", rec.ID, err)
	}
	txn.Commit()
	return nil
}

// Get returns the record of one effect.
func (i *Index) Get(namespace, effect string) (Record, bool, error) {
	txn := i.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(table, "id", recordID(namespace, effect))
	if err != nil || raw == nil {
		return Record{}, false, err
	}
	return *raw.(*Record), true, nil
}

// Namespace returns the records of namespace ordered by id.
func (i *Index) Namespace(namespace string) ([]Record, error) {
	return i.list("namespace", namespace)
}

// Loading returns the records of effects currently running.
func (i *Index) Loading() ([]Record, error) {
	return i.list("loading", true)
}

// Failed returns the records whose last run returned an error.
func (i *Index) Failed() ([]Record, error) {
	return i.list("failed", true)
}

// Err combines the errors of every failed effect, or returns nil.
func (i *Index) Err() error {
	failed, err := i.Failed()
	if err != nil {
		return err
	}
	var errs error
	for _, rec := range failed {
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", rec.ID, rec.Err))
	}
	return errs
}

func (i *Index) list(index string, args ...any) ([]Record, error) {
	txn := i.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(table, index, args...)
	if err != nil {
		return nil, err
	}
	var out []Record
	for raw := it.Next(); raw != nil; raw = it.Next() {
		out = append(out, *raw.(*Record))
	}
	return out, nil
}
