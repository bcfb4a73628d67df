// Package blobstore persists the opaque numeric matrices ingestion produces
// for each trixel (per-sample blocks, backfilled ancestors, simplified
// layers) and the query facade reads back.
//
// The encoding is deliberately swappable: every caller in this repo treats
// the bytes on disk as opaque, and only this package knows how to turn them
// back into a [][]float64.
package blobstore

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// BlobStore loads and saves the numeric blocks backing a trixel's detailed
// or simplified data.
type BlobStore interface {
	// Save writes rows to path, overwriting any existing file.
	Save(path string, rows [][]float64) error
	// Load reads back a matrix previously written by Save.
	Load(path string) ([][]float64, error)
}

// GonumStore is the reference BlobStore, backed by gonum's mat.Dense binary
// encoding. File contents are opaque outside this package; by convention
// ingestion names these files "data.npy" even though the bytes are gonum's
// own binary format rather than NumPy's.
type GonumStore struct{}

// NewGonumStore returns the default BlobStore.
func NewGonumStore() *GonumStore {
	return &GonumStore{}
}

// Save writes rows as a dense matrix to path.
func (s *GonumStore) Save(path string, rows [][]float64) error {
	if len(rows) == 0 {
		// mat.Dense has no zero-size form, so an empty matrix is an empty file.
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return fmt.Errorf("blobstore: write %s: %w", path, err)
		}
		return nil
	}

	m, err := toDense(rows)
	if err != nil {
		return err
	}

	data, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("blobstore: marshal %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("blobstore: write %s: %w", path, err)
	}
	return nil
}

// Load reads back the matrix written by Save.
func (s *GonumStore) Load(path string) ([][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("blobstore: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return [][]float64{}, nil
	}

	var m mat.Dense
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("blobstore: unmarshal %s: %w", path, err)
	}

	return fromDense(&m), nil
}

func toDense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return mat.NewDense(0, 0, nil), nil
	}

	cols := len(rows[0])
	flat := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("blobstore: ragged rows: row 0 has %d columns, row %d has %d", cols, i, len(row))
		}
		flat = append(flat, row...)
	}
	return mat.NewDense(len(rows), cols, flat), nil
}

func fromDense(m *mat.Dense) [][]float64 {
	r, c := m.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		mat.Row(row, i, m)
		rows[i] = row
	}
	return rows
}
