package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/windmesh/htm/internal/blobstore"
	"github.com/windmesh/htm/internal/geo"
)

// Backfill merges leaf blobs upward one level at a time, from the depth the
// saved leaf trixels sit at down to IngestMinDepth. For each trixel name
// visited, its parent's blob is loaded (if present), concatenated with the
// child's rows, and overwritten.
//
// leaves must all share the same depth, or an IntegrityError is returned —
// a violated invariant that aborts ingest per SPEC_FULL.md §7.
//
// Returns a depth → trixel-name list map spanning [IngestMinDepth, leafDepth].
func Backfill(d Dataset, leaves map[string]bool, store blobstore.BlobStore, diag io.Writer) (map[int][]string, error) {
	names := make([]string, 0, len(leaves))
	for name := range leaves {
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, &geo.ErrInvalidArgument{Reason: "no leaf trixels to backfill"}
	}

	leafDepth := strings.Count(names[0], "-") + 1
	for _, name := range names {
		if strings.Count(name, "-")+1 != leafDepth {
			return nil, &ErrIntegrityError{Reason: fmt.Sprintf("saved trixels do not share a common depth: %q is not depth %d", name, leafDepth)}
		}
	}

	byDepth := map[int][]string{leafDepth: names}

	current := names
	for depth := leafDepth - 1; depth >= IngestMinDepth; depth-- {
		next := make(map[string]bool)

		for _, name := range current {
			childPath := filepath.Join(d.ProcessedPath, trixelPath(name), "data.npy")
			childRows, err := store.Load(childPath)
			if err != nil {
				return nil, &ErrIOError{Op: "load child blob", Path: childPath, Err: err}
			}

			parent := parentName(name)
			parentPath := filepath.Join(d.ProcessedPath, trixelPath(parent), "data.npy")

			if err := appendRows(store, parentPath, childRows); err != nil {
				return nil, &ErrIOError{Op: "write parent blob", Path: parentPath, Err: err}
			}
			next[parent] = true
		}

		parents := make([]string, 0, len(next))
		for name := range next {
			parents = append(parents, name)
		}
		byDepth[depth] = parents
		if diag != nil {
			fmt.Fprintf(diag, "backfilled %d trixels at depth %d\n", len(parents), depth)
		}
		current = parents
	}

	return byDepth, nil
}
