package htm

import (
	"fmt"

	"github.com/windmesh/htm/internal/geo"
	"github.com/windmesh/htm/internal/ingest"
)

// ErrInvalidArgument is returned for out-of-range lat/lon/radius, a
// malformed trixel name, or any other caller-supplied argument the facade
// rejects before touching disk. Gateways should map it to a 4xx response.
type ErrInvalidArgument = geo.ErrInvalidArgument

// ErrIOError wraps an underlying blob or manifest read/write failure.
// Gateways should map it to a 5xx response.
type ErrIOError = ingest.ErrIOError

// ErrNotFound is returned for an unknown dataset or simplified layer name.
// Gateways should map it to a 4xx response.
type ErrNotFound struct {
	Kind string // "dataset" or "layer"
	Name string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("htm: %s %q not found", e.Kind, e.Name)
}
