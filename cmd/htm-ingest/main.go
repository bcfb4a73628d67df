// Command htm-ingest runs the ingestion pipeline over an unprocessed
// datasets directory, writing trixel chunks, backfilled ancestors,
// simplified layers, and a manifest for each into an output directory.
package main

import (
	"fmt"
	"os"

	"github.com/windmesh/htm/internal/ingest"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <input_dir> <output_dir>\n", os.Args[0])
		os.Exit(1)
	}

	inputDir := os.Args[1]
	outputDir := os.Args[2]

	if info, err := os.Stat(inputDir); err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "htm-ingest: input directory %q does not exist\n", inputDir)
		os.Exit(1)
	}

	opts := ingest.Options{Diag: os.Stderr}
	if err := ingest.Run(inputDir, outputDir, opts); err != nil {
		fmt.Fprintf(os.Stderr, "htm-ingest: %v\n", err)
		os.Exit(1)
	}
}
