package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spinsim/msd/internal/msd"
)

type ExportData struct {
	Meta      RunMetadata   `json:"meta"`
	Snapshots int           `json:"snapshots"`
	Record    []msd.Results `json:"record"`
}

// ExportJSON writes a whole run as one JSON document, for plotting
// tools that prefer it over the run directory layout.
func ExportJSON(path string, meta RunMetadata, record []msd.Results) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeJSON(file, meta, record)
}

func ExportJSONStdout(meta RunMetadata, record []msd.Results) error {
	return writeJSON(os.Stdout, meta, record)
}

func writeJSON(w io.Writer, meta RunMetadata, record []msd.Results) error {
	data := ExportData{
		Meta:      meta,
		Snapshots: len(record),
		Record:    record,
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
