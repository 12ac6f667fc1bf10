// Package storage persists simulation runs: one directory per run with
// a metadata.json describing the setup and a record.csv holding the
// sampled trajectory.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spinsim/msd/internal/msd"
	"github.com/spinsim/msd/internal/vec"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Model       string             `json:"model"`
	Seed        int64              `json:"seed"`
	Sweeps      uint64             `json:"sweeps"`
	RecordEvery uint64             `json:"record_every"`
	Geometry    msd.Geometry       `json:"geometry"`
	Params      msd.Parameters     `json:"parameters"`
	Summary     map[string]float64 `json:"summary,omitempty"`
}

// vecCols are the per-snapshot magnetization columns, each expanded to
// x, y, z components in the csv.
var vecCols = []string{
	"M", "ML", "MR", "Mm",
	"MS", "MSL", "MSR", "MSm",
	"MF", "MFL", "MFR", "MFm",
}

var energyCols = []string{"U", "UL", "UR", "Um", "UmL", "UmR", "ULR"}

func recordHeader() []string {
	header := []string{"t"}
	for _, name := range vecCols {
		header = append(header, name+"_x", name+"_y", name+"_z")
	}
	return append(header, energyCols...)
}

func snapshotVecs(r *msd.Results) []*vec.Vec3 {
	return []*vec.Vec3{
		&r.M, &r.ML, &r.MR, &r.Mm,
		&r.MS, &r.MSL, &r.MSR, &r.MSm,
		&r.MF, &r.MFL, &r.MFR, &r.MFm,
	}
}

func snapshotEnergies(r *msd.Results) []*float64 {
	return []*float64{&r.U, &r.UL, &r.UR, &r.Um, &r.UmL, &r.UmR, &r.ULR}
}

// Save writes one run directory and returns its ID. Any ID already in
// meta is replaced.
func (s *Store) Save(meta RunMetadata, record []msd.Results) (string, error) {
	runID := fmt.Sprintf("%s_%d_%d", meta.Model, time.Now().Unix(), meta.Seed)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "record.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(recordHeader()); err != nil {
		return "", err
	}
	for i := range record {
		snap := &record[i]
		row := []string{strconv.FormatUint(snap.T, 10)}
		for _, v := range snapshotVecs(snap) {
			row = append(row, formatF(v.X), formatF(v.Y), formatF(v.Z))
		}
		for _, u := range snapshotEnergies(snap) {
			row = append(row, formatF(*u))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return runID, w.Error()
}

func formatF(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadRecord reads a run's trajectory back into snapshots.
func (s *Store) LoadRecord(runID string) ([]msd.Results, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "record.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty record", runID)
	}

	wantCols := len(recordHeader())
	record := make([]msd.Results, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != wantCols {
			return nil, fmt.Errorf("%s: want %d columns, got %d", runID, wantCols, len(row))
		}

		var snap msd.Results
		snap.T, err = strconv.ParseUint(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad time %q: %w", runID, row[0], err)
		}

		col := 1
		next := func() (float64, error) {
			v, err := strconv.ParseFloat(row[col], 64)
			col++
			return v, err
		}
		for _, v := range snapshotVecs(&snap) {
			for _, dst := range []*float64{&v.X, &v.Y, &v.Z} {
				if *dst, err = next(); err != nil {
					return nil, fmt.Errorf("%s: bad value %q: %w", runID, row[col-1], err)
				}
			}
		}
		for _, u := range snapshotEnergies(&snap) {
			if *u, err = next(); err != nil {
				return nil, fmt.Errorf("%s: bad value %q: %w", runID, row[col-1], err)
			}
		}

		record = append(record, snap)
	}

	return record, nil
}
