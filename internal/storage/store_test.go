package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spinsim/msd/internal/msd"
	"github.com/spinsim/msd/internal/vec"
)

func sampleRecord() []msd.Results {
	return []msd.Results{
		{
			T:  0,
			M:  vec.Vec3{X: 1, Y: 2, Z: 3},
			MS: vec.Vec3{Z: 100},
			U:  -12.5,
			UL: -10, UmL: -2.5,
		},
		{
			T:   1000,
			M:   vec.Vec3{X: 0.125, Y: -0.25},
			MFm: vec.Vec3{Y: 1e-9},
			U:   -42,
		},
	}
}

func sampleMeta() RunMetadata {
	return RunMetadata{
		Model:       "continuous",
		Seed:        42,
		Sweeps:      1000,
		RecordEvery: 1000,
		Geometry:    msd.FullGeometry(5, 4, 4),
		Params:      msd.DefaultParameters(),
		Summary:     map[string]float64{"mean_energy": -27.25},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(sampleMeta(), sampleRecord())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID {
		t.Errorf("expected id %q, got %q", runID, meta.ID)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Params.KT != 0.25 {
		t.Errorf("expected kT 0.25, got %g", meta.Params.KT)
	}
	if meta.Summary["mean_energy"] != -27.25 {
		t.Errorf("expected mean_energy -27.25, got %g", meta.Summary["mean_energy"])
	}
}

func TestRecordRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	want := sampleRecord()
	runID, err := st.Save(sampleMeta(), want)
	if err != nil {
		t.Fatal(err)
	}

	got, err := st.LoadRecord(runID)
	if err != nil {
		t.Fatalf("load record failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d snapshots, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("snapshot %d mismatch:\n got %+v\nwant %+v", i, got[i], want[i])
		}
	}
}

func TestList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected empty store, got %d runs", len(runs))
	}

	meta := sampleMeta()
	if _, err := st.Save(meta, nil); err != nil {
		t.Fatal(err)
	}
	meta.Seed = 43
	if _, err := st.Save(meta, nil); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "never-created"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on missing dir should not fail: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestLoadRecordRejectsShortRows(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	runDir := filepath.Join(dir, "bad_0_0")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "record.csv"), []byte("t,M_x\n1,2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadRecord("bad_0_0"); err == nil {
		t.Error("expected error for truncated record")
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, sampleMeta(), sampleRecord()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got ExportData
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("export is not valid json: %v", err)
	}
	if got.Snapshots != 2 || len(got.Record) != 2 {
		t.Errorf("expected 2 snapshots, got %d (%d rows)", got.Snapshots, len(got.Record))
	}
	if got.Meta.Model != "continuous" {
		t.Errorf("expected model continuous, got %q", got.Meta.Model)
	}
	if got.Record[1].U != -42 {
		t.Errorf("expected U -42, got %g", got.Record[1].U)
	}
}
