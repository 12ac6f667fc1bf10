package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spinsim/msd/internal/msd"
	"github.com/spinsim/msd/internal/vec"
)

func testRecord(n int) []msd.Results {
	record := make([]msd.Results, n)
	for i := range record {
		record[i] = msd.Results{
			T: uint64(i * 100),
			U: -float64(i),
			M: vec.Vec3{Z: float64(i) / 2},
		}
	}
	return record
}

func TestChartSVGTooShort(t *testing.T) {
	if got := ChartSVG(EnergySeries(testRecord(1)), 640, 480); got != "" {
		t.Errorf("expected empty chart for single snapshot, got %d bytes", len(got))
	}
}

func TestChartSVGFlatSeries(t *testing.T) {
	flat := []Series{{Name: "U", Stroke: "#00ff00", Points: []float64{3, 3, 3}}}
	got := ChartSVG(flat, 640, 480)
	if !strings.Contains(got, "<path") {
		t.Error("flat series should still render a path")
	}
}

func TestWriteChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.svg")
	if err := WriteChart(path, testRecord(20), 640, 240); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(data)
	for _, want := range []string{"<svg", "|Mm|", "Um", "</svg>"} {
		if !strings.Contains(svg, want) {
			t.Errorf("chart missing %q", want)
		}
	}
}

func TestWriteChartTooShort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.svg")
	if err := WriteChart(path, testRecord(1), 640, 240); err == nil {
		t.Error("expected error for single-snapshot record")
	}
}
