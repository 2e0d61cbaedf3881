package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTrajectoryToSVG(t *testing.T) {
	points := []Point{{0, 0}, {1, 1}, {2, 0}}
	svg := TrajectoryToSVG(points, 400, 300, "#00ff00")

	if !strings.HasPrefix(svg, `<?xml`) {
		t.Error("missing xml header")
	}
	if !strings.Contains(svg, `stroke="#00ff00"`) {
		t.Error("stroke color not applied")
	}
	if !strings.Contains(svg, "<path") {
		t.Error("missing path element")
	}
}

func TestTrajectoryToSVGTooFewPoints(t *testing.T) {
	if svg := TrajectoryToSVG([]Point{{0, 0}}, 400, 300, "red"); svg != "" {
		t.Error("expected empty svg for a single point")
	}
}

func TestPhasePoints(t *testing.T) {
	states := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	points := PhasePoints(states, 0, 1)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[1] != (Point{3, 4}) {
		t.Errorf("point = %+v, want {3 4}", points[1])
	}
}

func TestTimeSeriesPoints(t *testing.T) {
	times := []float64{0, 0.5, 1}
	states := [][]float64{{1, 9}, {2, 9}, {3, 9}}
	points := TimeSeriesPoints(times, states, 0)
	if len(points) != 3 || points[2] != (Point{1, 3}) {
		t.Errorf("points = %+v", points)
	}
}

func TestWriteSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.svg")
	if err := WriteSVG(path, []Point{{0, 0}, {1, 1}}, 100, 100, "white"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "</svg>") {
		t.Error("file is not a complete svg document")
	}
}
