// Command sweepreport renders a swept config.FinderConfig variant's
// score curve from a sweep.Store SQLite database, completing the
// sweep/tune/visualize loop the teacher drives for its own tracker
// via cmd/sweep and internal/lidar/monitor/gridplotter.go.
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"

	"github.com/banshee-data/trackfind/internal/sweep"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func main() {
	dbPath := flag.String("db", "", "sweep.Store SQLite database")
	runID := flag.String("run", "", "run id to render")
	outPath := flag.String("out", "sweep_score.png", "output PNG path")
	flag.Parse()

	if *dbPath == "" || *runID == "" {
		log.Fatalf("sweepreport: -db and -run are required")
	}

	store, err := sweep.OpenStore(*dbPath)
	if err != nil {
		log.Fatalf("sweepreport: open store: %v", err)
	}
	defer store.Close()

	rows, err := store.ListByRun(*runID)
	if err != nil {
		log.Fatalf("sweepreport: list run %q: %v", *runID, err)
	}
	if len(rows) == 0 {
		log.Fatalf("sweepreport: run %q has no persisted rows", *runID)
	}

	if err := renderScoreCurve(rows, *runID, *outPath); err != nil {
		log.Fatalf("sweepreport: render: %v", err)
	}
	log.Printf("sweepreport: wrote %s (%d variants)", *outPath, len(rows))
}

// renderScoreCurve plots score against each row's insertion order
// (the swept variant index), sorted by id so the x-axis tracks the
// order variants were evaluated in.
func renderScoreCurve(rows []sweep.StoredResult, runID, outPath string) error {
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	p := plot.New()
	p.Title.Text = fmt.Sprintf("sweep %s — score by variant", runID)
	p.X.Label.Text = "variant index"
	p.Y.Label.Text = "score"

	pts := make(plotter.XYs, len(rows))
	for i, r := range rows {
		pts[i] = plotter.XY{X: float64(i), Y: r.Result.Metrics.Score}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("build score line: %w", err)
	}
	line.Width = vg.Points(1.5)
	p.Add(line)

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("build score scatter: %w", err)
	}
	p.Add(scatter)

	if err := p.Save(10*vg.Inch, 5*vg.Inch, outPath); err != nil {
		return fmt.Errorf("save %q: %w", outPath, err)
	}
	return nil
}
