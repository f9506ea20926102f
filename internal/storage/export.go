// Package storage writes per-step diagnostics to CSV for offline analysis.
// It is an external consumer of the core's read-only surface.
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/san-kum/physim/internal/ecs"
)

// Sample is one row of diagnostics captured after a step.
type Sample struct {
	Step      int
	Time      float64
	Kinetic   float64
	Potential float64
	Positions []ecs.Vec3
}

// Recorder accumulates samples for later export.
type Recorder struct {
	samples []Sample
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Record(s Sample) { r.samples = append(r.samples, s) }

func (r *Recorder) Len() int { return len(r.samples) }

func (r *Recorder) Samples() []Sample { return r.samples }

// WriteCSV emits one row per sample: step, time, energies, then x/y/z per
// body in capture order.
func (r *Recorder) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	bodies := 0
	if len(r.samples) > 0 {
		bodies = len(r.samples[0].Positions)
	}
	header := []string{"step", "time", "kinetic", "potential", "total"}
	for i := 0; i < bodies; i++ {
		header = append(header,
			fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i), fmt.Sprintf("z%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, s := range r.samples {
		row := []string{
			strconv.Itoa(s.Step),
			formatFloat(s.Time),
			formatFloat(s.Kinetic),
			formatFloat(s.Potential),
			formatFloat(s.Kinetic + s.Potential),
		}
		for _, p := range s.Positions {
			row = append(row, formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 17, 64)
}
