package evaluation

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// CurvePoint is one learning-curve measurement at a given training size.
type CurvePoint struct {
	Size     int
	TrainAcc float64
	TestAcc  float64
	TrainF1  float64
	TestF1   float64
	TrainROC float64
	TestROC  float64
}

// CurveSizes returns up to points strictly increasing training sizes between
// min and total, spaced geometrically when useLog is set. The last size is
// always total.
func CurveSizes(total, points, min int, useLog bool) []int {
	if total <= 0 {
		return nil
	}
	if points <= 1 {
		points = 2
	}
	if min < 10 {
		min = 10
	}
	if min > total {
		min = int(math.Max(1, float64(total)/2))
	}
	sizes := make([]int, 0, points)
	if useLog {
		ratio := math.Pow(float64(total)/float64(min), 1.0/float64(points-1))
		for i := 0; i < points; i++ {
			sizes = append(sizes, int(math.Round(float64(min)*math.Pow(ratio, float64(i)))))
		}
	} else {
		step := float64(total-min) / float64(points-1)
		for i := 0; i < points; i++ {
			sizes = append(sizes, int(math.Round(float64(min)+float64(i)*step)))
		}
	}

	cleaned := make([]int, 0, len(sizes))
	last := 0
	for _, s := range sizes {
		if s <= last {
			s = last + 1
		}
		if s > total {
			s = total
		}
		if s != last {
			cleaned = append(cleaned, s)
			last = s
		}
	}
	cleaned[len(cleaned)-1] = total
	return cleaned
}

// WriteCurveCSV writes one row per point, creating the parent directory.
func WriteCurveCSV(path string, pts []CurvePoint) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"size", "train_acc", "test_acc", "train_f1", "test_f1", "train_roc_auc", "test_roc_auc"}); err != nil {
		return err
	}
	for _, p := range pts {
		rec := []string{strconv.Itoa(p.Size),
			fmt.Sprintf("%.6f", p.TrainAcc), fmt.Sprintf("%.6f", p.TestAcc),
			fmt.Sprintf("%.6f", p.TrainF1), fmt.Sprintf("%.6f", p.TestF1),
			fmt.Sprintf("%.6f", p.TrainROC), fmt.Sprintf("%.6f", p.TestROC),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// PlotCurvePNG renders accuracy and F1 against training size.
func PlotCurvePNG(path, title string, pts []CurvePoint) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Training samples"
	p.Y.Label.Text = "Metric"
	p.Y.Min = 0
	p.Y.Max = 1

	series := func(get func(CurvePoint) float64) plotter.XYs {
		xys := make(plotter.XYs, len(pts))
		for i, pt := range pts {
			xys[i].X = float64(pt.Size)
			xys[i].Y = get(pt)
		}
		return xys
	}
	if err := plotutil.AddLinePoints(p,
		"Train (Acc)", series(func(c CurvePoint) float64 { return c.TrainAcc }),
		"Test (Acc)", series(func(c CurvePoint) float64 { return c.TestAcc }),
		"Train (F1)", series(func(c CurvePoint) float64 { return c.TrainF1 }),
		"Test (F1)", series(func(c CurvePoint) float64 { return c.TestF1 }),
	); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
