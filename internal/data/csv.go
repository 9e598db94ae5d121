package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

const labelColumn = "target"

// WriteCSV writes samples with a header row of Columns followed by "target".
func WriteCSV(path string, samples []LabeledSample) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append(Columns[:], labelColumn)
	if err := w.Write(header); err != nil {
		return err
	}
	rec := make([]string, NumFeatures+1)
	for _, s := range samples {
		for j, v := range s.Features.Values() {
			rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		rec[NumFeatures] = strconv.Itoa(s.Label)
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV reads a dataset in the layout produced by WriteCSV. Columns are
// matched by header name so extra columns are ignored.
func ReadCSV(path string) ([]LabeledSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return []LabeledSample{}, nil
	}
	if err != nil {
		return nil, err
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[h] = i
	}
	var idx [NumFeatures + 1]int
	for j, name := range append(Columns[:], labelColumn) {
		p, ok := pos[name]
		if !ok {
			return nil, fmt.Errorf("csv %s: missing column %q", path, name)
		}
		idx[j] = p
	}

	out := []LabeledSample{}
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		var v [NumFeatures]float64
		for j := 0; j < NumFeatures; j++ {
			v[j], err = strconv.ParseFloat(row[idx[j]], 64)
			if err != nil {
				return nil, fmt.Errorf("csv %s line %d column %s: %w", path, line, Columns[j], err)
			}
		}
		label, err := strconv.Atoi(row[idx[NumFeatures]])
		if err != nil || (label != 0 && label != 1) {
			return nil, fmt.Errorf("csv %s line %d: invalid target %q", path, line, row[idx[NumFeatures]])
		}
		out = append(out, LabeledSample{Features: FromValues(v), Label: label})
	}
	return out, nil
}
