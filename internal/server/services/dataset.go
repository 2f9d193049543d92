package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Dataset holds curated answers keyed by subject and then by the exact
// question text.
type Dataset map[string]map[string]string

// LoadDataset reads a dataset file. A missing file gives an empty dataset.
func LoadDataset(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Dataset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	if ds == nil {
		ds = Dataset{}
	}
	return ds, nil
}

// Lookup returns the curated answer for question under subject.
func (d Dataset) Lookup(subject, question string) (string, bool) {
	a, ok := d[subject][question]
	return a, ok && a != ""
}
