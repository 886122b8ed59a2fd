package models

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// SheetNames returns the dataset's sheet names in sorted order.
func (d Dataset) SheetNames() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadDataset reads a dataset previously written by WriteDataset.
func LoadDataset(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var dataset Dataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	for name, sheet := range dataset {
		if sheet == nil {
			return nil, fmt.Errorf("dataset %s: sheet %q is null", path, name)
		}
	}
	return dataset, nil
}

// WriteDataset writes the dataset as indented JSON. A path of "-" writes to w.
func WriteDataset(dataset Dataset, path string, w io.Writer) error {
	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	return nil
}
