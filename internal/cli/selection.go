package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/tabview/internal/core"
)

// loadSelection returns the selection for ds. With no file the defaults
// apply. A file overrides the defaults field by field; a categorical filter
// without values keeps every value of its column.
func loadSelection(path string, ds *core.Dataset) (core.Selection, error) {
	sel := core.DefaultSelection(ds)
	if path == "" {
		return sel, nil
	}

	data, err := readSelectionFile(path)
	if err != nil {
		return core.Selection{}, err
	}
	if err := yaml.Unmarshal(data, &sel); err != nil {
		return core.Selection{}, fmt.Errorf("failed to parse selection file %s: %w", path, err)
	}

	kind, err := core.ParseChartKind(string(sel.Chart))
	if err != nil {
		return core.Selection{}, err
	}
	sel.Chart = kind

	if f := sel.Categorical; f != nil && f.Values == nil {
		defaults, err := core.CategoricalDefaults(ds, f.Column)
		if err != nil {
			return core.Selection{}, err
		}
		f.Values = defaults.Values
		f.IncludeMissing = f.IncludeMissing || defaults.IncludeMissing
	}

	if err := sel.Validate(ds); err != nil {
		return core.Selection{}, err
	}
	return sel, nil
}

func readSelectionFile(path string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("selection file must have .yaml or .yml extension")
	}
	// #nosec G304 - path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read selection file: %w", err)
	}
	return data, nil
}
