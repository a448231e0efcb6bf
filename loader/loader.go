// Package loader reads authored event data into raw event records.
// Two frontends produce identical records: a JSON event file (the
// interchange format) and a Lua authoring DSL. Validation and indexing
// belong to the catalog; the loader only parses.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hyluen/fateloom/types"
)

// Load reads event records from path. A .json file is decoded directly, a
// .lua file runs through the DSL frontend, and a directory loads every
// .json and .lua file it contains in name order.
func Load(path string) ([]types.Event, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading event data %s: %w", path, err)
	}
	if info.IsDir() {
		return loadDir(path)
	}
	return loadFile(path)
}

func loadFile(path string) ([]types.Event, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(path)
	case ".lua":
		return LoadLua(path)
	default:
		return nil, fmt.Errorf("unsupported event data format %q", filepath.Ext(path))
	}
}

func loadDir(dir string) ([]types.Event, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading event directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".lua":
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no event data files found in %s", dir)
	}
	sort.Strings(names)

	var all []types.Event
	for _, name := range names {
		events, err := loadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
	}
	return all, nil
}

// LoadJSON decodes an ordered JSON array of event records. Unrecognized
// effect and condition keys are preserved, not rejected.
func LoadJSON(path string) ([]types.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var events []types.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return events, nil
}
