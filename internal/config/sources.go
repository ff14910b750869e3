package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/estore-app/sheetfeed/internal/source"
)

// sourcesFile is the on-disk shape of the catalog sources file.
//
// Example (YAML):
//
//	sources:
//	  - kind: spreadsheet
//	    spreadsheetId: 1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms
//	    gid: "0"
//	  - kind: csv_url
//	    url: https://example.com/catalog.csv
type sourcesFile struct {
	Sources []source.Descriptor `yaml:"sources"`
}

// LoadSources reads the catalog sources file and validates every
// descriptor in it.
func LoadSources(path string) ([]source.Descriptor, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sources file path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var raw sourcesFile
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse sources file YAML: %w", err)
	}
	if len(raw.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s lists no sources", path)
	}

	for i, d := range raw.Sources {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("sources file %s entry %d: %w", path, i, err)
		}
	}
	return raw.Sources, nil
}
