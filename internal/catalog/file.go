package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileItem struct {
	ID          string `yaml:"id"`
	Kind        string `yaml:"kind"`
	AssetA      string `yaml:"asset_a"`
	AssetB      string `yaml:"asset_b"`
	Correct     string `yaml:"correct"`
	Explanation string `yaml:"explanation"`
}

type fileCatalog struct {
	Items []fileItem `yaml:"items"`
}

// LoadFile reads a catalog from a YAML document of the form
//
//	items:
//	  - id: coca_cola_logo
//	    kind: paired
//	    asset_a: coca_cola_with_dash.jpg
//	    asset_b: coca_cola_no_dash.jpg
//	    correct: A
//	    explanation: ...
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc fileCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	items := make([]Item, 0, len(doc.Items))
	for i, fi := range doc.Items {
		kind, err := ParseKind(fi.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrInvalidCatalog, i+1, err)
		}
		correct, err := ParseChoice(fi.Correct)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrInvalidCatalog, i+1, err)
		}
		items = append(items, Item{
			ID:          fi.ID,
			Kind:        kind,
			AssetA:      fi.AssetA,
			AssetB:      fi.AssetB,
			Correct:     correct,
			Explanation: fi.Explanation,
		})
	}
	return New(items...)
}
