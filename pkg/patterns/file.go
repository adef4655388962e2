package patterns

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// taxonomyFile is the on-disk shape of a taxonomy override:
//
//	categories:
//	  - name: crypto_scam
//	    patterns:
//	      - 'wallet.*verify'
type taxonomyFile struct {
	Categories []CategoryDef `yaml:"categories"`
}

// LoadTaxonomyFile reads a YAML taxonomy override. The returned definitions
// replace the default taxonomy wholesale; validation happens in NewRegistry.
func LoadTaxonomyFile(path string) ([]CategoryDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}

	var f taxonomyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse taxonomy %s: %w", path, err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("taxonomy %s: no categories defined", path)
	}

	return f.Categories, nil
}
