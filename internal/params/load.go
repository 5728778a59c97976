package params

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load returns the defaults overlaid with any values present in the YAML
// file at path. An empty path returns the defaults unchanged.
func Load(path string) (*Params, error) {
	p := Defaults()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read parameter file: %w", err)
	}
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("parse parameter file %s: %w", path, err)
	}
	return p, nil
}
