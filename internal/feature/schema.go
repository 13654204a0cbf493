package feature

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// schemaFile is the on-disk shape of a feature schema.
type schemaFile struct {
	PassthroughLayers []string `yaml:"passthrough_layers"`
}

// DefaultSchema appends only elevation to the derived climate features.
func DefaultSchema() Schema {
	return Schema{Passthrough: []string{"elev"}}
}

// LoadSchema reads a feature schema from a YAML file:
//
//	passthrough_layers:
//	  - elev
//	  - bio_04
func LoadSchema(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, eris.Wrapf(err, "feature: read schema %s", path)
	}

	var f schemaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Schema{}, eris.Wrap(err, "feature: parse schema")
	}

	seen := make(map[string]bool, len(f.PassthroughLayers))
	for _, name := range f.PassthroughLayers {
		if name == "" {
			return Schema{}, eris.New("feature: empty passthrough layer name")
		}
		if seen[name] {
			return Schema{}, eris.Errorf("feature: duplicate passthrough layer %q", name)
		}
		seen[name] = true
	}

	return Schema{Passthrough: f.PassthroughLayers}, nil
}
