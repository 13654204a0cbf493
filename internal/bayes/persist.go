package bayes

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
)

// modelFileVersion guards the on-disk layout. Bump on incompatible changes.
const modelFileVersion = 1

// ErrSchemaMismatch is returned when a persisted model's feature list does
// not match the caller's expected schema.
var ErrSchemaMismatch = eris.New("bayes: model feature schema mismatch")

// modelFile is the self-describing JSON layout of a persisted model.
type modelFile struct {
	Version   int                    `json:"version"`
	CreatedAt time.Time              `json:"created_at"`
	Features  []string               `json:"features"`
	Classes   map[koppen.Label]Class `json:"classes"`
}

// Save writes the model to path as JSON, creating or truncating the file.
func (m *Model) Save(path string) error {
	f := modelFile{
		Version:   modelFileVersion,
		CreatedAt: time.Now().UTC(),
		Features:  m.features,
		Classes:   m.classes,
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return eris.Wrap(err, "bayes: encode model")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "bayes: write model %s", path)
	}
	return nil
}

// Load reads a persisted model from path.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "bayes: read model %s", path)
	}

	var f modelFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "bayes: parse model %s", path)
	}
	if f.Version != modelFileVersion {
		return nil, eris.Errorf("bayes: unsupported model version %d (want %d)", f.Version, modelFileVersion)
	}
	if len(f.Features) == 0 || len(f.Classes) == 0 {
		return nil, eris.Errorf("bayes: model %s has no features or classes", path)
	}

	m := &Model{
		features: f.Features,
		classes:  make(map[koppen.Label]Class, len(f.Classes)),
	}
	for label, c := range f.Classes {
		if !label.Valid() {
			return nil, eris.Errorf("bayes: model %s holds unknown label %q", path, label)
		}
		if len(c.Mean) != len(f.Features) || len(c.Variance) != len(f.Features) {
			return nil, eris.Errorf("bayes: model %s class %s parameter length mismatch", path, label)
		}
		for j, v := range c.Variance {
			if v < VarianceFloor {
				c.Variance[j] = VarianceFloor
			}
		}
		m.classes[label] = c
		m.labels = append(m.labels, label)
	}
	sort.Slice(m.labels, func(i, j int) bool { return m.labels[i] < m.labels[j] })

	return m, nil
}

// CheckFeatures verifies the model was fitted on exactly the given ordered
// feature names, returning ErrSchemaMismatch otherwise.
func (m *Model) CheckFeatures(names []string) error {
	if len(names) != len(m.features) {
		return eris.Wrapf(ErrSchemaMismatch, "model has %d features, expected %d", len(m.features), len(names))
	}
	for i, name := range names {
		if m.features[i] != name {
			return eris.Wrapf(ErrSchemaMismatch, "feature %d is %q, expected %q", i, m.features[i], name)
		}
	}
	return nil
}
