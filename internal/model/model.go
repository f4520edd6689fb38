package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kartoza/heart-risk/internal/features"
	"gopkg.in/yaml.v3"
)

// Supported model kinds
const (
	KindLogistic = "logistic"
	KindForest   = "forest"
)

// Artifact formats, selected by file extension
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnsupportedFormat is returned for artifact files with an unknown extension
var ErrUnsupportedFormat = errors.New("unsupported artifact format")

// Classifier is a pre-trained binary classifier. Implementations must be
// safe for concurrent use.
type Classifier interface {
	// PredictProba returns the probability of the positive class
	PredictProba(x features.Vector) (float64, error)
	// Predict returns the predicted class, 0 or 1
	Predict(x features.Vector) (int, error)
}

// Artifact is the on-disk description of a trained model
type Artifact struct {
	Kind     string          `json:"kind" yaml:"kind"`
	Features []string        `json:"features,omitempty" yaml:"features,omitempty"`
	Logistic *LogisticParams `json:"logistic,omitempty" yaml:"logistic,omitempty"`
	Forest   *ForestParams   `json:"forest,omitempty" yaml:"forest,omitempty"`
}

// scorer computes the positive-class probability of a feature vector
type scorer interface {
	score(x features.Vector) float64
	validate() error
}

// Model is a loaded, validated artifact. It is never mutated after
// construction.
type Model struct {
	kind     string
	features []string
	scorer   scorer
}

// New validates an artifact and builds a Model from it
func New(a Artifact) (*Model, error) {
	if len(a.Features) > 0 {
		if err := checkColumns(a.Features); err != nil {
			return nil, err
		}
	}

	var s scorer
	switch a.Kind {
	case KindLogistic:
		if a.Logistic == nil {
			return nil, fmt.Errorf("logistic artifact has no parameters")
		}
		s = a.Logistic
	case KindForest:
		if a.Forest == nil {
			return nil, fmt.Errorf("forest artifact has no parameters")
		}
		s = a.Forest
	default:
		return nil, fmt.Errorf("unknown model kind %q", a.Kind)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s model: %w", a.Kind, err)
	}

	return &Model{
		kind:     a.Kind,
		features: features.Columns[:],
		scorer:   s,
	}, nil
}

// checkColumns requires the artifact's training columns to match the
// encoder's column order exactly
func checkColumns(cols []string) error {
	if len(cols) != features.NumFeatures {
		return fmt.Errorf("model expects %d features, encoder produces %d", len(cols), features.NumFeatures)
	}
	for i, c := range cols {
		if c != features.Columns[i] {
			return fmt.Errorf("feature %d is %q, encoder produces %q", i, c, features.Columns[i])
		}
	}
	return nil
}

// PredictProba returns the positive-class probability
func (m *Model) PredictProba(x features.Vector) (float64, error) {
	return m.scorer.score(x), nil
}

// Predict returns 1 when the positive class is strictly more likely
func (m *Model) Predict(x features.Vector) (int, error) {
	p, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return classOf(p), nil
}

func classOf(p float64) int {
	if p > 0.5 {
		return 1
	}
	return 0
}

// Kind returns the model kind
func (m *Model) Kind() string {
	return m.kind
}

// Features returns the column names the model is fed, in order
func (m *Model) Features() []string {
	out := make([]string, len(m.features))
	copy(out, m.features)
	return out
}

// FormatFor returns the artifact format implied by a file name
func FormatFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// Parse decodes an artifact in the given format and builds a Model
func Parse(data []byte, format string) (*Model, error) {
	var a Artifact
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("failed to parse artifact: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("failed to parse artifact: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return New(a)
}

// Load reads a model artifact from disk
func Load(path string) (*Model, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	return Parse(data, format)
}

// Save writes an artifact to disk in the format implied by path
func Save(path string, a Artifact) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(a, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(a)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}
