package model

import (
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kartoza/heart-risk/internal/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = features.Vector{63, 1, 0, 145, 233, 1, 1, 150, 0, 2.3, 2}

func zeroLogistic() Artifact {
	return Artifact{
		Kind:     KindLogistic,
		Logistic: &LogisticParams{Coefficients: make([]float64, features.NumFeatures)},
	}
}

func TestLoadLogisticJSON(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "logistic.json"))
	require.NoError(t, err)
	assert.Equal(t, KindLogistic, m.Kind())
	assert.Equal(t, features.Columns[:], m.Features())

	// age 63 sits on the decision boundary
	p, err := m.PredictProba(sample)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-9)

	older := sample
	older[0] = 80
	p, err = m.PredictProba(older)
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-1.7)), p, 1e-9)

	class, err := m.Predict(older)
	require.NoError(t, err)
	assert.Equal(t, 1, class)
}

func TestLoadForestYAML(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "forest.yaml"))
	require.NoError(t, err)
	assert.Equal(t, KindForest, m.Kind())

	p, err := m.PredictProba(sample)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, p, 1e-9)

	class, err := m.Predict(sample)
	require.NoError(t, err)
	assert.Equal(t, 1, class)

	low := sample
	low[1] = 0 // female
	low[9] = 0 // no ST depression
	p, err = m.PredictProba(low)
	require.NoError(t, err)
	assert.InDelta(t, 0.15, p, 1e-9)

	class, err = m.Predict(low)
	require.NoError(t, err)
	assert.Equal(t, 0, class)
}

func TestPredictTieIsNegative(t *testing.T) {
	m, err := New(zeroLogistic())
	require.NoError(t, err)

	p, err := m.PredictProba(sample)
	require.NoError(t, err)
	assert.Equal(t, 0.5, p)

	class, err := m.Predict(sample)
	require.NoError(t, err)
	assert.Equal(t, 0, class)
}

func TestSigmoidExtremes(t *testing.T) {
	assert.Equal(t, 0.5, sigmoid(0))
	assert.InDelta(t, 1, sigmoid(800), 1e-12)
	assert.InDelta(t, 0, sigmoid(-800), 1e-12)
	assert.False(t, math.IsNaN(sigmoid(-800)))
}

func TestNewRejectsInvalidArtifacts(t *testing.T) {
	badColumns := zeroLogistic()
	badColumns.Features = []string{"Sex", "Age", "ChestPainType", "RestingBP", "Cholesterol",
		"FastingBS", "RestingECG", "MaxHR", "ExerciseAngina", "Oldpeak", "ST_Slope"}

	shortColumns := zeroLogistic()
	shortColumns.Features = []string{"Age"}

	tests := []struct {
		name     string
		artifact Artifact
	}{
		{"unknown kind", Artifact{Kind: "svm"}},
		{"logistic without params", Artifact{Kind: KindLogistic}},
		{"forest without params", Artifact{Kind: KindForest}},
		{"short coefficients", Artifact{Kind: KindLogistic, Logistic: &LogisticParams{Coefficients: []float64{1, 2}}}},
		{"nan intercept", Artifact{Kind: KindLogistic, Logistic: &LogisticParams{
			Coefficients: make([]float64, features.NumFeatures), Intercept: math.NaN()}}},
		{"empty forest", Artifact{Kind: KindForest, Forest: &ForestParams{}}},
		{"empty tree", Artifact{Kind: KindForest, Forest: &ForestParams{Trees: []Tree{{}}}}},
		{"feature out of range", Artifact{Kind: KindForest, Forest: &ForestParams{Trees: []Tree{{Nodes: []Node{
			{Feature: 11, Left: 1, Right: 2}, {Leaf: true}, {Leaf: true}}}}}}},
		{"child cycle", Artifact{Kind: KindForest, Forest: &ForestParams{Trees: []Tree{{Nodes: []Node{
			{Feature: 0, Left: 0, Right: 1}, {Leaf: true}}}}}}},
		{"child out of range", Artifact{Kind: KindForest, Forest: &ForestParams{Trees: []Tree{{Nodes: []Node{
			{Feature: 0, Left: 1, Right: 5}, {Leaf: true}}}}}}},
		{"leaf above one", Artifact{Kind: KindForest, Forest: &ForestParams{Trees: []Tree{{Nodes: []Node{
			{Leaf: true, Value: 1.5}}}}}}},
		{"reordered columns", badColumns},
		{"short columns", shortColumns},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.artifact)
			assert.Error(t, err)
			assert.Nil(t, m)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "model.pkl"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, err = Parse([]byte("{not json"), FormatJSON)
	assert.Error(t, err)

	_, err = Parse([]byte("kind: logistic"), "toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSaveLoad(t *testing.T) {
	src, err := Load(filepath.Join("testdata", "forest.yaml"))
	require.NoError(t, err)

	a := Artifact{
		Kind:   KindForest,
		Forest: src.scorer.(*ForestParams),
	}

	for _, name := range []string{"model.json", "model.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(path, a))

			loaded, err := Load(path)
			require.NoError(t, err)

			want, _ := src.PredictProba(sample)
			got, err := loaded.PredictProba(sample)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"model.json", FormatJSON, false},
		{"MODEL.JSON", FormatJSON, false},
		{"model.yaml", FormatYAML, false},
		{"dir/model.yml", FormatYAML, false},
		{"heart_disease_model.pkl", "", true},
		{"model", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFor(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConcurrentPredict(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "forest.yaml"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := m.PredictProba(sample)
			assert.NoError(t, err)
			assert.InDelta(t, 0.75, p, 1e-9)
		}()
	}
	wg.Wait()
}
