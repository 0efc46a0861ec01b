package predict

import (
	"errors"
	"fmt"

	"github.com/spf13/cast"

	"airbnb-pricer/bundle"
)

// ErrNoModelLoaded is returned when a Predictor is constructed without a
// usable artifact.
var ErrNoModelLoaded = errors.New("predict: no model loaded")

// Predictor serves price predictions from a trained bundle. Incoming
// observations are reconciled against the training-time schema before they
// ever reach the model: missing features are zero-filled, unknown features
// are dropped, and ordering always follows the stored schema.
type Predictor struct {
	b      *bundle.Bundle
	schema map[string]int
}

// New wraps an already-loaded bundle.
func New(b *bundle.Bundle) (*Predictor, error) {
	if b == nil || b.Model == nil {
		return nil, ErrNoModelLoaded
	}
	if len(b.FeatureNames) == 0 {
		return nil, bundle.ErrEmptySchema
	}

	schema := make(map[string]int, len(b.FeatureNames))
	for i, name := range b.FeatureNames {
		schema[name] = i
	}
	return &Predictor{b: b, schema: schema}, nil
}

// Load reads the artifact at path and wraps it in a Predictor.
func Load(path string) (*Predictor, error) {
	b, err := bundle.Load(path)
	if err != nil {
		return nil, err
	}
	return New(b)
}

// Reconcile maps a raw observation onto the training schema. Every schema
// feature starts at zero; supplied values overwrite their slot and anything
// outside the schema is ignored. A fresh slice is returned on every call so
// concurrent callers never share state.
func (p *Predictor) Reconcile(input map[string]any) ([]float64, error) {
	row := make([]float64, len(p.b.FeatureNames))
	for name, raw := range input {
		idx, ok := p.schema[name]
		if !ok {
			continue
		}
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, fmt.Errorf("predict: feature %q: %w", name, err)
		}
		row[idx] = v
	}
	return row, nil
}

// Predict reconciles the observation and returns the model's price estimate.
func (p *Predictor) Predict(input map[string]any) (float64, error) {
	row, err := p.Reconcile(input)
	if err != nil {
		return 0, err
	}
	return p.PredictRow(row)
}

// PredictRow scores an already-reconciled feature vector. The vector length
// must match the schema.
func (p *Predictor) PredictRow(row []float64) (float64, error) {
	if len(row) != len(p.b.FeatureNames) {
		return 0, fmt.Errorf("predict: expected %d features, got %d", len(p.b.FeatureNames), len(row))
	}

	X := [][]float64{row}
	if p.b.Scaler != nil && p.b.Scaler.Fitted {
		X = p.b.Scaler.Transform(X)
	}
	return p.b.Model.Predict(X)[0], nil
}

// ModelName reports which candidate won the training run.
func (p *Predictor) ModelName() string { return p.b.ModelName }

// Schema returns a copy of the ordered feature schema.
func (p *Predictor) Schema() []string {
	out := make([]string, len(p.b.FeatureNames))
	copy(out, p.b.FeatureNames)
	return out
}
