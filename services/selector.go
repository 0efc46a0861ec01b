package services

import (
	"fmt"

	"airbnb-pricer/config"
	"airbnb-pricer/dataset"
	"airbnb-pricer/utils"
)

// Selector reduces an encoded frame to the model-ready matrix: numeric
// columns only, identifier columns removed, no remaining nulls.
type Selector struct {
	cfg    config.Config
	logger *utils.Logger
}

// NewSelector creates a Selector with the given config and logger.
func NewSelector(cfg config.Config, logger *utils.Logger) *Selector {
	return &Selector{cfg: cfg, logger: logger}
}

// Finalize returns the model-ready frame. Identifier columns are never
// predictive even though they are numeric, so they are dropped explicitly.
func (s *Selector) Finalize(f *dataset.Frame) (*dataset.Frame, error) {
	numeric := f.NumericNames()
	out, err := f.Select(numeric...)
	if err != nil {
		return nil, fmt.Errorf("selector: %w", err)
	}

	out = out.Drop(s.cfg.IdentifierColumns...)
	s.logger.Info("[selector] Kept %d numeric feature columns", out.Width())

	out, removed := out.DropNullRows()
	if removed > 0 {
		s.logger.Info("[selector] Removed %d rows with remaining nulls", removed)
	}
	if out.Rows() == 0 {
		return nil, fmt.Errorf("selector: null-row drop removed all rows: %w", dataset.ErrAllRowsDropped)
	}
	return out, nil
}
