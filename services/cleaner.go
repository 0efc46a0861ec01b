package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"airbnb-pricer/config"
	"airbnb-pricer/dataset"
	"airbnb-pricer/utils"
)

// Cleaner normalizes the consolidated raw frame: price coercion, high-null
// column drops, deduplication, domain bounds and boolean encoding.
type Cleaner struct {
	cfg    config.Config
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given config and logger.
func NewCleaner(cfg config.Config, logger *utils.Logger) *Cleaner {
	return &Cleaner{cfg: cfg, logger: logger}
}

// Clean runs the full cleaning sequence and returns a new frame. The order
// matters: high-null columns must go before the feature schema is fixed.
func (c *Cleaner) Clean(f *dataset.Frame) (*dataset.Frame, error) {
	out := c.DropHighNullColumns(f)
	if out.Width() == 0 {
		return nil, fmt.Errorf("cleaner: null-column drop removed every column: %w", dataset.ErrAllRowsDropped)
	}

	out, removed := out.Deduplicate()
	if removed > 0 {
		c.logger.Info("[cleaner] Removed %d duplicate rows", removed)
	}

	out, err := c.CleanPrice(out, "price")
	if err != nil {
		return nil, err
	}

	out = c.ApplyDomainBounds(out)
	if out.Rows() == 0 {
		return nil, fmt.Errorf("cleaner: domain bounds dropped all rows: %w", dataset.ErrAllRowsDropped)
	}

	out = c.EncodeBooleans(out)
	return out, nil
}

// CleanPrice strips currency symbols and separators from the named column,
// coerces it to numeric and drops rows where the result is missing or <= 0.
func (c *Cleaner) CleanPrice(f *dataset.Frame, name string) (*dataset.Frame, error) {
	col, ok := f.Column(name)
	if !ok {
		c.logger.Warn("[cleaner] Column %q not found, skipping price cleaning", name)
		return f.Copy(), nil
	}

	out := f.Copy()
	rows := f.Rows()
	nums := make([]float64, rows)

	if col.Kind == dataset.Numeric {
		copy(nums, col.Nums)
	} else {
		for i, raw := range col.Strs {
			nums[i] = parsePrice(raw)
		}
	}
	out.AddNumeric(name, nums)

	filtered := out.Filter(func(i int) bool {
		return !math.IsNaN(nums[i]) && nums[i] > 0
	})

	removed := rows - filtered.Rows()
	if removed > 0 {
		c.logger.Info("[cleaner] Removed %d rows with invalid %s", removed, name)
	}
	if filtered.Rows() == 0 {
		return nil, fmt.Errorf("cleaner: price cleaning dropped all rows: %w", dataset.ErrAllRowsDropped)
	}
	return filtered, nil
}

// parsePrice coerces a raw price cell like "$1,200.50" or "R$350" to a
// number. Only the currency prefix and thousands separators are stripped, so
// a malformed cell like "1R5" stays unparseable. Already-clean values pass
// through unchanged, so the conversion is idempotent. Unparseable values
// become NaN.
func parsePrice(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return math.NaN()
	}
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	v, err := cast.ToFloat64E(s)
	if err != nil {
		return math.NaN()
	}
	return v
}

// DropHighNullColumns removes every column whose null fraction exceeds the
// configured threshold. This is an irreversible schema-shrinking step.
func (c *Cleaner) DropHighNullColumns(f *dataset.Frame) *dataset.Frame {
	var drop []string
	for _, name := range f.Names() {
		if f.NullFraction(name) > c.cfg.NullColumnThreshold {
			drop = append(drop, name)
		}
	}
	if len(drop) > 0 {
		c.logger.Info("[cleaner] Dropping %d columns above %.0f%% nulls: %v",
			len(drop), c.cfg.NullColumnThreshold*100, drop)
	}
	return f.Drop(drop...)
}

// ApplyDomainBounds keeps rows with price inside the configured range and
// occupancy at or under the configured maximum.
func (c *Cleaner) ApplyDomainBounds(f *dataset.Frame) *dataset.Frame {
	out := f

	if price, err := out.Numbers("price"); err == nil {
		before := out.Rows()
		out = out.Filter(func(i int) bool {
			return price[i] >= c.cfg.PriceMin && price[i] <= c.cfg.PriceMax
		})
		if removed := before - out.Rows(); removed > 0 {
			c.logger.Info("[cleaner] Removed %d rows with price outside [%.0f, %.0f]",
				removed, c.cfg.PriceMin, c.cfg.PriceMax)
		}
	}

	if acc, err := out.Numbers("accommodates"); err == nil {
		before := out.Rows()
		out = out.Filter(func(i int) bool {
			return !(acc[i] > c.cfg.MaxAccommodates)
		})
		if removed := before - out.Rows(); removed > 0 {
			c.logger.Info("[cleaner] Removed %d rows with accommodates > %.0f",
				removed, c.cfg.MaxAccommodates)
		}
	}

	if out == f {
		out = f.Copy()
	}
	return out
}

// EncodeBooleans maps truthy/falsy text tokens in the configured boolean
// columns to 1/0 numeric columns. Unrecognized tokens become missing.
func (c *Cleaner) EncodeBooleans(f *dataset.Frame) *dataset.Frame {
	out := f.Copy()
	for _, name := range c.cfg.BooleanColumns {
		col, ok := out.Column(name)
		if !ok || col.Kind != dataset.String {
			continue
		}
		nums := make([]float64, len(col.Strs))
		for i, raw := range col.Strs {
			switch strings.ToLower(strings.TrimSpace(raw)) {
			case "t", "true", "yes", "1":
				nums[i] = 1
			case "f", "false", "no", "0":
				nums[i] = 0
			default:
				nums[i] = math.NaN()
			}
		}
		out.AddNumeric(name, nums)
		c.logger.Debug("[cleaner] Encoded boolean column %s", name)
	}
	return out
}
