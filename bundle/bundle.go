package bundle

import (
	"bufio"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"airbnb-pricer/regress"
)

var (
	// ErrArtifactNotFound is returned by Load when no artifact exists at the
	// given path.
	ErrArtifactNotFound = errors.New("bundle: artifact not found")
	// ErrEmptySchema is returned when a bundle carries no feature schema.
	ErrEmptySchema = errors.New("bundle: empty feature schema")
)

func init() {
	gob.Register(&regress.LinearRegression{})
	gob.Register(&regress.TreeRegressor{})
	gob.Register(&regress.ForestRegressor{})
}

// Bundle is the self-contained training artifact: the fitted model together
// with everything inference needs to reproduce the training-time feature
// contract. The schema stored here is the single source of truth for input
// vector layout; it is never hardcoded anywhere else.
type Bundle struct {
	RunID        string
	ModelName    string
	FeatureNames []string
	Seed         int64
	Scaler       *regress.StandardScaler
	Model        regress.Regressor
}

// Save writes the bundle to the given path with gob encoding, creating
// intermediate directories as needed.
func Save(b *Bundle, path string) error {
	if len(b.FeatureNames) == 0 {
		return ErrEmptySchema
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("bundle: create dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bundle: create %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(b); err != nil {
		return fmt.Errorf("bundle: encode: %w", err)
	}
	return w.Flush()
}

// Load reads a bundle back from disk.
func Load(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("bundle: open %q: %w", path, err)
	}
	defer f.Close()

	var b Bundle
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&b); err != nil {
		return nil, fmt.Errorf("bundle: decode %q: %w", path, err)
	}
	if len(b.FeatureNames) == 0 {
		return nil, ErrEmptySchema
	}
	return &b, nil
}

// WriteSchemaFile exports the ordered feature schema as a plain text file,
// one feature name per line.
func WriteSchemaFile(b *Bundle, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("bundle: create dir: %w", err)
	}
	return os.WriteFile(path, []byte(strings.Join(b.FeatureNames, "\n")+"\n"), 0644)
}

// ReadSchemaFile parses a schema file written by WriteSchemaFile.
func ReadSchemaFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bundle: read schema %q: %w", path, err)
	}

	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		names = append(names, line)
	}
	if len(names) == 0 {
		return nil, ErrEmptySchema
	}
	return names, nil
}
