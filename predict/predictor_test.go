package predict

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-pricer/bundle"
	"airbnb-pricer/regress"
)

var testSchema = []string{
	"accommodates",
	"bedrooms",
	"room_type_Entire home/apt",
	"room_type_Private room",
	"room_type_Shared room",
}

func testBundle(t *testing.T) *bundle.Bundle {
	t.Helper()

	m := regress.NewLinearRegression()
	// price = 50*accommodates + 100*bedrooms + 30*entire - 10*private - 20*shared + 20
	X := [][]float64{
		{1, 1, 1, 0, 0},
		{2, 1, 0, 1, 0},
		{4, 2, 1, 0, 0},
		{2, 1, 0, 0, 1},
		{6, 3, 0, 0, 0},
		{3, 2, 0, 1, 0},
		{1, 1, 0, 0, 0},
		{5, 2, 0, 0, 1},
	}
	y := make([]float64, len(X))
	for i, r := range X {
		y[i] = 50*r[0] + 100*r[1] + 30*r[2] - 10*r[3] - 20*r[4] + 20
	}
	require.NoError(t, m.Fit(X, y))

	return &bundle.Bundle{
		RunID:        "test-run",
		ModelName:    "LinearRegression",
		FeatureNames: testSchema,
		Seed:         42,
		Model:        m,
	}
}

func TestReconcileZeroFillsMissing(t *testing.T) {
	p, err := New(testBundle(t))
	require.NoError(t, err)

	row, err := p.Reconcile(map[string]any{"accommodates": 2})
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 0, 0, 0, 0}, row)
}

func TestReconcileDropsUnknownFeatures(t *testing.T) {
	p, err := New(testBundle(t))
	require.NoError(t, err)

	row, err := p.Reconcile(map[string]any{
		"accommodates":    4,
		"bedrooms":        2,
		"swimming_pools":  3,
		"listing_comment": 1,
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 2, 0, 0, 0}, row)
}

func TestReconcileOrderFollowsSchema(t *testing.T) {
	p, err := New(testBundle(t))
	require.NoError(t, err)

	row, err := p.Reconcile(map[string]any{
		"room_type_Shared room": 1,
		"accommodates":          "3",
		"bedrooms":              1.0,
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 0, 0, 1}, row)
}

func TestReconcileRejectsUncoercibleValue(t *testing.T) {
	p, err := New(testBundle(t))
	require.NoError(t, err)

	_, err = p.Reconcile(map[string]any{"accommodates": "a few"})
	assert.Error(t, err)
}

func TestReconcileReturnsFreshSlice(t *testing.T) {
	p, err := New(testBundle(t))
	require.NoError(t, err)

	a, err := p.Reconcile(map[string]any{"accommodates": 1})
	require.NoError(t, err)
	b, err := p.Reconcile(map[string]any{"accommodates": 2})
	require.NoError(t, err)

	assert.Equal(t, 1.0, a[0])
	assert.Equal(t, 2.0, b[0])
}

func TestPredictMatchesTrainingFunction(t *testing.T) {
	p, err := New(testBundle(t))
	require.NoError(t, err)

	got, err := p.Predict(map[string]any{
		"accommodates":              4,
		"bedrooms":                  2,
		"room_type_Entire home/apt": 1,
	})
	require.NoError(t, err)
	assert.InDelta(t, 50*4+100*2+30+20, got, 1e-6)
}

func TestPredictRowLengthMismatch(t *testing.T) {
	p, err := New(testBundle(t))
	require.NoError(t, err)

	_, err = p.PredictRow([]float64{1, 2})
	assert.Error(t, err)
}

func TestConcurrentPredictions(t *testing.T) {
	p, err := New(testBundle(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				acc := float64(g + 1)
				got, err := p.Predict(map[string]any{"accommodates": acc})
				assert.NoError(t, err)
				assert.InDelta(t, 50*acc+20, got, 1e-6)
			}
		}()
	}
	wg.Wait()
}

func TestNewRejectsNilBundle(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoModelLoaded)
}

func TestNewRejectsEmptySchema(t *testing.T) {
	b := testBundle(t)
	b.FeatureNames = nil
	_, err := New(b)
	assert.ErrorIs(t, err, bundle.ErrEmptySchema)
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")
	b := testBundle(t)
	require.NoError(t, bundle.Save(b, path))

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "LinearRegression", p.ModelName())
	assert.Equal(t, testSchema, p.Schema())

	got, err := p.Predict(map[string]any{"accommodates": 2, "bedrooms": 1})
	require.NoError(t, err)
	assert.InDelta(t, 50*2+100*1+20, got, 1e-6)
}

func TestLoadMissingArtifact(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.gob"))
	assert.ErrorIs(t, err, bundle.ErrArtifactNotFound)
}

func TestPredictAppliesScaler(t *testing.T) {
	m := regress.NewLinearRegression()
	// On standardized x, y = 10*z + 100.
	require.NoError(t, m.Fit([][]float64{{-1}, {0}, {1}}, []float64{90, 100, 110}))

	s := regress.NewStandardScaler()
	s.Fit([][]float64{{10}, {20}, {30}})

	b := &bundle.Bundle{
		ModelName:    "LinearRegression",
		FeatureNames: []string{"x"},
		Scaler:       s,
		Model:        m,
	}
	p, err := New(b)
	require.NoError(t, err)

	got, err := p.Predict(map[string]any{"x": 20})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, got, 1e-6)
}
