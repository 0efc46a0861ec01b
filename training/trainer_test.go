package training

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-pricer/bundle"
	"airbnb-pricer/config"
	"airbnb-pricer/dataset"
	"airbnb-pricer/predict"
	"airbnb-pricer/regress"
	"airbnb-pricer/utils"
)

func trainerConfig() config.Config {
	return config.Config{
		TestSize:    0.3,
		Seed:        42,
		CVFolds:     3,
		Workers:     4,
		TopFeatures: 5,
	}
}

// listingsFixture builds a synthetic rental frame where price is a noisy
// linear function of the numeric features.
func listingsFixture(n int) *dataset.Frame {
	rnd := rand.New(rand.NewSource(7))

	accommodates := make([]float64, n)
	bedrooms := make([]float64, n)
	bathrooms := make([]float64, n)
	latitude := make([]float64, n)
	longitude := make([]float64, n)
	price := make([]float64, n)
	for i := 0; i < n; i++ {
		accommodates[i] = float64(rnd.Intn(8) + 1)
		bedrooms[i] = float64(rnd.Intn(4) + 1)
		bathrooms[i] = float64(rnd.Intn(3) + 1)
		latitude[i] = -23 + rnd.Float64()
		longitude[i] = -43.5 + rnd.Float64()
		price[i] = 50*accommodates[i] + 80*bedrooms[i] + 30*bathrooms[i] + rnd.Float64()*20
	}

	f := dataset.New()
	f.AddNumeric("accommodates", accommodates)
	f.AddNumeric("bedrooms", bedrooms)
	f.AddNumeric("bathrooms", bathrooms)
	f.AddNumeric("latitude", latitude)
	f.AddNumeric("longitude", longitude)
	f.AddNumeric("price", price)
	return f
}

// smallRegistry mirrors the default candidate names with cheap
// hyperparameters so the suite stays fast.
func smallRegistry(cfg config.Config) map[string]Factory {
	return map[string]Factory{
		"ExtraTreesRegressor": func() regress.Regressor {
			return regress.NewForestRegressor(
				regress.WithNEstimators(10),
				regress.WithForestMaxDepth(6),
				regress.WithExtraRandom(true),
				regress.WithBootstrap(false),
				regress.WithForestSeed(cfg.Seed),
				regress.WithWorkers(cfg.Workers),
			)
		},
		"RandomForestRegressor": func() regress.Regressor {
			return regress.NewForestRegressor(
				regress.WithNEstimators(10),
				regress.WithForestMaxDepth(8),
				regress.WithBootstrap(true),
				regress.WithForestSeed(cfg.Seed),
				regress.WithWorkers(cfg.Workers),
			)
		},
		"LinearRegression": func() regress.Regressor {
			return regress.NewLinearRegression()
		},
	}
}

func TestPrepareData(t *testing.T) {
	cfg := trainerConfig()
	tr := NewTrainer(cfg, utils.NewLogger())

	p, err := tr.PrepareData(listingsFixture(200), "price")
	require.NoError(t, err)

	assert.Equal(t, []string{"accommodates", "bedrooms", "bathrooms", "latitude", "longitude"}, p.FeatureNames)
	assert.Len(t, p.XTest, 60)
	assert.Len(t, p.XTrain, 140)
	assert.Len(t, p.XTrain[0], 5)
}

func TestPrepareDataMissingTarget(t *testing.T) {
	tr := NewTrainer(trainerConfig(), utils.NewLogger())
	_, err := tr.PrepareData(listingsFixture(50), "nightly_rate")
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestTrainAndEvaluateAllCandidates(t *testing.T) {
	cfg := trainerConfig()
	tr := NewTrainerWithRegistry(cfg, utils.NewLogger(), smallRegistry(cfg))

	p, err := tr.PrepareData(listingsFixture(400), "price")
	require.NoError(t, err)

	results := tr.TrainAndEvaluate(p, false)
	require.Len(t, results, 3)

	for _, r := range results {
		assert.True(t, r.Ok(), "candidate %s failed: %v", r.Name, r.Err)
		assert.Greater(t, r.Metrics.R2, 0.7, "candidate %s underfits", r.Name)
	}
}

func TestTrainAndEvaluateWithCrossValidation(t *testing.T) {
	cfg := trainerConfig()
	registry := map[string]Factory{
		"LinearRegression": func() regress.Regressor { return regress.NewLinearRegression() },
	}
	tr := NewTrainerWithRegistry(cfg, utils.NewLogger(), registry)

	p, err := tr.PrepareData(listingsFixture(300), "price")
	require.NoError(t, err)

	results := tr.TrainAndEvaluate(p, true)
	require.Len(t, results, 1)
	require.True(t, results[0].Ok())
	assert.True(t, results[0].Train.CrossValidated)
	assert.Greater(t, results[0].Train.CVMeanR2, 0.8)
}

type failingModel struct{}

func (failingModel) Fit(X [][]float64, y []float64) error { return assert.AnError }
func (failingModel) Predict(X [][]float64) []float64      { return nil }

func TestFailingCandidateIsIsolated(t *testing.T) {
	cfg := trainerConfig()
	registry := smallRegistry(cfg)
	registry["BrokenRegressor"] = func() regress.Regressor { return failingModel{} }

	tr := NewTrainerWithRegistry(cfg, utils.NewLogger(), registry)
	p, err := tr.PrepareData(listingsFixture(400), "price")
	require.NoError(t, err)

	results := tr.TrainAndEvaluate(p, false)
	require.Len(t, results, 4)

	failed := 0
	for _, r := range results {
		if !r.Ok() {
			failed++
		}
	}
	assert.Equal(t, 1, failed)

	best, err := tr.SelectBest(results)
	require.NoError(t, err)
	assert.NotEqual(t, "BrokenRegressor", best.Name)
	assert.NotNil(t, best.Model)
}

func TestSelectBestPicksHighestR2(t *testing.T) {
	tr := NewTrainer(trainerConfig(), utils.NewLogger())

	results := []Result{
		{Name: "a", Model: regress.NewLinearRegression(), Metrics: &Metrics{R2: 0.71}},
		{Name: "b", Model: regress.NewLinearRegression(), Metrics: &Metrics{R2: 0.93}},
		{Name: "c", Err: assert.AnError},
		{Name: "d", Model: regress.NewLinearRegression(), Metrics: &Metrics{R2: 0.88}},
	}

	best, err := tr.SelectBest(results)
	require.NoError(t, err)
	assert.Equal(t, "b", best.Name)
}

func TestSelectBestAllFailed(t *testing.T) {
	tr := NewTrainer(trainerConfig(), utils.NewLogger())
	_, err := tr.SelectBest([]Result{{Name: "a", Err: assert.AnError}})
	assert.ErrorIs(t, err, ErrNoValidModel)
}

func TestSelectionIsDeterministic(t *testing.T) {
	cfg := trainerConfig()

	run := func() (string, float64) {
		tr := NewTrainerWithRegistry(cfg, utils.NewLogger(), smallRegistry(cfg))
		p, err := tr.PrepareData(listingsFixture(300), "price")
		require.NoError(t, err)
		best, err := tr.SelectBest(tr.TrainAndEvaluate(p, false))
		require.NoError(t, err)
		return best.Name, best.Metrics.R2
	}

	name1, r21 := run()
	name2, r22 := run()
	assert.Equal(t, name1, name2)
	assert.Equal(t, r21, r22)
}

func TestTopFeatures(t *testing.T) {
	cfg := trainerConfig()
	p := listingsFixture(300)

	tr := NewTrainerWithRegistry(cfg, utils.NewLogger(), smallRegistry(cfg))
	prepared, err := tr.PrepareData(p, "price")
	require.NoError(t, err)

	forest := regress.NewForestRegressor(
		regress.WithNEstimators(10),
		regress.WithForestMaxDepth(8),
		regress.WithForestSeed(cfg.Seed),
	)
	require.NoError(t, forest.Fit(prepared.XTrain, prepared.YTrain))

	top := TopFeatures(forest, prepared.FeatureNames, 2)
	require.Len(t, top, 2)
	assert.GreaterOrEqual(t, top[0].Importance, top[1].Importance)
}

func TestTopFeaturesNonImporter(t *testing.T) {
	m := regress.NewLinearRegression()
	assert.Empty(t, TopFeatures(m, []string{"a"}, 3))
}

func TestTrainSelectPersistPredictEndToEnd(t *testing.T) {
	cfg := trainerConfig()
	tr := NewTrainerWithRegistry(cfg, utils.NewLogger(), smallRegistry(cfg))

	prepared, err := tr.PrepareData(listingsFixture(1000), "price")
	require.NoError(t, err)

	results := tr.TrainAndEvaluate(prepared, true)
	require.Len(t, results, 3)
	for _, r := range results {
		require.True(t, r.Ok(), "candidate %s failed: %v", r.Name, r.Err)
	}

	best, err := tr.SelectBest(results)
	require.NoError(t, err)
	for _, r := range results {
		if r.Name != best.Name && r.Ok() {
			assert.GreaterOrEqual(t, best.Metrics.R2, r.Metrics.R2)
		}
	}

	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, bundle.Save(&bundle.Bundle{
		RunID:        "e2e-run",
		ModelName:    best.Name,
		FeatureNames: prepared.FeatureNames,
		Seed:         cfg.Seed,
		Model:        best.Model,
	}, path))

	p, err := predict.Load(path)
	require.NoError(t, err)
	assert.Equal(t, best.Name, p.ModelName())
	assert.Equal(t, prepared.FeatureNames, p.Schema())

	got, err := p.PredictRow(prepared.XTest[0])
	require.NoError(t, err)
	want := best.Model.Predict([][]float64{prepared.XTest[0]})
	assert.InDelta(t, want[0], got, 1e-9)

	fromMap, err := p.Predict(map[string]any{
		"accommodates": 4,
		"bedrooms":     2,
		"bathrooms":    1,
		"latitude":     -22.5,
		"longitude":    -43.2,
	})
	require.NoError(t, err)
	assert.Greater(t, fromMap, 0.0)
}
