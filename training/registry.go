package training

import (
	"airbnb-pricer/config"
	"airbnb-pricer/regress"
)

// Factory builds a fresh, unfitted regressor. The registry is data, not
// code: adding a candidate model means adding an entry here, not touching
// the training loop.
type Factory func() regress.Regressor

// DefaultRegistry returns the standard candidate set with its
// hyperparameters.
func DefaultRegistry(cfg config.Config) map[string]Factory {
	return map[string]Factory{
		"ExtraTreesRegressor": func() regress.Regressor {
			return regress.NewForestRegressor(
				regress.WithNEstimators(300),
				regress.WithForestMaxDepth(15),
				regress.WithForestMinSamplesSplit(2),
				regress.WithExtraRandom(true),
				regress.WithBootstrap(false),
				regress.WithForestSeed(cfg.Seed),
				regress.WithWorkers(cfg.Workers),
			)
		},
		"RandomForestRegressor": func() regress.Regressor {
			return regress.NewForestRegressor(
				regress.WithNEstimators(200),
				regress.WithForestMaxDepth(20),
				regress.WithForestMinSamplesSplit(5),
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
