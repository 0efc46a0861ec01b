package training

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"airbnb-pricer/config"
	"airbnb-pricer/dataset"
	"airbnb-pricer/regress"
	"airbnb-pricer/utils"
)

var (
	// ErrTargetNotFound is returned when the requested target column is
	// missing from the prepared frame.
	ErrTargetNotFound = errors.New("training: target column not found")
	// ErrNoValidModel is returned at selection time when every candidate
	// failed to train or evaluate.
	ErrNoValidModel = errors.New("training: no model evaluated successfully")
)

// Prepared holds the fixed train/test split plus the exact ordered feature
// schema the models are fit against. That ordering is the contract every
// inference-time vector must honor.
type Prepared struct {
	FeatureNames []string
	XTrain       [][]float64
	XTest        [][]float64
	YTrain       []float64
	YTest        []float64
}

// Trainer runs the candidate registry over a prepared split, isolating
// failures per candidate.
type Trainer struct {
	cfg      config.Config
	logger   *utils.Logger
	registry map[string]Factory
}

// NewTrainer creates a Trainer with the default candidate registry.
func NewTrainer(cfg config.Config, logger *utils.Logger) *Trainer {
	return &Trainer{cfg: cfg, logger: logger, registry: DefaultRegistry(cfg)}
}

// NewTrainerWithRegistry creates a Trainer with a custom candidate registry.
func NewTrainerWithRegistry(cfg config.Config, logger *utils.Logger, registry map[string]Factory) *Trainer {
	return &Trainer{cfg: cfg, logger: logger, registry: registry}
}

// PrepareData splits the model-ready frame into feature matrix and target,
// then performs the seeded train/test split. No stratification: the target
// is continuous.
func (t *Trainer) PrepareData(f *dataset.Frame, target string) (*Prepared, error) {
	if _, err := f.Numbers(target); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrTargetNotFound, target)
	}

	var names []string
	for _, n := range f.NumericNames() {
		if n != target {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("training: no feature columns besides target %q", target)
	}

	X, err := f.Matrix(names)
	if err != nil {
		return nil, fmt.Errorf("training: build matrix: %w", err)
	}
	y, _ := f.Numbers(target)

	p := &Prepared{FeatureNames: names}
	p.XTrain, p.XTest, p.YTrain, p.YTest = regress.TrainTestSplit(X, y, t.cfg.TestSize, t.cfg.Seed)

	t.logger.Info("[training] Prepared %d features — train: %d rows, test: %d rows",
		len(names), len(p.XTrain), len(p.XTest))
	return p, nil
}

// TrainAndEvaluate fits every registry candidate on the training split and
// scores it on the held-out split. A failing candidate yields an error
// result; the remaining candidates still run.
func (t *Trainer) TrainAndEvaluate(p *Prepared, useCV bool) []Result {
	names := make([]string, 0, len(t.registry))
	for name := range t.registry {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]Result, 0, len(names))
	for _, name := range names {
		results = append(results, t.runCandidate(name, t.registry[name], p, useCV))
	}
	return results
}

func (t *Trainer) runCandidate(name string, factory Factory, p *Prepared, useCV bool) Result {
	t.logger.Info("[training] Training %s...", name)
	res := Result{Name: name}

	model := factory()
	if err := model.Fit(p.XTrain, p.YTrain); err != nil {
		res.Err = fmt.Errorf("training: fit %s: %w", name, err)
		t.logger.Warn("[training] %s failed to train: %v", name, err)
		return res
	}
	res.Model = model

	if useCV {
		mean, std, err := t.crossValidate(factory, p)
		if err != nil {
			res.Err = fmt.Errorf("training: cross-validate %s: %w", name, err)
			t.logger.Warn("[training] %s failed cross-validation: %v", name, err)
			return res
		}
		res.Train = TrainScore{CrossValidated: true, CVMeanR2: mean, CVStdR2: std}
		t.logger.Info("[training] %s R² (cv): %.4f ± %.4f", name, mean, std)
	} else {
		trainR2 := regress.R2(p.YTrain, model.Predict(p.XTrain))
		res.Train = TrainScore{TrainR2: trainR2}
		t.logger.Info("[training] %s R² (train): %.4f", name, trainR2)
	}

	pred := model.Predict(p.XTest)
	if len(pred) != len(p.YTest) {
		res.Err = fmt.Errorf("training: evaluate %s: prediction length mismatch", name)
		return res
	}
	mse := regress.MSE(p.YTest, pred)
	res.Metrics = &Metrics{
		R2:   regress.R2(p.YTest, pred),
		MAE:  regress.MAE(p.YTest, pred),
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		MAPE: regress.MAPE(p.YTest, pred),
	}
	t.logger.Info("[training] %s R² (test): %.4f | MAE: %.2f | RMSE: %.2f | MAPE: %.2f%%",
		name, res.Metrics.R2, res.Metrics.MAE, res.Metrics.RMSE, res.Metrics.MAPE*100)
	return res
}

// crossValidate runs k-fold validation over the training split with fresh
// models, returning mean and stddev of the fold R² scores.
func (t *Trainer) crossValidate(factory Factory, p *Prepared) (float64, float64, error) {
	k := t.cfg.CVFolds
	if k < 2 {
		k = 2
	}
	folds := regress.KFold(len(p.XTrain), k, t.cfg.Seed)

	scores := make([]float64, 0, k)
	for fi, fold := range folds {
		holdout := make(map[int]struct{}, len(fold))
		for _, i := range fold {
			holdout[i] = struct{}{}
		}

		var trX, vaX [][]float64
		var trY, vaY []float64
		for i := range p.XTrain {
			if _, out := holdout[i]; out {
				vaX = append(vaX, p.XTrain[i])
				vaY = append(vaY, p.YTrain[i])
			} else {
				trX = append(trX, p.XTrain[i])
				trY = append(trY, p.YTrain[i])
			}
		}
		if len(vaX) == 0 || len(trX) == 0 {
			continue
		}

		model := factory()
		if err := model.Fit(trX, trY); err != nil {
			return 0, 0, fmt.Errorf("fold %d: %w", fi, err)
		}
		scores = append(scores, regress.R2(vaY, model.Predict(vaX)))
	}
	if len(scores) == 0 {
		return 0, 0, errors.New("no usable folds")
	}
	mean, std := stat.MeanStdDev(scores, nil)
	if len(scores) == 1 {
		std = 0
	}
	return mean, std, nil
}

// SelectBest picks the candidate with the highest held-out R² among those
// that evaluated cleanly.
func (t *Trainer) SelectBest(results []Result) (*Result, error) {
	var best *Result
	for i := range results {
		r := &results[i]
		if !r.Ok() {
			continue
		}
		if best == nil || r.Metrics.R2 > best.Metrics.R2 {
			best = r
		}
	}
	if best == nil {
		return nil, ErrNoValidModel
	}
	t.logger.Info("[training] Best model: %s (R² = %.4f)", best.Name, best.Metrics.R2)
	return best, nil
}

// TopFeatures returns the top-n features by importance for the given model,
// or an empty slice when the model exposes no importances. That is a
// capability gap, not an error.
func TopFeatures(model regress.Regressor, featureNames []string, n int) []FeatureImportance {
	importer, ok := model.(regress.FeatureImporter)
	if !ok {
		return nil
	}
	imp := importer.FeatureImportances()
	if len(imp) != len(featureNames) {
		return nil
	}

	out := make([]FeatureImportance, len(imp))
	for i, v := range imp {
		out[i] = FeatureImportance{Feature: featureNames[i], Importance: v}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Importance > out[j].Importance })

	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
