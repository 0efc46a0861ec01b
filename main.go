package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"airbnb-pricer/bundle"
	"airbnb-pricer/config"
	"airbnb-pricer/dataset"
	"airbnb-pricer/ingest"
	"airbnb-pricer/predict"
	"airbnb-pricer/regress"
	"airbnb-pricer/services"
	"airbnb-pricer/storage"
	"airbnb-pricer/training"
	"airbnb-pricer/utils"
)

func main() {
	skipProcessing := flag.Bool("skip-processing", false, "reuse the processed CSV instead of rebuilding it from raw files")
	noCV := flag.Bool("no-cv", false, "score candidates on the training split instead of cross-validation")
	target := flag.String("target", "price", "target column to predict")
	outputDir := flag.String("output-dir", "", "directory for CSV reports (overrides OUTPUT_DIR)")
	flag.Parse()

	logger := utils.NewLogger()
	cfg := config.Load()
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	logger.Info("=== Rio Rental Price Trainer starting ===")
	logger.Info("Config — seed: %d | test size: %.2f | cv folds: %d | workers: %d",
		cfg.Seed, cfg.TestSize, cfg.CVFolds, cfg.Workers)

	frame, err := buildDataset(cfg, logger, *skipProcessing)
	if err != nil {
		logger.Error("Dataset preparation failed: %v", err)
		os.Exit(1)
	}

	summarySvc := services.NewSummaryService(logger)
	summarySvc.Print(summarySvc.Generate(frame))

	trainer := training.NewTrainer(cfg, logger)
	prepared, err := trainer.PrepareData(frame, *target)
	if err != nil {
		logger.Error("Data preparation failed: %v", err)
		os.Exit(1)
	}

	var scaler *regress.StandardScaler
	if cfg.ScaleFeatures {
		scaler = regress.NewStandardScaler()
		prepared.XTrain = scaler.FitTransform(prepared.XTrain)
		prepared.XTest = scaler.Transform(prepared.XTest)
		logger.Info("Standardized %d features", len(prepared.FeatureNames))
	}

	results := trainer.TrainAndEvaluate(prepared, !*noCV)
	best, err := trainer.SelectBest(results)
	if err != nil {
		logger.Error("Model selection failed: %v", err)
		os.Exit(1)
	}

	runID := uuid.NewString()

	if cfg.OutputDir != "" {
		writeReports(cfg, logger, results, best, prepared)
	}

	b := &bundle.Bundle{
		RunID:        runID,
		ModelName:    best.Name,
		FeatureNames: prepared.FeatureNames,
		Seed:         cfg.Seed,
		Scaler:       scaler,
		Model:        best.Model,
	}

	if err := bundle.Save(b, cfg.ModelPath); err != nil {
		logger.Error("Failed to save model artifact: %v", err)
		os.Exit(1)
	}
	logger.Info("Model artifact saved to %s (run %s)", cfg.ModelPath, runID)

	if err := bundle.WriteSchemaFile(b, schemaPath(cfg.ModelPath)); err != nil {
		logger.Warn("Failed to write schema file: %v", err)
	}

	if err := validateArtifact(cfg.ModelPath, prepared); err != nil {
		logger.Error("Saved artifact failed reload validation: %v", err)
		os.Exit(1)
	}
	logger.Info("Artifact reload validation passed")

	if cfg.PostgresEnabled {
		saveRunHistory(cfg, logger, runID, best, results, prepared)
	}

	fmt.Printf("  Done. Best model: %s (R² = %.4f) → %s\n\n",
		best.Name, best.Metrics.R2, cfg.ModelPath)
}

// buildDataset either runs the full raw-to-processed pipeline or reloads the
// processed CSV from a previous run.
func buildDataset(cfg config.Config, logger *utils.Logger, skipProcessing bool) (*dataset.Frame, error) {
	if skipProcessing {
		logger.Info("Skipping processing — loading %s", cfg.ProcessedDataPath)
		return dataset.ReadCSVFile(cfg.ProcessedDataPath)
	}

	loader := ingest.NewLoader(logger)
	frame, err := loader.LoadDir(cfg.RawDataDir)
	if err != nil {
		return nil, err
	}

	q := dataset.Quality(frame)
	logger.Info("Raw dataset: %d rows × %d cols | %d missing | %d duplicates | %.1f MB",
		q.TotalRows, q.TotalColumns, q.MissingValues, q.DuplicateRows, q.MemoryUsageMB)

	cleaner := services.NewCleaner(cfg, logger)
	frame, err = cleaner.Clean(frame)
	if err != nil {
		return nil, err
	}

	for _, col := range cfg.OutlierColumns {
		if !frame.Has(col) {
			continue
		}
		frame, err = services.RemoveOutliers(frame, col, cfg.OutlierMethod, cfg.OutlierFactor)
		if err != nil {
			return nil, err
		}
	}
	logger.Info("After outlier removal: %d rows", frame.Rows())

	encoder := services.NewEncoder(logger)
	frame, indicators, err := encoder.Encode(frame, cfg.CategoricalColumns)
	if err != nil {
		return nil, err
	}
	logger.Info("One-hot encoding added %d indicator columns", len(indicators))

	selector := services.NewSelector(cfg, logger)
	frame, err = selector.Finalize(frame)
	if err != nil {
		return nil, err
	}

	if err := frame.WriteCSVFile(cfg.ProcessedDataPath); err != nil {
		logger.Warn("Failed to save processed dataset: %v", err)
	} else {
		logger.Info("Processed dataset saved to %s", cfg.ProcessedDataPath)
	}
	return frame, nil
}

func writeReports(cfg config.Config, logger *utils.Logger, results []training.Result,
	best *training.Result, prepared *training.Prepared) {

	cmpPath := filepath.Join(cfg.OutputDir, "model_comparison.csv")
	if err := training.WriteModelComparison(results, cmpPath); err != nil {
		logger.Warn("Failed to write model comparison: %v", err)
	} else {
		logger.Info("Model comparison saved to %s", cmpPath)
	}

	imps := training.TopFeatures(best.Model, prepared.FeatureNames, cfg.TopFeatures)
	if len(imps) == 0 {
		logger.Info("%s exposes no feature importances — skipping report", best.Name)
		return
	}
	impPath := filepath.Join(cfg.OutputDir, "feature_importance.csv")
	if err := training.WriteFeatureImportance(imps, impPath); err != nil {
		logger.Warn("Failed to write feature importances: %v", err)
	} else {
		logger.Info("Feature importances saved to %s", impPath)
	}
}

// validateArtifact reloads the artifact from disk and pushes a synthetic
// observation through it, proving the saved bundle is usable end to end.
func validateArtifact(path string, prepared *training.Prepared) error {
	p, err := predict.Load(path)
	if err != nil {
		return err
	}
	sample := map[string]any{}
	if len(prepared.FeatureNames) > 0 {
		sample[prepared.FeatureNames[0]] = 1.0
	}
	_, err = p.Predict(sample)
	return err
}

func saveRunHistory(cfg config.Config, logger *utils.Logger, runID string,
	best *training.Result, results []training.Result, prepared *training.Prepared) {

	store, err := storage.NewPostgresWriter(cfg.DSN(), logger)
	if err != nil {
		logger.Warn("Run history disabled — PostgreSQL unavailable: %v", err)
		return
	}
	persistRuns(store, logger, cfg, runID, best, results, prepared)
}

func persistRuns(store storage.RunStore, logger *utils.Logger, cfg config.Config, runID string,
	best *training.Result, results []training.Result, prepared *training.Prepared) {

	defer store.Close()

	runs := make([]storage.TrainingRun, 0, len(results))
	for _, r := range results {
		if !r.Ok() {
			continue
		}
		runs = append(runs, storage.TrainingRun{
			RunID:     runID,
			ModelName: r.Name,
			Selected:  r.Name == best.Name,
			R2:        r.Metrics.R2,
			MAE:       r.Metrics.MAE,
			RMSE:      r.Metrics.RMSE,
			MAPE:      r.Metrics.MAPE,
			Seed:      cfg.Seed,
			Features:  len(prepared.FeatureNames),
		})
	}
	if err := store.SaveRun(runs); err != nil {
		logger.Warn("Failed to store run history: %v", err)
		return
	}

	stored, err := store.FetchRuns(runID)
	if err != nil {
		logger.Warn("Run history saved but readback failed: %v", err)
		return
	}
	if len(stored) != len(runs) {
		logger.Warn("Run history readback returned %d rows, expected %d", len(stored), len(runs))
		return
	}
	logger.Info("Run history stored in PostgreSQL (%d rows, table: training_runs)", len(stored))
}

func schemaPath(modelPath string) string {
	ext := filepath.Ext(modelPath)
	return modelPath[:len(modelPath)-len(ext)] + "_schema.txt"
}
