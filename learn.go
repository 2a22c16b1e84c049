// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Department of Linguistics,
// Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/artifact"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/cnf"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/dataimport"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/eval"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/feats"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/stats"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

func loadObservations(conf *cnf.Conf) []feats.ObservationRecord {
	if conf.DatasetPath == "" {
		color.New(errColor).Fprintln(os.Stderr, "no dataset specified (use datasetPath in config or -dataset)")
		os.Exit(exitErrorFailedToLoadData)
	}
	obs, err := dataimport.LoadObservations(conf.DatasetPath)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorFailedToLoadData)
	}
	return obs
}

// openRunLog opens the run log if configured. A missing configuration
// yields a nil recorder.
func openRunLog(conf *cnf.Conf) (*stats.Database, eval.RunRecorder) {
	if conf.WorkingDBPath == "" {
		return nil, nil
	}
	db, err := stats.NewDatabase(conf.WorkingDBPath)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorFailedToOpenRunLog)
	}
	if err := db.Init(); err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorFailedToOpenRunLog)
	}
	return db, db
}

func printMetrics(title string, m eval.Metrics) {
	fmt.Printf(
		"%s: R²=%s, RMSE=%.4f, MAE=%.4f, MAPE=%.2f%%, samples=%d\n",
		titleColor(title), scoreColor(m.R2), m.RMSE, m.MAE, m.MAPE, m.NumSamples,
	)
}

func runActionTrain(conf *cnf.Conf) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs := loadObservations(conf)

	artifacts, err := artifact.OpenDB(conf.ArtifactsPath)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorFailedToOpenArtifacts)
	}
	defer artifacts.Close()

	runLog, recorder := openRunLog(conf)
	if runLog != nil {
		defer runLog.Close()
	}

	bar := progressbar.Default(int64(conf.Forest.NumTrees), "training trees")
	pipeline := &eval.Pipeline{
		SplitYear: conf.TemporalSplitYear,
		Params:    conf.Forest,
		OnTree: func() {
			bar.Add(1)
		},
	}
	result, err := pipeline.Run(ctx, obs, artifacts, recorder)
	bar.Finish()
	if err != nil {
		color.New(errColor).Fprintf(os.Stderr, "training failed: %s\n", err)
		os.Exit(exitErrorTrainingFailed)
	}

	fmt.Println()
	fmt.Printf("%s: %s\n", titleColor("Run ID"), result.RunID)
	fmt.Printf("%s: %s\n", titleColor("Train years"), result.TrainYears)
	fmt.Printf("%s: %s\n", titleColor("Test years"), result.TestYears)
	fmt.Printf("%s: %d\n", titleColor("Countries"), result.NumCountries)
	fmt.Printf("%s: %d\n", titleColor("Dropped rows (no previous year)"), result.NumDropped)
	printMetrics("Train", result.Train)
	if result.Test.IsEmpty() {
		color.New(color.FgYellow).Println("Test partition is empty, no test metrics available")

	} else {
		printMetrics("Test", result.Test)
	}
	fmt.Printf("%s:\n", titleColor("Feature importance"))
	for _, imp := range result.Importances {
		fmt.Printf("  %-16s %6.4f %s\n", imp.Column, imp.Importance, strings.Repeat("█", int(imp.Importance*50)))
	}
	fmt.Printf("\nmodel stored in %s\n", conf.ArtifactsPath)
}

func runActionEvaluate(conf *cnf.Conf) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs := loadObservations(conf)
	runLog, _ := openRunLog(conf)
	if runLog != nil {
		defer runLog.Close()
	}

	bar := progressbar.Default(int64(2*conf.Forest.NumTrees), "evaluating")
	harness := &eval.Harness{
		Params:       conf.Forest,
		SplitYear:    conf.TemporalSplitYear,
		TestFraction: conf.Evaluation.TestFraction,
		Seed:         conf.Evaluation.Seed,
		OnTree: func() {
			bar.Add(1)
		},
	}
	cmp, err := harness.Evaluate(ctx, obs)
	bar.Finish()
	if err != nil {
		color.New(errColor).Fprintf(os.Stderr, "evaluation failed: %s\n", err)
		os.Exit(exitErrorEvaluationFailed)
	}
	fmt.Println()
	printComparison(cmp)

	if runLog != nil {
		for _, rec := range cmp.RunRecords() {
			if err := runLog.AddRun(rec); err != nil {
				log.Error().Err(err).Str("runId", rec.ID).Msg("failed to record evaluation run")
			}
		}
	}

	f, err := os.Create(conf.Evaluation.ReportPath)
	if err != nil {
		color.New(errColor).Fprintf(os.Stderr, "failed to save report: %s\n", err)
		os.Exit(exitErrorEvaluationFailed)
	}
	defer f.Close()
	if err := cmp.WriteReport(f); err != nil {
		color.New(errColor).Fprintf(os.Stderr, "failed to save report: %s\n", err)
		os.Exit(exitErrorEvaluationFailed)
	}
	fmt.Printf("\nreport saved to %s\n", conf.Evaluation.ReportPath)
}

func printComparison(cmp eval.Comparison) {
	fmt.Println(titleColor("GDP PREDICTION MODEL - 80/20 SPLIT EVALUATION"))
	fmt.Printf("samples: %d (dropped: %d), years %s\n\n", cmp.NumSamples, cmp.NumDropped, cmp.Years)
	for _, se := range []eval.SplitEvaluation{cmp.Random, cmp.Temporal} {
		fmt.Printf("%s (train %s, test %s)\n", titleColor(se.Name), se.TrainYears, se.TestYears)
		printMetrics("  Train", se.Train)
		printMetrics("  Test", se.Test)
		fmt.Printf("  overfitting gap: %.4f, %s\n\n", se.OverfitGap(), overfitColor(se.OverfitStatus()))
	}
	if cmp.RandomOverstates() {
		color.New(color.FgYellow).Printf(
			"random split shows %.4f higher test R² - it overstates the forecasting skill\n",
			cmp.R2Difference(),
		)

	} else {
		color.New(color.FgGreen).Println("random split does not overstate the forecasting skill")
	}
}
