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

package eval

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/eval/rf"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/feats"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/stats"
	"github.com/rs/zerolog/log"
)

const (
	slightOverfitGap      = 0.1
	significantOverfitGap = 0.2
)

type OverfitStatus string

const (
	OverfitNone        OverfitStatus = "good generalization"
	OverfitSlight      OverfitStatus = "slight overfitting"
	OverfitSignificant OverfitStatus = "significant overfitting"
	OverfitUnknown     OverfitStatus = "unknown"
)

// ClassifyOverfit interprets a difference between train and test R²
func ClassifyOverfit(gap float64) OverfitStatus {
	switch {
	case math.IsNaN(gap):
		return OverfitUnknown
	case gap < slightOverfitGap:
		return OverfitNone
	case gap < significantOverfitGap:
		return OverfitSlight
	default:
		return OverfitSignificant
	}
}

// SplitEvaluation contains results of a model trained and tested
// with a specific train/test split strategy
type SplitEvaluation struct {
	Name       string          `json:"name"`
	RunID      string          `json:"runId"`
	Created    time.Time       `json:"created"`
	SplitYear  int             `json:"splitYear,omitempty"`
	TrainYears feats.YearRange `json:"trainYears"`
	TestYears  feats.YearRange `json:"testYears"`
	Train      Metrics         `json:"train"`
	Test       Metrics         `json:"test"`
}

func (se SplitEvaluation) OverfitGap() float64 {
	return se.Train.R2 - se.Test.R2
}

func (se SplitEvaluation) OverfitStatus() OverfitStatus {
	return ClassifyOverfit(se.OverfitGap())
}

func (se SplitEvaluation) runRecord(kind string) stats.RunRecord {
	return stats.RunRecord{
		ID:        se.RunID,
		Datetime:  se.Created.Unix(),
		Kind:      kind,
		SplitYear: se.SplitYear,
		Train:     metricsToScore(se.Train),
		Test:      metricsToScore(se.Test),
		Comment:   se.Name,
	}
}

// Comparison confronts a randomly split evaluation with
// the temporally split one
type Comparison struct {
	NumSamples int             `json:"numSamples"`
	NumDropped int             `json:"numDropped"`
	Years      feats.YearRange `json:"years"`
	Random     SplitEvaluation `json:"random"`
	Temporal   SplitEvaluation `json:"temporal"`
}

// RandomOverstates tells whether the random split reports better
// test R² than the temporal one - i.e. whether it makes the model
// look better at forecasting than it really is
func (c Comparison) RandomOverstates() bool {
	return c.Random.Test.R2 > c.Temporal.Test.R2
}

func (c Comparison) R2Difference() float64 {
	return c.Random.Test.R2 - c.Temporal.Test.R2
}

// RunRecords returns both evaluations as run log records
func (c Comparison) RunRecords() []stats.RunRecord {
	return []stats.RunRecord{
		c.Random.runRecord(stats.RunKindEvalRandom),
		c.Temporal.runRecord(stats.RunKindEvalTemporal),
	}
}

// ----------------------------

// Harness compares a naive random split evaluation with the temporal one
// using the same forest parameters. It never touches stored artifacts.
type Harness struct {
	Params       rf.Params
	SplitYear    int
	TestFraction float64
	Seed         uint64
	OnTree       func()
}

func (h *Harness) evaluateRandom(ctx context.Context, lagged []feats.LaggedRecord) (SplitEvaluation, error) {
	// the encoding is fitted on all the rows here, just like the naive
	// evaluation usually does
	encoding := feats.FitCountryEncoding(feats.DistinctCountries(lagged))
	train, test, err := feats.RandomSplit(lagged, h.TestFraction, h.Seed)
	if err != nil {
		return SplitEvaluation{}, fmt.Errorf("failed to evaluate random split: %w", err)
	}
	if len(train) == 0 {
		return SplitEvaluation{}, fmt.Errorf("failed to evaluate random split: %w", ErrEmptyTrainingSet)
	}
	xTrain, yTrain, err := encoding.EncodeAll(train)
	if err != nil {
		return SplitEvaluation{}, fmt.Errorf("failed to evaluate random split: %w", err)
	}
	xTest, yTest, err := encoding.EncodeAll(test)
	if err != nil {
		return SplitEvaluation{}, fmt.Errorf("failed to evaluate random split: %w", err)
	}
	model := rf.NewModel(h.Params)
	comment := fmt.Sprintf("random split, test fraction %01.2f", h.TestFraction)
	if err := model.Train(ctx, xTrain, yTrain, comment, h.OnTree); err != nil {
		return SplitEvaluation{}, fmt.Errorf("failed to evaluate random split: %w", err)
	}
	ans := SplitEvaluation{
		Name:       "80/20 Random Split",
		RunID:      uuid.New().String(),
		TrainYears: feats.YearSpan(train),
		TestYears:  feats.YearSpan(test),
	}
	trainPred, err := model.PredictAll(xTrain)
	if err != nil {
		return SplitEvaluation{}, fmt.Errorf("failed to evaluate random split: %w", err)
	}
	ans.Train, err = ComputeMetrics(yTrain, trainPred)
	if err != nil {
		return SplitEvaluation{}, fmt.Errorf("failed to evaluate random split: %w", err)
	}
	testPred, err := model.PredictAll(xTest)
	if err != nil {
		return SplitEvaluation{}, fmt.Errorf("failed to evaluate random split: %w", err)
	}
	ans.Test, err = ComputeMetrics(yTest, testPred)
	if err != nil {
		return SplitEvaluation{}, fmt.Errorf("failed to evaluate random split: %w", err)
	}
	ans.Created = time.Now()
	return ans, nil
}

// Evaluate trains and tests two models (random and temporal split)
// on the same lagged data.
func (h *Harness) Evaluate(ctx context.Context, observations []feats.ObservationRecord) (Comparison, error) {
	lagged, dropped := feats.BuildLagged(observations)
	log.Info().
		Int("numObservations", len(observations)).
		Int("numDropped", dropped).
		Int("numSamples", len(lagged)).
		Msg("created lagged features (T-1)")

	ans := Comparison{
		NumSamples: len(lagged),
		NumDropped: dropped,
		Years:      feats.YearSpan(lagged),
	}
	var err error
	ans.Random, err = h.evaluateRandom(ctx, lagged)
	if err != nil {
		return Comparison{}, err
	}
	log.Info().
		Object("train", ans.Random.Train).
		Object("test", ans.Random.Test).
		Msg("evaluated random split")

	pipeline := Pipeline{SplitYear: h.SplitYear, Params: h.Params, OnTree: h.OnTree}
	res, err := pipeline.fitLagged(ctx, lagged)
	if err != nil {
		return Comparison{}, fmt.Errorf("failed to evaluate temporal split: %w", err)
	}
	ans.Temporal = SplitEvaluation{
		Name:       fmt.Sprintf("Temporal Split (%d+)", h.SplitYear),
		RunID:      res.RunID,
		Created:    res.Created,
		SplitYear:  h.SplitYear,
		TrainYears: res.TrainYears,
		TestYears:  res.TestYears,
		Train:      res.Train,
		Test:       res.Test,
	}
	log.Info().
		Object("train", ans.Temporal.Train).
		Object("test", ans.Temporal.Test).
		Msg("evaluated temporal split")
	return ans, nil
}
