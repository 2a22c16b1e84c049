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
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/artifact"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/eval/rf"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/feats"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/stats"
	"github.com/rs/zerolog/log"
)

var ErrEmptyTrainingSet = errors.New("empty training set")

// ArtifactSaver stores a trained model along with its encoding
// as a single unit
type ArtifactSaver interface {
	Save(bundle artifact.Bundle) error
}

// RunRecorder appends finished runs to a run log
type RunRecorder interface {
	AddRun(rec stats.RunRecord) error
}

// FeatureImportance is an importance of a single model input column
type FeatureImportance struct {
	Column     string  `json:"column"`
	Importance float64 `json:"importance"`
}

// TrainingResult describes a finished fit
type TrainingResult struct {
	RunID        string              `json:"runId"`
	Created      time.Time           `json:"created"`
	SplitYear    int                 `json:"splitYear"`
	NumDropped   int                 `json:"numDropped"`
	TrainYears   feats.YearRange     `json:"trainYears"`
	TestYears    feats.YearRange     `json:"testYears"`
	Train        Metrics             `json:"train"`
	Test         Metrics             `json:"test"`
	Importances  []FeatureImportance `json:"importances"`
	NumCountries int                 `json:"numCountries"`

	model    *rf.Model
	encoding *feats.CountryEncoding
}

// Bundle returns the trained artifacts
func (tr TrainingResult) Bundle() artifact.Bundle {
	return artifact.Bundle{
		Model:    tr.model,
		Encoding: tr.encoding,
		Meta: artifact.Meta{
			RunID:          tr.RunID,
			CreatedAt:      tr.Created,
			FeatureColumns: feats.FeatureColumnsSlice(),
			SplitYear:      tr.SplitYear,
			TrainSamples:   tr.Train.NumSamples,
			TestSamples:    tr.Test.NumSamples,
		},
	}
}

// RunRecord converts the result into a run log record
func (tr TrainingResult) RunRecord(kind string) stats.RunRecord {
	return stats.RunRecord{
		ID:        tr.RunID,
		Datetime:  tr.Created.Unix(),
		Kind:      kind,
		SplitYear: tr.SplitYear,
		Train:     metricsToScore(tr.Train),
		Test:      metricsToScore(tr.Test),
	}
}

func metricsToScore(m Metrics) stats.PartitionScore {
	return stats.PartitionScore{
		NumSamples: m.NumSamples,
		R2:         m.R2,
		RMSE:       m.RMSE,
		MAE:        m.MAE,
		MAPE:       m.MAPE,
	}
}

// ----------------------------

// Pipeline turns raw observations into a trained, evaluated and persisted
// model. Splitting is temporal so the model never sees data from
// the evaluated period.
type Pipeline struct {
	SplitYear int
	Params    rf.Params

	// OnTree is called after each trained tree (e.g. for progress reporting)
	OnTree func()
}

func importances(model *rf.Model) []FeatureImportance {
	ans := make([]FeatureImportance, len(model.FeatureImportance))
	for i, v := range model.FeatureImportance {
		ans[i] = FeatureImportance{Column: feats.FeatureColumns[i], Importance: v}
	}
	return ans
}

func (p *Pipeline) fitLagged(
	ctx context.Context,
	lagged []feats.LaggedRecord,
) (TrainingResult, error) {
	train, test := feats.TemporalSplit(lagged, p.SplitYear)
	if len(train) == 0 {
		return TrainingResult{}, fmt.Errorf(
			"failed to fit model with split year %d: %w", p.SplitYear, ErrEmptyTrainingSet)
	}
	if len(test) == 0 {
		log.Warn().
			Int("splitYear", p.SplitYear).
			Msg("empty test partition, test metrics will not be available")
	}
	log.Info().
		Int("trainSize", len(train)).
		Stringer("trainYears", feats.YearSpan(train)).
		Int("testSize", len(test)).
		Stringer("testYears", feats.YearSpan(test)).
		Msg("performed temporal split")

	encoding := feats.FitCountryEncoding(feats.DistinctCountries(train))
	xTrain, yTrain, err := encoding.EncodeAll(train)
	if err != nil {
		return TrainingResult{}, fmt.Errorf("failed to prepare training data: %w", err)
	}
	xTest, yTest, err := encoding.EncodeAll(test)
	if err != nil {
		return TrainingResult{}, fmt.Errorf("failed to prepare test data: %w", err)
	}

	model := rf.NewModel(p.Params)
	comment := fmt.Sprintf("temporal split at %d", p.SplitYear)
	if err := model.Train(ctx, xTrain, yTrain, comment, p.OnTree); err != nil {
		return TrainingResult{}, fmt.Errorf("failed to fit model: %w", err)
	}

	trainPred, err := model.PredictAll(xTrain)
	if err != nil {
		return TrainingResult{}, fmt.Errorf("failed to evaluate model: %w", err)
	}
	trainMetrics, err := ComputeMetrics(yTrain, trainPred)
	if err != nil {
		return TrainingResult{}, fmt.Errorf("failed to evaluate model: %w", err)
	}
	testPred, err := model.PredictAll(xTest)
	if err != nil {
		return TrainingResult{}, fmt.Errorf("failed to evaluate model: %w", err)
	}
	testMetrics, err := ComputeMetrics(yTest, testPred)
	if err != nil {
		return TrainingResult{}, fmt.Errorf("failed to evaluate model: %w", err)
	}
	if len(test) > 0 {
		log.Info().
			Str("country", test[0].Country).
			Int("year", test[0].Year).
			Float64("actual", yTest[0]).
			Float64("predicted", testPred[0]).
			Msg("example prediction")
	}

	return TrainingResult{
		RunID:        uuid.New().String(),
		Created:      time.Now(),
		SplitYear:    p.SplitYear,
		TrainYears:   feats.YearSpan(train),
		TestYears:    feats.YearSpan(test),
		Train:        trainMetrics,
		Test:         testMetrics,
		Importances:  importances(model),
		NumCountries: encoding.Len(),
		model:        model,
		encoding:     encoding,
	}, nil
}

// Fit builds lagged features out of the observations, splits them
// temporally and trains a model on the older part. Nothing is persisted.
func (p *Pipeline) Fit(ctx context.Context, observations []feats.ObservationRecord) (TrainingResult, error) {
	lagged, dropped := feats.BuildLagged(observations)
	log.Info().
		Int("numObservations", len(observations)).
		Int("numDropped", dropped).
		Int("numSamples", len(lagged)).
		Msg("created lagged features (T-1)")
	ans, err := p.fitLagged(ctx, lagged)
	if err != nil {
		return ans, err
	}
	ans.NumDropped = dropped
	return ans, nil
}

// Run fits the model and stores the model along with its encoding.
// If recorder is not nil, the run is also written to the run log.
// A failure to write the log is reported but it does not fail the run.
func (p *Pipeline) Run(
	ctx context.Context,
	observations []feats.ObservationRecord,
	saver ArtifactSaver,
	recorder RunRecorder,
) (TrainingResult, error) {
	result, err := p.Fit(ctx, observations)
	if err != nil {
		return result, err
	}
	if err := saver.Save(result.Bundle()); err != nil {
		return result, fmt.Errorf("failed to store trained model: %w", err)
	}
	if recorder != nil {
		rec := result.RunRecord(stats.RunKindTrain)
		rec.Comment = result.model.GetInfo()
		if err := recorder.AddRun(rec); err != nil {
			log.Error().Err(err).Str("runId", result.RunID).Msg("failed to record training run")
		}
	}
	return result, nil
}
