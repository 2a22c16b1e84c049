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

package prediction

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/artifact"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/feats"
	"github.com/rs/zerolog/log"
)

const (
	// fallback weights used when no trained model is available;
	// they are fixed and not derived from any model
	simConsumptionWeight = 0.6
	simExportsWeight     = 0.2
	simImportsWeight     = -0.1

	numAvailableCountries = 10

	simulationWarning = "Using fallback simulation. Model file not found."
	modelNote         = "Prediction based on lagged features (T-1 → T)"
)

type Method string

const (
	MethodModel      Method = "model"
	MethodSimulation Method = "simulation"
)

// Result is a GDP growth prediction (in %) for the year following
// the year of the input values.
type Result struct {
	Growth  float64 `json:"growth"`
	Method  Method  `json:"method"`
	Country string  `json:"country,omitempty"`
	Warning string  `json:"warning,omitempty"`
	Note    string  `json:"note,omitempty"`
}

type Status struct {
	ModelLoaded    bool      `json:"modelLoaded"`
	EncoderLoaded  bool      `json:"encoderLoaded"`
	NumCountries   int       `json:"numCountries"`
	ModelRunID     string    `json:"modelRunId,omitempty"`
	ModelCreatedAt time.Time `json:"modelCreatedAt,omitempty"`
	ModelInfo      string    `json:"modelInfo,omitempty"`
}

type regressor interface {
	Predict(x []float64) (float64, error)
	GetInfo() string
}

func roundGrowth(v float64) float64 {
	return math.Round(v*100) / 100
}

// SimulatedGrowth is the fallback estimation used when
// no trained model is available
func SimulatedGrowth(lag1 feats.Indicators) float64 {
	return roundGrowth(
		simConsumptionWeight*lag1[feats.Consumption] +
			simExportsWeight*lag1[feats.Exports] +
			simImportsWeight*lag1[feats.Imports],
	)
}

// Service predicts GDP growth using a trained model and its country
// encoding. Without them, it runs in a simulation mode for its
// whole lifetime. The service is never modified after creation
// and it is safe for concurrent use.
type Service struct {
	model    regressor
	encoding *feats.CountryEncoding
	meta     artifact.Meta
}

// NewService creates a prediction service. A nil bundle means
// there are no trained artifacts and the simulation mode is used.
func NewService(bundle *artifact.Bundle) (*Service, error) {
	if bundle == nil {
		return &Service{}, nil
	}
	if bundle.Model == nil || bundle.Encoding == nil {
		return nil, fmt.Errorf("failed to create prediction service: incomplete model artifacts")
	}
	if !feats.SameColumns(bundle.Meta.FeatureColumns) {
		return nil, fmt.Errorf("failed to create prediction service: %w", artifact.ErrSchemaMismatch)
	}
	return &Service{
		model:    bundle.Model,
		encoding: bundle.Encoding,
		meta:     bundle.Meta,
	}, nil
}

func (s *Service) IsSimulation() bool {
	return s.model == nil || s.encoding == nil
}

func (s *Service) Status() Status {
	ans := Status{
		ModelLoaded:   s.model != nil,
		EncoderLoaded: s.encoding != nil,
	}
	if s.encoding != nil {
		ans.NumCountries = s.encoding.Len()
	}
	if s.model != nil {
		ans.ModelRunID = s.meta.RunID
		ans.ModelCreatedAt = s.meta.CreatedAt
		ans.ModelInfo = s.model.GetInfo()
	}
	return ans
}

// KnownCountries returns countries the model has been trained with
// (empty in the simulation mode)
func (s *Service) KnownCountries() []string {
	if s.encoding == nil {
		return []string{}
	}
	return s.encoding.Classes()
}

func (s *Service) unknownCountryError(country string) *ValidationError {
	known := s.encoding.Classes()
	return &ValidationError{
		Kind:               KindUnknownCountry,
		Fields:             []string{FieldCountry},
		Value:              country,
		AvailableCountries: known[:min(numAvailableCountries, len(known))],
		Suggestions:        suggestCountries(country, known),
	}
}

func (s *Service) callModel(input Input, x []float64) (ans float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &InternalError{Country: input.Country, Cause: fmt.Errorf("regressor panic: %v", r)}
		}
	}()
	ans, err = s.model.Predict(x)
	if err != nil {
		return 0, &InternalError{Country: input.Country, Cause: err}
	}
	if math.IsNaN(ans) || math.IsInf(ans, 0) {
		return 0, &InternalError{Country: input.Country, Cause: fmt.Errorf("invalid regressor output %v", ans)}
	}
	return ans, nil
}

// PredictInput predicts GDP growth for an already validated input
func (s *Service) PredictInput(input Input) (Result, error) {
	if s.IsSimulation() {
		return Result{
			Growth:  SimulatedGrowth(input.Lag1),
			Method:  MethodSimulation,
			Warning: simulationWarning,
		}, nil
	}
	code, err := s.encoding.Encode(input.Country)
	if errors.Is(err, feats.ErrUnknownCategory) {
		return Result{}, s.unknownCountryError(input.Country)

	} else if err != nil {
		return Result{}, &InternalError{Country: input.Country, Cause: err}
	}
	growth, err := s.callModel(input, feats.FeatureVector(code, input.Lag1))
	if err != nil {
		log.Error().
			Err(err).
			Str("country", input.Country).
			Int("countryCode", code).
			Floats64("lag1", input.Lag1[:]).
			Msg("regressor failed")
		return Result{}, err
	}
	return Result{
		Growth:  roundGrowth(growth),
		Method:  MethodModel,
		Country: input.Country,
		Note:    modelNote,
	}, nil
}

// Predict validates a decoded request body and predicts GDP growth.
// Errors are either *ValidationError (client's fault) or *InternalError.
func (s *Service) Predict(raw map[string]any) (Result, error) {
	input, err := Validate(raw)
	if err != nil {
		return Result{}, err
	}
	return s.PredictInput(input)
}
