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
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// mapeEpsilon guards division by (near) zero actual values
const mapeEpsilon = 2.220446049250313e-16

// Metrics describes regression quality on a data partition.
// MAPE is in percent.
type Metrics struct {
	NumSamples int     `json:"numSamples"`
	R2         float64 `json:"r2"`
	RMSE       float64 `json:"rmse"`
	MAE        float64 `json:"mae"`
	MAPE       float64 `json:"mape"`
}

func (m Metrics) IsEmpty() bool {
	return m.NumSamples == 0
}

func (m Metrics) String() string {
	return fmt.Sprintf(
		"Metrics{NumSamples: %d, R2: %01.4f, RMSE: %01.4f, MAE: %01.4f, MAPE: %01.2f%%}",
		m.NumSamples, m.R2, m.RMSE, m.MAE, m.MAPE,
	)
}

// MarshalZerologObject allows metrics to be logged as a nested object
func (m Metrics) MarshalZerologObject(e *zerolog.Event) {
	e.Int("numSamples", m.NumSamples).
		Float64("r2", m.R2).
		Float64("rmse", m.RMSE).
		Float64("mae", m.MAE).
		Float64("mape", m.MAPE)
}

func emptyMetrics() Metrics {
	return Metrics{
		R2:   math.NaN(),
		RMSE: math.NaN(),
		MAE:  math.NaN(),
		MAPE: math.NaN(),
	}
}

// ComputeMetrics compares predicted values with the actual ones.
// For empty input, NaN metrics with zero NumSamples are returned.
func ComputeMetrics(actual, predicted []float64) (Metrics, error) {
	if len(actual) != len(predicted) {
		return Metrics{}, fmt.Errorf(
			"cannot compute metrics - size mismatch (%d actual, %d predicted)", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return emptyMetrics(), nil
	}
	var sqErr, absErr, pctErr float64
	for i, y := range actual {
		diff := y - predicted[i]
		sqErr += diff * diff
		absErr += math.Abs(diff)
		pctErr += math.Abs(diff) / math.Max(math.Abs(y), mapeEpsilon)
	}
	n := float64(len(actual))
	return Metrics{
		NumSamples: len(actual),
		R2:         stat.RSquaredFrom(predicted, actual, nil),
		RMSE:       math.Sqrt(sqErr / n),
		MAE:        absErr / n,
		MAPE:       pctErr / n * 100,
	}, nil
}
