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

package feats

import (
	"fmt"
	"math"
	"slices"
)

// Indicator identifies one of the macroeconomic growth rates
// used as a model predictor. The numeric value of an Indicator
// is also its position within Indicators and (shifted by one)
// within the model feature vector.
type Indicator int

const (
	Population Indicator = iota
	Exports
	Imports
	Investment
	Consumption
	GovtSpend

	NumIndicators = 6
)

// NumFeatures is the model input dimensionality (encoded country
// followed by all the lagged indicators).
const NumFeatures = 1 + NumIndicators

var indicatorRequestFields = [NumIndicators]string{
	"Population",
	"Exports",
	"Imports",
	"Investment",
	"Consumption",
	"Govt_Spend",
}

var indicatorDatasetColumns = [NumIndicators]string{
	"Population_Growth_Rate",
	"Exports of goods and services_Growth_Rate",
	"Imports of goods and services_Growth_Rate",
	"Gross capital formation_Growth_Rate",
	"Final consumption expenditure_Growth_Rate",
	"Government_Expenditure_Growth_Rate",
}

// FeatureColumns is the column layout of the model input. Both
// the training pipeline and the inference service build vectors
// via FeatureVector so the order below is the only place where
// it is defined. It is also persisted along with a trained model
// and verified on load.
var FeatureColumns = [NumFeatures]string{
	"Country_Encoded",
	"Population_Growth_Rate_Lag1",
	"Exports_Growth_Rate_Lag1",
	"Imports_Growth_Rate_Lag1",
	"Investment_Growth_Rate_Lag1",
	"Consumption_Growth_Rate_Lag1",
	"Govt_Spend_Growth_Rate_Lag1",
}

// AllIndicators lists indicators in the canonical order
func AllIndicators() []Indicator {
	return []Indicator{Population, Exports, Imports, Investment, Consumption, GovtSpend}
}

// RequestField is the name of the indicator within a prediction request
func (ind Indicator) RequestField() string {
	return indicatorRequestFields[ind]
}

// DatasetColumn is the name of the indicator's column in the source dataset
func (ind Indicator) DatasetColumn() string {
	return indicatorDatasetColumns[ind]
}

func (ind Indicator) String() string {
	if ind < 0 || ind >= NumIndicators {
		return fmt.Sprintf("Indicator(%d)", int(ind))
	}
	return indicatorRequestFields[ind]
}

// FeatureColumnsSlice returns a copy of FeatureColumns as a slice
// (suitable e.g. for persisting along with a model).
func FeatureColumnsSlice() []string {
	return slices.Clone(FeatureColumns[:])
}

// SameColumns tests whether the provided column list matches
// FeatureColumns exactly (including order).
func SameColumns(cols []string) bool {
	return slices.Equal(cols, FeatureColumns[:])
}

// ----------------------------

// Indicators holds one value per Indicator in the canonical order
type Indicators [NumIndicators]float64

func (v Indicators) Get(ind Indicator) float64 {
	return v[ind]
}

// HasMissing tells whether any of the values is NaN (= not present
// in the source data).
func (v Indicators) HasMissing() bool {
	for _, x := range v {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}

// FeatureVector creates a model input vector from an encoded country
// and lagged indicator values. The layout matches FeatureColumns.
func FeatureVector(countryCode int, lag1 Indicators) []float64 {
	ans := make([]float64, NumFeatures)
	ans[0] = float64(countryCode)
	copy(ans[1:], lag1[:])
	return ans
}

// ----------------------------

// ObservationRecord is a single (country, year) row of the source
// dataset with growth rates in percents.
type ObservationRecord struct {
	Country   string
	Year      int
	Growth    Indicators
	GDPGrowth float64
}

// LaggedRecord pairs a GDP growth rate of a year T with
// indicator values of the year T-1 (= previous observation
// of the same country).
type LaggedRecord struct {
	Country   string
	Year      int
	Lag1      Indicators
	GDPGrowth float64
}
