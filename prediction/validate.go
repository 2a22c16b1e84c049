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
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/feats"
)

const (
	FieldCountry = "Country"

	// MinGrowthRate and MaxGrowthRate bound plausible growth rates (in %)
	MinGrowthRate = -100.0
	MaxGrowthRate = 100.0
)

// RequiredFields lists all the request fields in the canonical order
func RequiredFields() []string {
	ans := make([]string, 0, 1+feats.NumIndicators)
	ans = append(ans, FieldCountry)
	for _, ind := range feats.AllIndicators() {
		ans = append(ans, ind.RequestField())
	}
	return ans
}

// Input is a validated prediction request. The indicator values
// are growth rates of the year preceding the predicted one.
type Input struct {
	Country string
	Lag1    feats.Indicators
}

func parseNumeric(v any) (float64, bool) {
	switch tv := v.(type) {
	case float64:
		return tv, true
	case float32:
		return float64(tv), true
	case int:
		return float64(tv), true
	case int64:
		return float64(tv), true
	case int32:
		return float64(tv), true
	case json.Number:
		ans, err := tv.Float64()
		return ans, err == nil
	case string:
		ans, err := strconv.ParseFloat(strings.TrimSpace(tv), 64)
		return ans, err == nil
	default:
		return 0, false
	}
}

func isInRange(v float64) bool {
	return !math.IsNaN(v) && v >= MinGrowthRate && v <= MaxGrowthRate
}

// Validate checks a decoded request body and converts it into Input.
// Checks run in a fixed order: empty body, missing fields, numeric
// values (parseable and within range) and finally the country.
// The first failed check produces *ValidationError.
func Validate(raw map[string]any) (Input, error) {
	if len(raw) == 0 {
		return Input{}, &ValidationError{Kind: KindEmptyBody}
	}

	missing := make([]string, 0, 1+feats.NumIndicators)
	for _, field := range RequiredFields() {
		if _, ok := raw[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return Input{}, &ValidationError{Kind: KindMissingFields, Fields: missing}
	}

	var ans Input
	for _, ind := range feats.AllIndicators() {
		field := ind.RequestField()
		v, ok := parseNumeric(raw[field])
		if !ok {
			return Input{}, &ValidationError{
				Kind:   KindNotNumeric,
				Fields: []string{field},
				Value:  raw[field],
			}
		}
		if !isInRange(v) {
			return Input{}, &ValidationError{
				Kind:   KindOutOfRange,
				Fields: []string{field},
				Value:  v,
			}
		}
		ans.Lag1[ind] = v
	}

	switch tv := raw[FieldCountry].(type) {
	case nil:
	case string:
		ans.Country = strings.TrimSpace(tv)
	default:
		ans.Country = strings.TrimSpace(fmt.Sprint(tv))
	}
	if ans.Country == "" {
		return Input{}, &ValidationError{Kind: KindEmptyCountry, Fields: []string{FieldCountry}}
	}
	return ans, nil
}
