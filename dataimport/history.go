// Copyright 2024 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2024 Institute of the Czech National Corpus,
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

package dataimport

import (
	"cmp"
	"math"
	"slices"

	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/feats"
)

// HistoryPoint is a single year of a country's history as presented
// to API clients. Missing values are nil.
type HistoryPoint struct {
	Country       string   `json:"Country"`
	Year          int      `json:"Year"`
	GDPGrowth     *float64 `json:"GDP_Growth"`
	ExportsGrowth *float64 `json:"Exports_Growth"`
	ImportsGrowth *float64 `json:"Imports_Growth"`
}

func optionalValue(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// History is a read-only per-country view of the dataset
type History struct {
	byCountry map[string][]HistoryPoint
	countries []string
}

func (h *History) IsEmpty() bool {
	return h == nil || len(h.countries) == 0
}

// Countries returns sorted names of all the countries in the dataset
func (h *History) Countries() []string {
	if h == nil {
		return []string{}
	}
	return slices.Clone(h.countries)
}

// ForCountry returns the country's history sorted by year.
// The second value is false if there is no such country.
func (h *History) ForCountry(name string) ([]HistoryPoint, bool) {
	if h == nil {
		return nil, false
	}
	ans, ok := h.byCountry[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(ans), true
}

func NewHistory(observations []feats.ObservationRecord) *History {
	ans := &History{
		byCountry: make(map[string][]HistoryPoint),
	}
	for _, obs := range observations {
		ans.byCountry[obs.Country] = append(
			ans.byCountry[obs.Country],
			HistoryPoint{
				Country:       obs.Country,
				Year:          obs.Year,
				GDPGrowth:     optionalValue(obs.GDPGrowth),
				ExportsGrowth: optionalValue(obs.Growth[feats.Exports]),
				ImportsGrowth: optionalValue(obs.Growth[feats.Imports]),
			},
		)
	}
	ans.countries = make([]string, 0, len(ans.byCountry))
	for country, points := range ans.byCountry {
		slices.SortStableFunc(points, func(a, b HistoryPoint) int {
			return cmp.Compare(a.Year, b.Year)
		})
		ans.countries = append(ans.countries, country)
	}
	slices.Sort(ans.countries)
	return ans
}
