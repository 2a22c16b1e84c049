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
	"cmp"
	"math"
	"slices"
)

// BuildLagged converts observations into records where the GDP growth
// of a year is paired with the indicators of the previous observed
// year of the same country. The input is not modified and does not
// have to be sorted.
//
// The first observation of each country has no predecessor and produces
// nothing. Rows with any missing value (current indicators and GDP or
// the lagged indicators) are dropped as well. The second returned value
// is the number of observations which did not produce a lagged record.
func BuildLagged(observations []ObservationRecord) ([]LaggedRecord, int) {
	sorted := slices.Clone(observations)
	slices.SortStableFunc(sorted, func(a, b ObservationRecord) int {
		if c := cmp.Compare(a.Country, b.Country); c != 0 {
			return c
		}
		return cmp.Compare(a.Year, b.Year)
	})

	ans := make([]LaggedRecord, 0, len(sorted))
	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		if prev.Country != curr.Country {
			continue
		}
		if prev.Growth.HasMissing() || curr.Growth.HasMissing() || math.IsNaN(curr.GDPGrowth) {
			continue
		}
		ans = append(
			ans,
			LaggedRecord{
				Country:   curr.Country,
				Year:      curr.Year,
				Lag1:      prev.Growth,
				GDPGrowth: curr.GDPGrowth,
			},
		)
	}
	return ans, len(sorted) - len(ans)
}

// DistinctCountries returns sorted unique country names of the records
func DistinctCountries(records []LaggedRecord) []string {
	uniq := make(map[string]struct{})
	for _, rec := range records {
		uniq[rec.Country] = struct{}{}
	}
	ans := make([]string, 0, len(uniq))
	for k := range uniq {
		ans = append(ans, k)
	}
	slices.Sort(ans)
	return ans
}
