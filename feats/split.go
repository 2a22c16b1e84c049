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
	"math/rand/v2"
)

// YearRange describes the span of target years within a set of records.
// For an empty set, Empty is true and Min, Max are zero.
type YearRange struct {
	Min   int  `json:"min"`
	Max   int  `json:"max"`
	Empty bool `json:"empty"`
}

func (yr YearRange) String() string {
	if yr.Empty {
		return "-"
	}
	return fmt.Sprintf("%d - %d", yr.Min, yr.Max)
}

// YearSpan finds the lowest and highest target year of the records
func YearSpan(records []LaggedRecord) YearRange {
	if len(records) == 0 {
		return YearRange{Empty: true}
	}
	ans := YearRange{Min: records[0].Year, Max: records[0].Year}
	for _, rec := range records[1:] {
		ans.Min = min(ans.Min, rec.Year)
		ans.Max = max(ans.Max, rec.Year)
	}
	return ans
}

// TemporalSplit partitions records by the target year. Records with
// year < cutoffYear go to train, the rest to test. The relative
// order of records is preserved in both partitions. An empty
// partition is a valid result - it is up to the caller to report it.
func TemporalSplit(records []LaggedRecord, cutoffYear int) (train, test []LaggedRecord) {
	train = make([]LaggedRecord, 0, len(records))
	test = make([]LaggedRecord, 0, len(records)/4)
	for _, rec := range records {
		if rec.Year < cutoffYear {
			train = append(train, rec)

		} else {
			test = append(test, rec)
		}
	}
	return
}

// RandomSplit shuffles records (deterministically for a given seed) and
// takes ceil(n * testFraction) of them as the test partition.
// Note that this ignores time completely and it is therefore prone
// to leaking future patterns into training. It exists to quantify
// exactly this effect.
func RandomSplit(records []LaggedRecord, testFraction float64, seed uint64) (train, test []LaggedRecord, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		err = fmt.Errorf("invalid test fraction %.2f, must be within (0, 1)", testFraction)
		return
	}
	rnd := rand.New(rand.NewPCG(seed, seed))
	perm := rnd.Perm(len(records))
	numTest := int(math.Ceil(float64(len(records)) * testFraction))
	test = make([]LaggedRecord, 0, numTest)
	train = make([]LaggedRecord, 0, len(records)-numTest)
	for i, idx := range perm {
		if i < numTest {
			test = append(test, records[idx])

		} else {
			train = append(train, records[idx])
		}
	}
	return
}
