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
	"errors"
	"fmt"
	"slices"
)

var ErrUnknownCategory = errors.New("unknown category")

// UnknownCategoryError is returned when encoding a name
// the encoding has not been fitted with.
type UnknownCategoryError struct {
	Name string
}

func (err *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category '%s'", err.Name)
}

func (err *UnknownCategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}

// ----------------------------

// CountryEncoding maps country names to integer codes.
// A code is the position of a name within the sorted list
// of fitted names. Once created, the encoding is never modified
// so it can be shared by concurrent readers.
type CountryEncoding struct {
	classes []string
	codes   map[string]int
}

// FitCountryEncoding creates an encoding for distinct values of names
func FitCountryEncoding(names []string) *CountryEncoding {
	classes := slices.Clone(names)
	slices.Sort(classes)
	classes = slices.Compact(classes)
	ans := &CountryEncoding{
		classes: classes,
		codes:   make(map[string]int, len(classes)),
	}
	for i, c := range classes {
		ans.codes[c] = i
	}
	return ans
}

// NewCountryEncoding restores an encoding from its (previously fitted)
// list of classes. The classes must be sorted and unique so codes
// remain exactly the same as in the original encoding.
func NewCountryEncoding(classes []string) (*CountryEncoding, error) {
	for i, c := range classes {
		if c == "" {
			return nil, fmt.Errorf("invalid country encoding - empty class at position %d", i)
		}
		if i > 0 && classes[i-1] >= c {
			return nil, fmt.Errorf("invalid country encoding - classes not sorted or not unique at position %d", i)
		}
	}
	ans := &CountryEncoding{
		classes: slices.Clone(classes),
		codes:   make(map[string]int, len(classes)),
	}
	for i, c := range ans.classes {
		ans.codes[c] = i
	}
	return ans, nil
}

// Encode returns a code of the country. For a country not present
// in the fitted set, *UnknownCategoryError is returned.
func (enc *CountryEncoding) Encode(name string) (int, error) {
	code, ok := enc.codes[name]
	if !ok {
		return -1, &UnknownCategoryError{Name: name}
	}
	return code, nil
}

func (enc *CountryEncoding) Decode(code int) (string, error) {
	if code < 0 || code >= len(enc.classes) {
		return "", fmt.Errorf("invalid country code %d", code)
	}
	return enc.classes[code], nil
}

func (enc *CountryEncoding) Contains(name string) bool {
	_, ok := enc.codes[name]
	return ok
}

// Classes returns a copy of the fitted country names in the code order
func (enc *CountryEncoding) Classes() []string {
	return slices.Clone(enc.classes)
}

func (enc *CountryEncoding) Len() int {
	return len(enc.classes)
}

// EncodeAll creates model input vectors and targets out of lagged records.
// Any record with an unknown country makes the whole operation fail.
func (enc *CountryEncoding) EncodeAll(records []LaggedRecord) ([][]float64, []float64, error) {
	xData := make([][]float64, len(records))
	yData := make([]float64, len(records))
	for i, rec := range records {
		code, err := enc.Encode(rec.Country)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode record %s/%d: %w", rec.Country, rec.Year, err)
		}
		xData[i] = FeatureVector(code, rec.Lag1)
		yData[i] = rec.GDPGrowth
	}
	return xData, yData, nil
}
