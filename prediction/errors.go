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
	"strings"
)

var (
	ErrValidation         = errors.New("invalid prediction request")
	ErrInternalPrediction = errors.New("prediction failed")
)

type ValidationKind string

const (
	KindEmptyBody      ValidationKind = "EmptyBody"
	KindMissingFields  ValidationKind = "MissingFields"
	KindNotNumeric     ValidationKind = "NotNumeric"
	KindOutOfRange     ValidationKind = "OutOfRange"
	KindEmptyCountry   ValidationKind = "EmptyCountry"
	KindUnknownCountry ValidationKind = "UnknownCountry"
)

// ValidationError describes a problem caused by a client.
// Fields contains the offending field(s) and Value the offending
// value (if applicable).
type ValidationError struct {
	Kind   ValidationKind
	Fields []string
	Value  any

	// AvailableCountries is a sample of known countries
	// (for KindUnknownCountry only)
	AvailableCountries []string

	// Suggestions are known countries similar to the unknown one
	// (for KindUnknownCountry only)
	Suggestions []string
}

func (err *ValidationError) Error() string {
	switch err.Kind {
	case KindEmptyBody:
		return "Request body is empty"
	case KindMissingFields:
		return fmt.Sprintf("Missing required fields: %s", strings.Join(err.Fields, ", "))
	case KindNotNumeric:
		return fmt.Sprintf("Invalid %s value: must be a number", err.firstField())
	case KindOutOfRange:
		return fmt.Sprintf(
			"%s value %v is outside reasonable range (%v to %v)",
			err.firstField(), err.Value, MinGrowthRate, MaxGrowthRate,
		)
	case KindEmptyCountry:
		return "Country name cannot be empty"
	case KindUnknownCountry:
		return fmt.Sprintf("Country '%v' not found in training data", err.Value)
	default:
		return fmt.Sprintf("invalid request (%s)", err.Kind)
	}
}

func (err *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (err *ValidationError) firstField() string {
	if len(err.Fields) > 0 {
		return err.Fields[0]
	}
	return "?"
}

// InternalError wraps an unexpected failure of the regressor
type InternalError struct {
	Country string
	Cause   error
}

func (err *InternalError) Error() string {
	return fmt.Sprintf("prediction failed for %s: %s", err.Country, err.Cause)
}

func (err *InternalError) Unwrap() error {
	return err.Cause
}

func (err *InternalError) Is(target error) bool {
	return target == ErrInternalPrediction
}
